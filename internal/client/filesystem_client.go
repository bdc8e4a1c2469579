package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	"apprepo/pkg/apis/kubeapps/v1alpha1"
	"apprepo/pkg/logging"
)

var (
	appRepositoryResource = v1alpha1.Resource(v1alpha1.ResourceName)
	secretResource        = corev1.Resource("secrets")
)

// filesystemClient implements Backend using local YAML files.
//
// Files are organized per namespace:
//   - AppRepositories: {basePath}/{namespace}/apprepositories/{name}.yaml
//   - Secrets: {basePath}/{namespace}/secrets/{name}.yaml
//   - Events: {basePath}/{namespace}/events.log
//
// Objects get a random UID and a numeric resourceVersion on create. Updates
// carrying a stale resourceVersion fail with a Conflict error.
type filesystemClient struct {
	mu       sync.Mutex
	basePath string
}

// NewFilesystemClient creates a filesystem backend rooted at basePath.
func NewFilesystemClient(basePath string) (Backend, error) {
	if basePath == "" {
		basePath = "."
	}
	if info, err := os.Stat(basePath); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("filesystem path %s is not a directory", basePath)
	}
	return &filesystemClient{basePath: basePath}, nil
}

// BasePath returns the root directory of a filesystem backend, or "" for other backends.
func BasePath(backend Backend) string {
	if fs, ok := backend.(*filesystemClient); ok {
		return fs.basePath
	}
	return ""
}

func (f *filesystemClient) ListAppRepositories(ctx context.Context, namespace string) ([]v1alpha1.AppRepository, error) {
	var repos []v1alpha1.AppRepository
	err := f.listDir(f.namespaces(namespace), "apprepositories", func(path string) error {
		var repo v1alpha1.AppRepository
		if err := readObject(path, &repo); err != nil {
			return err
		}
		repos = append(repos, repo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}

func (f *filesystemClient) GetAppRepository(ctx context.Context, namespace, name string) (*v1alpha1.AppRepository, error) {
	var repo v1alpha1.AppRepository
	if err := f.get(f.objectPath(namespace, "apprepositories", name), appRepositoryResource, name, &repo); err != nil {
		return nil, err
	}
	defaultMeta(&repo.ObjectMeta, namespace, name)
	return &repo, nil
}

func (f *filesystemClient) CreateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error {
	repo.APIVersion = v1alpha1.GroupVersion.String()
	repo.Kind = v1alpha1.Kind
	return f.create(f.objectPath(repo.Namespace, "apprepositories", repo.Name), appRepositoryResource, &repo.ObjectMeta, repo)
}

func (f *filesystemClient) UpdateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error {
	path := f.objectPath(repo.Namespace, "apprepositories", repo.Name)
	return f.update(path, appRepositoryResource, &repo.ObjectMeta, repo, func() (*metav1.ObjectMeta, error) {
		var current v1alpha1.AppRepository
		if err := readObject(path, &current); err != nil {
			return nil, err
		}
		return &current.ObjectMeta, nil
	})
}

func (f *filesystemClient) DeleteAppRepository(ctx context.Context, namespace, name string) error {
	return f.remove(f.objectPath(namespace, "apprepositories", name), appRepositoryResource, name)
}

func (f *filesystemClient) ListSecrets(ctx context.Context, namespace string) ([]corev1.Secret, error) {
	var secrets []corev1.Secret
	err := f.listDir(f.namespaces(namespace), "secrets", func(path string) error {
		var secret corev1.Secret
		if err := readObject(path, &secret); err != nil {
			return err
		}
		secrets = append(secrets, secret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return secrets, nil
}

func (f *filesystemClient) GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	var secret corev1.Secret
	if err := f.get(f.objectPath(namespace, "secrets", name), secretResource, name, &secret); err != nil {
		return nil, err
	}
	defaultMeta(&secret.ObjectMeta, namespace, name)
	return &secret, nil
}

func (f *filesystemClient) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	secret.APIVersion = "v1"
	secret.Kind = "Secret"
	if secret.Type == "" {
		secret.Type = corev1.SecretTypeOpaque
	}
	return f.create(f.objectPath(secret.Namespace, "secrets", secret.Name), secretResource, &secret.ObjectMeta, secret)
}

func (f *filesystemClient) UpdateSecret(ctx context.Context, secret *corev1.Secret) error {
	path := f.objectPath(secret.Namespace, "secrets", secret.Name)
	return f.update(path, secretResource, &secret.ObjectMeta, secret, func() (*metav1.ObjectMeta, error) {
		var current corev1.Secret
		if err := readObject(path, &current); err != nil {
			return nil, err
		}
		return &current.ObjectMeta, nil
	})
}

func (f *filesystemClient) DeleteSecret(ctx context.Context, namespace, name string) error {
	return f.remove(f.objectPath(namespace, "secrets", name), secretResource, name)
}

// CreateEvent appends a line to the namespace's events.log.
func (f *filesystemClient) CreateEvent(ctx context.Context, obj client.Object, reason, message, eventType string) error {
	kind := obj.GetObjectKind().GroupVersionKind().Kind
	if kind == "" {
		if _, ok := obj.(*v1alpha1.AppRepository); ok {
			kind = v1alpha1.Kind
		}
	}

	dir := filepath.Join(f.basePath, obj.GetNamespace())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	line := fmt.Sprintf("[%s] %s %s/%s: %s - %s (%s)\n",
		time.Now().Format(time.RFC3339), kind, obj.GetNamespace(), obj.GetName(), reason, message, eventType)

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(filepath.Join(dir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open events log: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (f *filesystemClient) IsKubernetesMode() bool {
	return false
}

func (f *filesystemClient) Close() error {
	return nil
}

func (f *filesystemClient) objectPath(namespace, resource, name string) string {
	return filepath.Join(f.basePath, namespace, resource, name+".yaml")
}

// namespaces returns the namespace directories to scan; the empty namespace
// means all of them.
func (f *filesystemClient) namespaces(namespace string) []string {
	if namespace != "" {
		return []string{namespace}
	}
	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	return out
}

func (f *filesystemClient) listDir(namespaces []string, resource string, load func(path string) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ns := range namespaces {
		dirPath := filepath.Join(f.basePath, ns, resource)
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read directory %s: %w", dirPath, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isYAMLFile(entry.Name()) {
				continue
			}
			path := filepath.Join(dirPath, entry.Name())
			if err := load(path); err != nil {
				// One bad file must not hide the rest of the namespace.
				logging.Error("fs-client", err, "Failed to load %s", path)
			}
		}
	}
	return nil
}

func (f *filesystemClient) get(path string, gr schema.GroupResource, name string, obj interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := readObject(path, obj); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(gr, name)
		}
		return err
	}
	return nil
}

func (f *filesystemClient) create(path string, gr schema.GroupResource, meta *metav1.ObjectMeta, obj interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if meta.Namespace == "" || meta.Name == "" {
		return fmt.Errorf("namespace and name are required to create %s", gr.String())
	}
	if _, err := os.Stat(path); err == nil {
		return errors.NewAlreadyExists(gr, meta.Name)
	}

	meta.UID = types.UID(uuid.NewString())
	meta.ResourceVersion = "1"
	meta.CreationTimestamp = metav1.NewTime(time.Now().Truncate(time.Second))

	return writeObject(path, obj)
}

func (f *filesystemClient) update(path string, gr schema.GroupResource, meta *metav1.ObjectMeta, obj interface{}, current func() (*metav1.ObjectMeta, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := current()
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(gr, meta.Name)
		}
		return err
	}

	if meta.ResourceVersion != "" && meta.ResourceVersion != stored.ResourceVersion {
		return errors.NewConflict(gr, meta.Name,
			fmt.Errorf("the object has been modified; resourceVersion %s is stale", meta.ResourceVersion))
	}

	version, _ := strconv.Atoi(stored.ResourceVersion)
	meta.ResourceVersion = strconv.Itoa(version + 1)
	meta.UID = stored.UID
	meta.CreationTimestamp = stored.CreationTimestamp

	return writeObject(path, obj)
}

func (f *filesystemClient) remove(path string, gr schema.GroupResource, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewNotFound(gr, name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func readObject(path string, obj interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

func writeObject(path string, obj interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

func defaultMeta(meta *metav1.ObjectMeta, namespace, name string) {
	if meta.Name == "" {
		meta.Name = name
	}
	if meta.Namespace == "" {
		meta.Namespace = namespace
	}
}

func isYAMLFile(filename string) bool {
	ext := filepath.Ext(filename)
	return ext == ".yaml" || ext == ".yml"
}
