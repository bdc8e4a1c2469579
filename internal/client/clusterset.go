package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"apprepo/internal/api"
	"apprepo/internal/helmrepo"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
	"apprepo/pkg/logging"
)

const (
	// RepositorySecretPrefix prefixes the secret holding a repository's header and CA.
	RepositorySecretPrefix = "apprepo-"

	// AuthHeaderKey is the key of the authorization header in a repository secret.
	AuthHeaderKey = "authorizationHeader"

	// CustomCAKey is the key of the CA bundle in a repository secret.
	CustomCAKey = "ca.crt"
)

// RepositorySecretName returns the name of the secret created for a repository.
func RepositorySecretName(repoName string) string {
	return RepositorySecretPrefix + repoName
}

// ClusterSet routes calls to the backend of the named cluster.
type ClusterSet struct {
	mu             sync.RWMutex
	backends       map[string]Backend
	defaultCluster string
	validator      *helmrepo.Validator
}

var (
	_ RepositoryClient          = (*ClusterSet)(nil)
	_ SecretClient              = (*ClusterSet)(nil)
	_ helmrepo.RepositorySource = (*ClusterSet)(nil)
)

// NewClusterSet creates an empty ClusterSet. Calls naming the empty cluster
// go to defaultCluster. A nil validator uses default HTTP options.
func NewClusterSet(defaultCluster string, validator *helmrepo.Validator) *ClusterSet {
	if validator == nil {
		validator = helmrepo.NewValidator(helmrepo.HTTPOptions{})
	}
	return &ClusterSet{
		backends:       make(map[string]Backend),
		defaultCluster: defaultCluster,
		validator:      validator,
	}
}

// Add registers backend under name, replacing any previous one.
func (c *ClusterSet) Add(name string, backend Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backends[name] = backend
}

// Clusters returns the registered cluster names in sorted order.
func (c *ClusterSet) Clusters() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.backends))
	for name := range c.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultCluster returns the cluster used when a call names none.
func (c *ClusterSet) DefaultCluster() string {
	return c.defaultCluster
}

// Backend returns the backend of cluster.
func (c *ClusterSet) Backend(cluster string) (Backend, error) {
	if cluster == "" {
		cluster = c.defaultCluster
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	backend, ok := c.backends[cluster]
	if !ok {
		return nil, api.NewNotFoundError("cluster", cluster)
	}
	return backend, nil
}

// Close closes every backend and returns the joined errors.
func (c *ClusterSet) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for name, backend := range c.backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cluster %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ListAppRepositories lists the repositories of a namespace.
func (c *ClusterSet) ListAppRepositories(ctx context.Context, cluster, namespace string) ([]v1alpha1.AppRepository, error) {
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}
	return backend.ListAppRepositories(ctx, namespace)
}

// GetAppRepository fetches one repository.
func (c *ClusterSet) GetAppRepository(ctx context.Context, cluster, namespace, name string) (*v1alpha1.AppRepository, error) {
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}
	return backend.GetAppRepository(ctx, namespace, name)
}

// CreateAppRepository creates a repository and, when the request carries an
// authorization header or a custom CA, the secret that stores them. If the
// secret cannot be written the repository is deleted again.
func (c *ClusterSet) CreateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}

	repo := &v1alpha1.AppRepository{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.GroupVersion.String(),
			Kind:       v1alpha1.Kind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      req.Name,
			Namespace: req.Namespace,
		},
	}
	applyRequest(repo, req)

	if err := checkSecretOwnership(ctx, backend, repo, req); err != nil {
		return nil, err
	}

	if err := backend.CreateAppRepository(ctx, repo); err != nil {
		return nil, err
	}

	if err := syncRepositorySecret(ctx, backend, repo, req); err != nil {
		if rbErr := backend.DeleteAppRepository(ctx, repo.Namespace, repo.Name); rbErr != nil && !apierrors.IsNotFound(rbErr) {
			logging.Error("ClusterSet", rbErr, "Failed to roll back AppRepository %s/%s", repo.Namespace, repo.Name)
			return nil, errors.Join(err, rbErr)
		}
		return nil, err
	}

	logging.Info("ClusterSet", "Created AppRepository %s/%s in cluster %s", repo.Namespace, repo.Name, c.clusterName(cluster))
	return repo, nil
}

// UpdateAppRepository replaces the spec of an existing repository and brings its
// secret in line with the request. The resync counter is preserved. If the
// secret cannot be written the previous spec is restored.
func (c *ClusterSet) UpdateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}

	current, err := backend.GetAppRepository(ctx, req.Namespace, req.Name)
	if err != nil {
		return nil, err
	}
	repo := current.DeepCopy()
	applyRequest(repo, req)

	if err := checkSecretOwnership(ctx, backend, repo, req); err != nil {
		return nil, err
	}

	if err := backend.UpdateAppRepository(ctx, repo); err != nil {
		return nil, err
	}

	if err := syncRepositorySecret(ctx, backend, repo, req); err != nil {
		previous := current.DeepCopy()
		previous.ResourceVersion = repo.ResourceVersion
		if rbErr := backend.UpdateAppRepository(ctx, previous); rbErr != nil {
			logging.Error("ClusterSet", rbErr, "Failed to restore the spec of AppRepository %s/%s", repo.Namespace, repo.Name)
			return nil, errors.Join(err, rbErr)
		}
		return nil, err
	}

	logging.Info("ClusterSet", "Updated AppRepository %s/%s in cluster %s", repo.Namespace, repo.Name, c.clusterName(cluster))
	return repo, nil
}

// DeleteAppRepository deletes a repository. Backends without garbage collection
// also lose the secrets owned by it.
func (c *ClusterSet) DeleteAppRepository(ctx context.Context, cluster, namespace, name string) error {
	backend, err := c.Backend(cluster)
	if err != nil {
		return err
	}
	if err := backend.DeleteAppRepository(ctx, namespace, name); err != nil {
		return err
	}

	if !backend.IsKubernetesMode() {
		secrets, err := backend.ListSecrets(ctx, namespace)
		if err != nil {
			return err
		}
		for i := range secrets {
			if !IsOwnedByRepository(&secrets[i], name) {
				continue
			}
			if err := backend.DeleteSecret(ctx, namespace, secrets[i].Name); err != nil && !apierrors.IsNotFound(err) {
				return err
			}
		}
	}

	logging.Info("ClusterSet", "Deleted AppRepository %s/%s in cluster %s", namespace, name, c.clusterName(cluster))
	return nil
}

// ResyncAppRepository asks the sync job to run again by bumping the
// repository's resync counter. Conflicting writes are retried.
func (c *ClusterSet) ResyncAppRepository(ctx context.Context, cluster, namespace, name string) error {
	backend, err := c.Backend(cluster)
	if err != nil {
		return err
	}

	err = retry.RetryOnConflict(retry.DefaultRetry, func() error {
		repo, err := backend.GetAppRepository(ctx, namespace, name)
		if err != nil {
			return err
		}
		repo.Spec.ResyncRequests++
		return backend.UpdateAppRepository(ctx, repo)
	})
	if err != nil {
		return fmt.Errorf("failed to resync AppRepository %s/%s: %w", namespace, name, err)
	}

	logging.Debug("ClusterSet", "Requested resync of AppRepository %s/%s", namespace, name)
	return nil
}

// ValidateAppRepository probes the endpoint described by req. A registry
// credential reference is resolved to basic auth for the repository host.
func (c *ClusterSet) ValidateAppRepository(ctx context.Context, cluster, namespace string, req api.ValidationRequest) (*api.ValidationResult, error) {
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}

	ep := helmrepo.Endpoint{
		URL:             req.URL,
		Type:            req.Type,
		OCIRepositories: req.OCIRepositories,
		AuthHeader:      req.AuthHeader,
		CustomCA:        req.CustomCA,
		SkipTLS:         req.SkipTLS,
	}

	if req.AuthRegCreds != "" && req.AuthHeader == "" {
		secret, err := backend.GetSecret(ctx, namespace, req.AuthRegCreds)
		if err != nil {
			return nil, err
		}
		user, pass, err := helmrepo.RegistryCredentials(secret.Data[corev1.DockerConfigJsonKey], req.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry credentials from secret %s/%s: %w", namespace, req.AuthRegCreds, err)
		}
		ep.Username, ep.Password = user, pass
	}

	return c.validator.Validate(ctx, ep)
}

// ListSecrets lists every secret of a namespace.
func (c *ClusterSet) ListSecrets(ctx context.Context, cluster, namespace string) ([]corev1.Secret, error) {
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}
	return backend.ListSecrets(ctx, namespace)
}

// GetSecret fetches one secret.
func (c *ClusterSet) GetSecret(ctx context.Context, cluster, namespace, name string) (*corev1.Secret, error) {
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}
	return backend.GetSecret(ctx, namespace, name)
}

// CreatePullSecret stores registry credentials as a kubernetes.io/dockerconfigjson secret.
func (c *ClusterSet) CreatePullSecret(ctx context.Context, cluster string, req api.PullSecretRequest) (*corev1.Secret, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("pull secret name is required")
	}
	backend, err := c.Backend(cluster)
	if err != nil {
		return nil, err
	}

	data, err := helmrepo.BuildDockerConfigJSON(req.Server, req.Username, req.Password, req.Email)
	if err != nil {
		return nil, err
	}
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      req.Name,
			Namespace: req.Namespace,
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{corev1.DockerConfigJsonKey: data},
	}
	if err := backend.CreateSecret(ctx, secret); err != nil {
		return nil, err
	}

	logging.Info("ClusterSet", "Created pull secret %s/%s for %s", req.Namespace, req.Name, req.Server)
	return secret, nil
}

// CreateEvent records an event about obj in cluster.
func (c *ClusterSet) CreateEvent(ctx context.Context, cluster string, obj client.Object, reason, message, eventType string) error {
	backend, err := c.Backend(cluster)
	if err != nil {
		return err
	}
	return backend.CreateEvent(ctx, obj, reason, message, eventType)
}

func (c *ClusterSet) clusterName(cluster string) string {
	if cluster == "" {
		return c.defaultCluster
	}
	return cluster
}

// IsOwnedByRepository reports whether secret has an AppRepository owner
// reference. An empty repoName matches any repository.
func IsOwnedByRepository(secret *corev1.Secret, repoName string) bool {
	for _, ref := range secret.OwnerReferences {
		if ref.Kind != v1alpha1.Kind {
			continue
		}
		if repoName == "" || ref.Name == repoName {
			return true
		}
	}
	return false
}

func checkRequest(req api.RepositoryRequest) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("repository name is required")
	case req.Namespace == "":
		return fmt.Errorf("repository namespace is required for %s", req.Name)
	case req.URL == "":
		return fmt.Errorf("repository URL is required for %s/%s", req.Namespace, req.Name)
	}
	return nil
}

// applyRequest overwrites the user-controlled part of the spec.
func applyRequest(repo *v1alpha1.AppRepository, req api.RepositoryRequest) {
	repoType := req.Type
	if repoType == "" {
		repoType = v1alpha1.RepositoryTypeHelm
	}

	resync := repo.Spec.ResyncRequests
	repo.Spec = v1alpha1.AppRepositorySpec{
		Type:                  repoType,
		URL:                   req.URL,
		DockerRegistrySecrets: req.RegistrySecrets,
		SyncJobPodTemplate:    req.PodTemplate,
		ResyncRequests:        resync,
		OCIRepositories:       req.OCIRepositories,
		TLSInsecureSkipVerify: req.SkipTLS,
		FilterRule:            req.Filter,
		Description:           req.Description,
	}

	secretName := RepositorySecretName(req.Name)
	if req.AuthHeader != "" {
		repo.Spec.Auth.Header = &v1alpha1.AppRepositoryAuthHeader{SecretKeyRef: keyRef(secretName, AuthHeaderKey)}
	}
	if req.CustomCA != "" {
		repo.Spec.Auth.CustomCA = &v1alpha1.AppRepositoryCustomCA{SecretKeyRef: keyRef(secretName, CustomCAKey)}
	}
	if req.AuthRegCreds != "" {
		repo.Spec.Auth.Header = &v1alpha1.AppRepositoryAuthHeader{SecretKeyRef: keyRef(req.AuthRegCreds, corev1.DockerConfigJsonKey)}
	}
}

func keyRef(name, key string) corev1.SecretKeySelector {
	return corev1.SecretKeySelector{
		LocalObjectReference: corev1.LocalObjectReference{Name: name},
		Key:                  key,
	}
}

// repositorySecret builds the owned secret for repo, or nil when the request
// carries neither a header nor a CA.
func repositorySecret(repo *v1alpha1.AppRepository, req api.RepositoryRequest) *corev1.Secret {
	data := map[string][]byte{}
	if req.AuthHeader != "" && req.AuthRegCreds == "" {
		data[AuthHeaderKey] = []byte(req.AuthHeader)
	}
	if req.CustomCA != "" {
		data[CustomCAKey] = []byte(req.CustomCA)
	}
	if len(data) == 0 {
		return nil
	}

	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      RepositorySecretName(repo.Name),
			Namespace: repo.Namespace,
			OwnerReferences: []metav1.OwnerReference{{
				APIVersion: v1alpha1.GroupVersion.String(),
				Kind:       v1alpha1.Kind,
				Name:       repo.Name,
				UID:        repo.UID,
			}},
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
}

func syncRepositorySecret(ctx context.Context, backend Backend, repo *v1alpha1.AppRepository, req api.RepositoryRequest) error {
	desired := repositorySecret(repo, req)
	name := RepositorySecretName(repo.Name)

	existing, err := backend.GetSecret(ctx, repo.Namespace, name)
	switch {
	case apierrors.IsNotFound(err):
		if desired == nil {
			return nil
		}
		return backend.CreateSecret(ctx, desired)
	case err != nil:
		return err
	}

	if desired == nil {
		if !IsOwnedByRepository(existing, repo.Name) {
			return nil
		}
		if err := backend.DeleteSecret(ctx, repo.Namespace, name); err != nil && !apierrors.IsNotFound(err) {
			return err
		}
		return nil
	}

	if !IsOwnedByRepository(existing, repo.Name) {
		return secretConflict(repo, name)
	}
	existing.Data = desired.Data
	existing.OwnerReferences = desired.OwnerReferences
	return backend.UpdateSecret(ctx, existing)
}

// checkSecretOwnership fails when the request needs the repository secret
// and a secret of that name exists without being owned by the repository.
func checkSecretOwnership(ctx context.Context, backend Backend, repo *v1alpha1.AppRepository, req api.RepositoryRequest) error {
	if repositorySecret(repo, req) == nil {
		return nil
	}
	name := RepositorySecretName(repo.Name)
	existing, err := backend.GetSecret(ctx, repo.Namespace, name)
	switch {
	case apierrors.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case !IsOwnedByRepository(existing, repo.Name):
		return secretConflict(repo, name)
	}
	return nil
}

func secretConflict(repo *v1alpha1.AppRepository, secretName string) *api.ConflictError {
	return &api.ConflictError{
		ResourceType: "secret",
		ResourceName: secretName,
		Message: fmt.Sprintf("secret %s/%s exists and is not owned by AppRepository %s",
			repo.Namespace, secretName, repo.Name),
	}
}
