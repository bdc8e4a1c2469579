package client

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// EventSourceComponent is the source component of recorded Kubernetes events.
const EventSourceComponent = "apprepo"

// kubernetesClient implements Backend using the Kubernetes API and controller-runtime.
type kubernetesClient struct {
	client.Client
}

// NewScheme returns a scheme with the client-go types and the AppRepository CRD.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
	return scheme
}

// NewKubernetesClient creates a Kubernetes backend.
//
// The AppRepository CRD must be installed: the constructor lists repositories
// in probeNamespace and fails if the API does not serve them.
func NewKubernetesClient(config *rest.Config, probeNamespace string) (Backend, error) {
	k8sClient, err := client.New(config, client.Options{
		Scheme: NewScheme(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	backend := &kubernetesClient{Client: k8sClient}
	if err := backend.validateCRDs(context.Background(), probeNamespace); err != nil {
		return nil, fmt.Errorf("CRD validation failed: %w", err)
	}

	return backend, nil
}

// NewKubernetesBackendFromClient wraps an existing controller-runtime client,
// which must use a scheme from NewScheme.
func NewKubernetesBackendFromClient(c client.Client) Backend {
	return &kubernetesClient{Client: c}
}

func (k *kubernetesClient) ListAppRepositories(ctx context.Context, namespace string) ([]v1alpha1.AppRepository, error) {
	list := &v1alpha1.AppRepositoryList{}
	if err := k.List(ctx, list, namespaceOpts(namespace)...); err != nil {
		return nil, fmt.Errorf("failed to list AppRepositories in namespace %s: %w", namespace, err)
	}
	return list.Items, nil
}

func (k *kubernetesClient) GetAppRepository(ctx context.Context, namespace, name string) (*v1alpha1.AppRepository, error) {
	repo := &v1alpha1.AppRepository{}
	if err := k.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, repo); err != nil {
		return nil, fmt.Errorf("failed to get AppRepository %s/%s: %w", namespace, name, err)
	}
	return repo, nil
}

func (k *kubernetesClient) CreateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error {
	if err := k.Create(ctx, repo); err != nil {
		return fmt.Errorf("failed to create AppRepository %s/%s: %w", repo.Namespace, repo.Name, err)
	}
	return nil
}

func (k *kubernetesClient) UpdateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error {
	if err := k.Update(ctx, repo); err != nil {
		return fmt.Errorf("failed to update AppRepository %s/%s: %w", repo.Namespace, repo.Name, err)
	}
	return nil
}

func (k *kubernetesClient) DeleteAppRepository(ctx context.Context, namespace, name string) error {
	repo := &v1alpha1.AppRepository{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
	if err := k.Delete(ctx, repo); err != nil {
		return fmt.Errorf("failed to delete AppRepository %s/%s: %w", namespace, name, err)
	}
	return nil
}

func (k *kubernetesClient) ListSecrets(ctx context.Context, namespace string) ([]corev1.Secret, error) {
	list := &corev1.SecretList{}
	if err := k.List(ctx, list, namespaceOpts(namespace)...); err != nil {
		return nil, fmt.Errorf("failed to list secrets in namespace %s: %w", namespace, err)
	}
	return list.Items, nil
}

func (k *kubernetesClient) GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	if err := k.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, secret); err != nil {
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}
	return secret, nil
}

func (k *kubernetesClient) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	if err := k.Create(ctx, secret); err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

func (k *kubernetesClient) UpdateSecret(ctx context.Context, secret *corev1.Secret) error {
	if err := k.Update(ctx, secret); err != nil {
		return fmt.Errorf("failed to update secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

func (k *kubernetesClient) DeleteSecret(ctx context.Context, namespace, name string) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
	if err := k.Delete(ctx, secret); err != nil {
		return fmt.Errorf("failed to delete secret %s/%s: %w", namespace, name, err)
	}
	return nil
}

// CreateEvent creates a Kubernetes Event for the given object.
func (k *kubernetesClient) CreateEvent(ctx context.Context, obj client.Object, reason, message, eventType string) error {
	gvk, err := k.GroupVersionKindFor(obj)
	if err != nil {
		return fmt.Errorf("failed to get GroupVersionKind for object: %w", err)
	}

	now := metav1.NewTime(time.Now())
	event := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: obj.GetName() + "-",
			Namespace:    obj.GetNamespace(),
		},
		InvolvedObject: corev1.ObjectReference{
			APIVersion: gvk.GroupVersion().String(),
			Kind:       gvk.Kind,
			Name:       obj.GetName(),
			Namespace:  obj.GetNamespace(),
			UID:        obj.GetUID(),
		},
		Reason:         reason,
		Message:        message,
		Type:           eventType,
		Source:         corev1.EventSource{Component: EventSourceComponent},
		FirstTimestamp: now,
		LastTimestamp:  now,
		Count:          1,
	}

	if err := k.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create Kubernetes Event for %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
	}
	return nil
}

func (k *kubernetesClient) IsKubernetesMode() bool {
	return true
}

// Close is a no-op; controller-runtime clients hold no resources.
func (k *kubernetesClient) Close() error {
	return nil
}

// validateCRDs checks that the AppRepository CRD is served by the cluster.
func (k *kubernetesClient) validateCRDs(ctx context.Context, namespace string) error {
	list := &v1alpha1.AppRepositoryList{}
	if err := k.List(ctx, list, client.InNamespace(namespace), client.Limit(1)); err != nil {
		return fmt.Errorf("AppRepository CRD not available: %w", err)
	}
	return nil
}

func namespaceOpts(namespace string) []client.ListOption {
	if namespace == "" {
		return nil
	}
	return []client.ListOption{client.InNamespace(namespace)}
}
