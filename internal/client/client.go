package client

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"apprepo/internal/api"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// RepositoryClient manages AppRepository resources across clusters.
type RepositoryClient interface {
	ListAppRepositories(ctx context.Context, cluster, namespace string) ([]v1alpha1.AppRepository, error)
	// GetAppRepository returns a Kubernetes NotFound error when the repository is absent.
	GetAppRepository(ctx context.Context, cluster, namespace, name string) (*v1alpha1.AppRepository, error)
	CreateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error)
	UpdateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error)
	DeleteAppRepository(ctx context.Context, cluster, namespace, name string) error
	ResyncAppRepository(ctx context.Context, cluster, namespace, name string) error
	ValidateAppRepository(ctx context.Context, cluster, namespace string, req api.ValidationRequest) (*api.ValidationResult, error)
}

// SecretClient reads secrets and creates registry pull secrets.
type SecretClient interface {
	ListSecrets(ctx context.Context, cluster, namespace string) ([]corev1.Secret, error)
	GetSecret(ctx context.Context, cluster, namespace, name string) (*corev1.Secret, error)
	CreatePullSecret(ctx context.Context, cluster string, req api.PullSecretRequest) (*corev1.Secret, error)
}

// Backend is the storage of a single cluster. It is implemented by the
// Kubernetes API and by a directory of YAML files.
//
// Backends return Kubernetes API errors (NotFound, AlreadyExists, Conflict)
// so callers can test them with k8s.io/apimachinery/pkg/api/errors.
type Backend interface {
	ListAppRepositories(ctx context.Context, namespace string) ([]v1alpha1.AppRepository, error)
	GetAppRepository(ctx context.Context, namespace, name string) (*v1alpha1.AppRepository, error)
	CreateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error
	UpdateAppRepository(ctx context.Context, repo *v1alpha1.AppRepository) error
	DeleteAppRepository(ctx context.Context, namespace, name string) error

	ListSecrets(ctx context.Context, namespace string) ([]corev1.Secret, error)
	GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error)
	CreateSecret(ctx context.Context, secret *corev1.Secret) error
	UpdateSecret(ctx context.Context, secret *corev1.Secret) error
	DeleteSecret(ctx context.Context, namespace, name string) error

	// CreateEvent records an event about obj.
	CreateEvent(ctx context.Context, obj client.Object, reason, message, eventType string) error

	// IsKubernetesMode reports whether the backend is a live cluster. Only live
	// clusters garbage-collect secrets owned by a deleted repository.
	IsKubernetesMode() bool
	Close() error
}
