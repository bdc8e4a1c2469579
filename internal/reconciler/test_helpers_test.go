package reconciler

import (
	"context"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// =============================================================================
// MockClients - Shared repository and secret client mock for all tests
// =============================================================================

// MockClients implements client.RepositoryClient and client.SecretClient.
// Repositories and secrets are keyed by namespace.
type MockClients struct {
	mu sync.Mutex

	Repositories map[string][]v1alpha1.AppRepository
	Secrets      map[string][]corev1.Secret

	// Configurable errors for testing error paths
	ListErrors   map[string]error
	GetError     error
	CreateError  error
	UpdateError  error
	DeleteError  error
	ResyncErrors map[string]error
	SecretsError error

	// UpdateResult is returned by UpdateAppRepository when set.
	UpdateResult *v1alpha1.AppRepository

	ValidationResult *api.ValidationResult
	ValidationError  error

	// Tracking for verifying calls
	Calls       []string
	Created     []api.RepositoryRequest
	Resynced    []string
	SecretGets  []string
	SecretCtxOK []bool
}

// NewMockClients creates an empty mock.
func NewMockClients() *MockClients {
	return &MockClients{
		Repositories: make(map[string][]v1alpha1.AppRepository),
		Secrets:      make(map[string][]corev1.Secret),
		ListErrors:   make(map[string]error),
		ResyncErrors: make(map[string]error),
	}
}

func (m *MockClients) record(call string) {
	m.Calls = append(m.Calls, call)
}

// CallCount returns the number of client calls made so far.
func (m *MockClients) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockClients) ListAppRepositories(ctx context.Context, cluster, namespace string) ([]v1alpha1.AppRepository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list " + namespace)
	if err := m.ListErrors[namespace]; err != nil {
		return nil, err
	}
	return append([]v1alpha1.AppRepository(nil), m.Repositories[namespace]...), nil
}

func (m *MockClients) GetAppRepository(ctx context.Context, cluster, namespace, name string) (*v1alpha1.AppRepository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("get " + namespace + "/" + name)
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, repo := range m.Repositories[namespace] {
		if repo.Name == name {
			return repo.DeepCopy(), nil
		}
	}
	return nil, apierrors.NewNotFound(v1alpha1.Resource(v1alpha1.ResourceName), name)
}

func (m *MockClients) CreateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create " + req.Namespace + "/" + req.Name)
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.Created = append(m.Created, req)
	return newRepo(req.Namespace, req.Name, "uid-"+req.Name, req.URL), nil
}

func (m *MockClients) UpdateAppRepository(ctx context.Context, cluster string, req api.RepositoryRequest) (*v1alpha1.AppRepository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update " + req.Namespace + "/" + req.Name)
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	if m.UpdateResult != nil {
		return m.UpdateResult.DeepCopy(), nil
	}
	return newRepo(req.Namespace, req.Name, "uid-"+req.Name, req.URL), nil
}

func (m *MockClients) DeleteAppRepository(ctx context.Context, cluster, namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete " + namespace + "/" + name)
	return m.DeleteError
}

func (m *MockClients) ResyncAppRepository(ctx context.Context, cluster, namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("resync " + namespace + "/" + name)
	m.Resynced = append(m.Resynced, name)
	return m.ResyncErrors[name]
}

func (m *MockClients) ValidateAppRepository(ctx context.Context, cluster, namespace string, req api.ValidationRequest) (*api.ValidationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("validate " + req.URL)
	if m.ValidationError != nil {
		return nil, m.ValidationError
	}
	result := *m.ValidationResult
	return &result, nil
}

func (m *MockClients) ListSecrets(ctx context.Context, cluster, namespace string) ([]corev1.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("secrets " + namespace)
	m.SecretCtxOK = append(m.SecretCtxOK, ctx.Err() == nil)
	if m.SecretsError != nil {
		return nil, m.SecretsError
	}
	return append([]corev1.Secret(nil), m.Secrets[namespace]...), nil
}

func (m *MockClients) GetSecret(ctx context.Context, cluster, namespace, name string) (*corev1.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("secret " + namespace + "/" + name)
	m.SecretGets = append(m.SecretGets, name)
	for _, secret := range m.Secrets[namespace] {
		if secret.Name == name {
			return secret.DeepCopy(), nil
		}
	}
	return nil, apierrors.NewNotFound(corev1.Resource("secrets"), name)
}

func (m *MockClients) CreatePullSecret(ctx context.Context, cluster string, req api.PullSecretRequest) (*corev1.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pull-secret " + req.Namespace + "/" + req.Name)
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: req.Name, Namespace: req.Namespace},
		Type:       corev1.SecretTypeDockerConfigJson,
	}, nil
}

// =============================================================================
// MockResolver - ChartResolver mock
// =============================================================================

type MockResolver struct {
	mu       sync.Mutex
	Versions map[string][]string
	Err      error
	Refs     []string
}

func (r *MockResolver) FetchVersions(ctx context.Context, cluster, namespace, ref string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Refs = append(r.Refs, ref)
	if r.Err != nil {
		return nil, r.Err
	}
	versions, ok := r.Versions[ref]
	if !ok {
		return nil, api.NewNotFoundError("chart", ref)
	}
	return versions, nil
}

// =============================================================================
// Helpers
// =============================================================================

func newRepo(namespace, name, uid, url string) *v1alpha1.AppRepository {
	return &v1alpha1.AppRepository{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, UID: types.UID(uid)},
		Spec:       v1alpha1.AppRepositorySpec{Type: v1alpha1.RepositoryTypeHelm, URL: url},
	}
}

func newTestEngine(mock *MockClients, resolver ChartResolver) (*Engine, *events.Recorder) {
	recorder := events.NewRecorder(100)
	return NewEngine(mock, mock, resolver, recorder, Config{}), recorder
}

// terminal returns the Succeeded and Failed events of action.
func terminal(recorder *events.Recorder, action string) []events.Event {
	return recorder.Filter(func(e events.Event) bool {
		return e.Action == action && e.Phase != events.PhaseStarted
	})
}

func phases(recorder *events.Recorder, action string) []events.Phase {
	var out []events.Phase
	for _, e := range recorder.Filter(func(e events.Event) bool { return e.Action == action }) {
		out = append(out, e.Phase)
	}
	return out
}
