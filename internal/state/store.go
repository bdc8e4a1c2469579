// Package state reduces engine lifecycle events into a view of repositories
// and secrets.
//
// The engine only writes to a Store, through its Emit method. Readers take a
// Snapshot.
package state

import (
	"errors"
	"sync"

	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// Failure is the last failure recorded for an operation kind.
type Failure struct {
	Action string
	Err    error
}

// Snapshot is a copy of the store's view.
type Snapshot struct {
	Repositories      []v1alpha1.AppRepository
	Selected          *v1alpha1.AppRepository
	RepositorySecrets []corev1.Secret
	ImagePullSecrets  []corev1.Secret

	// Validation holds the last validation response, successful or not.
	Validation *api.ValidationResult

	FetchingRepositories bool
	FetchingSecrets      bool

	Errors map[api.OperationKind]Failure
}

// Err returns the last failure of kind, or nil.
func (s Snapshot) Err(kind api.OperationKind) error {
	if f, ok := s.Errors[kind]; ok {
		return f.Err
	}
	return nil
}

// Store implements events.Emitter.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
}

var _ events.Emitter = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: Snapshot{Errors: make(map[api.OperationKind]Failure)}}
}

// Snapshot returns a deep copy of the current view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Repositories:         copyRepos(s.state.Repositories),
		RepositorySecrets:    copySecrets(s.state.RepositorySecrets),
		ImagePullSecrets:     copySecrets(s.state.ImagePullSecrets),
		FetchingRepositories: s.state.FetchingRepositories,
		FetchingSecrets:      s.state.FetchingSecrets,
		Errors:               make(map[api.OperationKind]Failure, len(s.state.Errors)),
	}
	if s.state.Selected != nil {
		out.Selected = s.state.Selected.DeepCopy()
	}
	if s.state.Validation != nil {
		v := *s.state.Validation
		out.Validation = &v
	}
	for kind, f := range s.state.Errors {
		out.Errors[kind] = f
	}
	return out
}

// Err returns the last failure of kind, or nil.
func (s *Store) Err(kind api.OperationKind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err(kind)
}

// Emit applies e to the view.
func (s *Store) Emit(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Phase {
	case events.PhaseStarted:
		s.started(e)
	case events.PhaseSucceeded:
		s.setFetching(e.Action, false)
		s.succeeded(e)
	case events.PhaseFailed:
		s.setFetching(e.Action, false)
		s.failed(e)
	}
}

func (s *Store) started(e events.Event) {
	s.setFetching(e.Action, true)

	// A new attempt of the same action supersedes its last failure.
	if f, ok := s.state.Errors[e.Kind]; ok && f.Action == e.Action {
		delete(s.state.Errors, e.Kind)
	}
	if e.Action == events.ActionValidateRepository {
		s.state.Validation = nil
	}
}

func (s *Store) succeeded(e events.Event) {
	switch e.Action {
	case events.ActionListRepositories:
		if repos, ok := e.Payload.([]v1alpha1.AppRepository); ok {
			s.state.Repositories = copyRepos(repos)
		}

	case events.ActionFetchRepository, events.ActionCheckChartAvailability:
		if repo, ok := e.Payload.(*v1alpha1.AppRepository); ok && repo != nil {
			s.state.Selected = repo.DeepCopy()
		}

	case events.ActionCreateRepository, events.ActionUpdateRepository:
		if repo, ok := e.Payload.(*v1alpha1.AppRepository); ok && repo != nil {
			s.upsertRepo(repo)
			s.state.Selected = repo.DeepCopy()
		}

	case events.ActionDeleteRepository:
		s.removeRepo(e.Namespace, e.Name)

	case events.ActionValidateRepository:
		if result, ok := e.Payload.(*api.ValidationResult); ok && result != nil {
			v := *result
			s.state.Validation = &v
		}

	case events.ActionFetchRelatedSecrets:
		if secrets, ok := e.Payload.([]corev1.Secret); ok {
			s.state.RepositorySecrets = copySecrets(secrets)
		}

	case events.ActionFetchRepositorySecret:
		if secret, ok := e.Payload.(*corev1.Secret); ok && secret != nil {
			s.state.RepositorySecrets = upsertSecret(s.state.RepositorySecrets, secret)
		}

	case events.ActionFetchImagePullSecrets:
		if secrets, ok := e.Payload.([]corev1.Secret); ok {
			s.state.ImagePullSecrets = copySecrets(secrets)
		}

	case events.ActionCreatePullSecret:
		if secret, ok := e.Payload.(*corev1.Secret); ok && secret != nil {
			s.state.ImagePullSecrets = upsertSecret(s.state.ImagePullSecrets, secret)
		}
	}
}

func (s *Store) failed(e events.Event) {
	s.state.Errors[e.Kind] = Failure{Action: e.Action, Err: e.Err}

	if e.Action == events.ActionValidateRepository {
		var failure *api.ValidationFailure
		if errors.As(e.Err, &failure) {
			v := failure.Result
			s.state.Validation = &v
		}
	}
}

func (s *Store) setFetching(action string, fetching bool) {
	switch action {
	case events.ActionListRepositories, events.ActionFetchRepository:
		s.state.FetchingRepositories = fetching
	case events.ActionFetchRelatedSecrets, events.ActionFetchImagePullSecrets, events.ActionFetchRepositorySecret:
		s.state.FetchingSecrets = fetching
	}
}

func (s *Store) upsertRepo(repo *v1alpha1.AppRepository) {
	for i := range s.state.Repositories {
		current := &s.state.Repositories[i]
		if sameRepo(current, repo) {
			s.state.Repositories[i] = *repo.DeepCopy()
			return
		}
	}
	s.state.Repositories = append(s.state.Repositories, *repo.DeepCopy())
}

func (s *Store) removeRepo(namespace, name string) {
	kept := s.state.Repositories[:0]
	for _, repo := range s.state.Repositories {
		if repo.Namespace == namespace && repo.Name == name {
			continue
		}
		kept = append(kept, repo)
	}
	s.state.Repositories = kept

	if sel := s.state.Selected; sel != nil && sel.Namespace == namespace && sel.Name == name {
		s.state.Selected = nil
	}
}

func sameRepo(a, b *v1alpha1.AppRepository) bool {
	if a.UID != "" && a.UID == b.UID {
		return true
	}
	return a.Namespace == b.Namespace && a.Name == b.Name
}

func upsertSecret(secrets []corev1.Secret, secret *corev1.Secret) []corev1.Secret {
	for i := range secrets {
		if secrets[i].Namespace == secret.Namespace && secrets[i].Name == secret.Name {
			secrets[i] = *secret.DeepCopy()
			return secrets
		}
	}
	return append(secrets, *secret.DeepCopy())
}

func copyRepos(in []v1alpha1.AppRepository) []v1alpha1.AppRepository {
	if in == nil {
		return nil
	}
	out := make([]v1alpha1.AppRepository, len(in))
	for i := range in {
		in[i].DeepCopyInto(&out[i])
	}
	return out
}

func copySecrets(in []corev1.Secret) []corev1.Secret {
	if in == nil {
		return nil
	}
	out := make([]corev1.Secret, len(in))
	for i := range in {
		in[i].DeepCopyInto(&out[i])
	}
	return out
}
