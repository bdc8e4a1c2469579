package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/client"
	"apprepo/internal/events"
	"apprepo/internal/podtemplate"
	"apprepo/pkg/logging"
)

// Engine performs the AppRepository lifecycle operations and reports their
// progress as events.
//
// Operations never return errors. Each one emits a Started event and then
// exactly one Succeeded or Failed event; operations that change state also
// return whether they succeeded. Engine is safe for concurrent use.
type Engine struct {
	repos    client.RepositoryClient
	secrets  client.SecretClient
	resolver ChartResolver
	emitter  events.Emitter
	config   Config
	metrics  *EngineMetrics

	// detached tracks companion fetches started by list and update.
	detached sync.WaitGroup

	now func() time.Time
}

// NewEngine creates an engine. A nil emitter discards events.
func NewEngine(repos client.RepositoryClient, secrets client.SecretClient, resolver ChartResolver, emitter events.Emitter, cfg Config) *Engine {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Engine{
		repos:    repos,
		secrets:  secrets,
		resolver: resolver,
		emitter:  emitter,
		config:   cfg.withDefaults(),
		metrics:  NewEngineMetrics(),
		now:      time.Now,
	}
}

// GlobalNamespace returns the namespace whose repositories are shared.
func (e *Engine) GlobalNamespace() string {
	return e.config.GlobalNamespace
}

// Metrics returns the per-action counters.
func (e *Engine) Metrics() *EngineMetrics {
	return e.metrics
}

// Wait blocks until all detached companion fetches have finished.
func (e *Engine) Wait() {
	e.detached.Wait()
}

// ListRepositories lists the repositories of namespace. With includeGlobal
// the repositories of the global namespace are merged in, the namespace's own
// copy winning on duplicates. A successful listing also refreshes the
// namespace's repository secrets in the background.
func (e *Engine) ListRepositories(ctx context.Context, cluster, namespace string, includeGlobal bool) {
	op := e.start(operation{action: events.ActionListRepositories, kind: api.OperationFetch, cluster: cluster, namespace: namespace})

	repos, err := e.repos.ListAppRepositories(ctx, cluster, namespace)
	if err != nil {
		op.fail(err)
		return
	}

	e.detach(ctx, func(ctx context.Context) {
		e.FetchRelatedSecrets(ctx, cluster, namespace)
	})

	if includeGlobal && namespace != e.config.GlobalNamespace {
		op.restart(e.config.GlobalNamespace)
		global, err := e.repos.ListAppRepositories(ctx, cluster, e.config.GlobalNamespace)
		if err != nil {
			op.fail(err)
			return
		}
		repos = MergeByUID(repos, global)
	}

	op.succeed(repos)
}

// FetchRepository reads a single repository.
func (e *Engine) FetchRepository(ctx context.Context, cluster, namespace, name string) {
	op := e.start(operation{action: events.ActionFetchRepository, kind: api.OperationFetch, cluster: cluster, namespace: namespace, name: name})

	repo, err := e.repos.GetAppRepository(ctx, cluster, namespace, name)
	if err != nil {
		op.fail(err)
		return
	}
	op.succeed(repo)
}

// CreateRepository creates a repository from form. The pod template is
// decoded before any request is made.
func (e *Engine) CreateRepository(ctx context.Context, cluster string, form api.RepositoryForm) bool {
	op := e.start(operation{action: events.ActionCreateRepository, kind: api.OperationCreate, cluster: cluster, namespace: form.Namespace, name: form.Name})

	template, err := podtemplate.Decode(form.PodTemplate)
	if err != nil {
		return op.fail(err)
	}

	repo, err := e.repos.CreateAppRepository(ctx, cluster, form.Request(template))
	if err != nil {
		return op.fail(err)
	}
	return op.succeed(repo)
}

// UpdateRepository replaces the spec of an existing repository. On success
// the secrets it references are refreshed in the background, once per
// distinct secret.
func (e *Engine) UpdateRepository(ctx context.Context, cluster string, form api.RepositoryForm) bool {
	op := e.start(operation{action: events.ActionUpdateRepository, kind: api.OperationUpdate, cluster: cluster, namespace: form.Namespace, name: form.Name})

	template, err := podtemplate.Decode(form.PodTemplate)
	if err != nil {
		return op.fail(err)
	}

	repo, err := e.repos.UpdateAppRepository(ctx, cluster, form.Request(template))
	if err != nil {
		return op.fail(err)
	}

	namespace := repo.Namespace
	if namespace == "" {
		namespace = form.Namespace
	}
	for _, name := range distinct(repo.HeaderSecretName(), repo.CustomCASecretName()) {
		e.detach(ctx, func(ctx context.Context) {
			e.FetchRepositorySecret(ctx, cluster, namespace, name)
		})
	}
	return op.succeed(repo)
}

// DeleteRepository deletes a repository.
func (e *Engine) DeleteRepository(ctx context.Context, cluster, namespace, name string) bool {
	op := e.start(operation{action: events.ActionDeleteRepository, kind: api.OperationDelete, cluster: cluster, namespace: namespace, name: name})

	if err := e.repos.DeleteAppRepository(ctx, cluster, namespace, name); err != nil {
		return op.fail(err)
	}
	return op.succeed(nil)
}

// ResyncRepository asks the repository's sync job to run again.
func (e *Engine) ResyncRepository(ctx context.Context, cluster, namespace, name string) {
	_ = e.resync(ctx, cluster, namespace, name)
}

// ResyncAllRepositories resyncs every key, at most Config.ResyncConcurrency at
// a time. A failure never stops the other resyncs. Outcomes follow the order
// of keys.
func (e *Engine) ResyncAllRepositories(ctx context.Context, cluster string, keys []api.RepositoryKey) []ResyncOutcome {
	outcomes := make([]ResyncOutcome, len(keys))

	var g errgroup.Group
	g.SetLimit(e.config.ResyncConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			outcomes[i] = ResyncOutcome{Key: key, Err: e.resync(ctx, cluster, key.Namespace, key.Name)}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	logging.Info("Reconciler", "Resynced %d AppRepositories in cluster %q (%d failed)", len(keys), cluster, failed)
	return outcomes
}

func (e *Engine) resync(ctx context.Context, cluster, namespace, name string) error {
	op := e.start(operation{action: events.ActionResyncRepository, kind: api.OperationUpdate, cluster: cluster, namespace: namespace, name: name})

	if err := e.repos.ResyncAppRepository(ctx, cluster, namespace, name); err != nil {
		op.fail(err)
		return op.err
	}
	op.succeed(nil)
	return nil
}

// ValidateRepository checks that the repository described by req can be
// reached. Only a 200 response passes.
func (e *Engine) ValidateRepository(ctx context.Context, cluster, namespace string, req api.ValidationRequest) bool {
	op := e.start(operation{action: events.ActionValidateRepository, kind: api.OperationValidate, cluster: cluster, namespace: namespace, subject: req.URL})

	result, err := e.repos.ValidateAppRepository(ctx, cluster, namespace, req)
	if err != nil {
		return op.fail(err)
	}
	if !result.Succeeded() {
		return op.fail(&api.ValidationFailure{Result: *result})
	}
	return op.succeed(result)
}

// CheckChartAvailability reports whether chart is served by the repository
// repoName. Any resolution failure is reported as the chart not being found.
func (e *Engine) CheckChartAvailability(ctx context.Context, cluster, namespace, repoName, chart string) bool {
	op := e.start(operation{action: events.ActionCheckChartAvailability, kind: api.OperationFetch, cluster: cluster, namespace: namespace, name: repoName, subject: chart})

	repo, err := e.repos.GetAppRepository(ctx, cluster, namespace, repoName)
	if err != nil {
		return op.fail(err)
	}

	if e.resolver == nil {
		err = errors.New("no chart resolver configured")
	} else {
		_, err = e.resolver.FetchVersions(ctx, cluster, namespace, repoName+"/"+chart)
	}
	if err != nil {
		logging.Error("Reconciler", err, "Failed to resolve chart %s in AppRepository %s/%s", chart, namespace, repoName)
		return op.fail(api.NewChartNotFoundError(chart, repoName))
	}
	return op.succeed(repo)
}

// CreatePullSecret creates a docker registry secret for image pulls.
func (e *Engine) CreatePullSecret(ctx context.Context, cluster string, req api.PullSecretRequest) bool {
	op := e.start(operation{action: events.ActionCreatePullSecret, kind: api.OperationFetch, cluster: cluster, namespace: req.Namespace, subject: req.Name})

	secret, err := e.secrets.CreatePullSecret(ctx, cluster, req)
	if err != nil {
		return op.fail(err)
	}
	return op.succeed(secret)
}

// FetchRelatedSecrets lists the secrets of namespace owned by an AppRepository.
//
// Ownership is checked client side, so every secret of the namespace is
// read.
func (e *Engine) FetchRelatedSecrets(ctx context.Context, cluster, namespace string) {
	e.fetchSecrets(ctx, events.ActionFetchRelatedSecrets, cluster, namespace, func(secret *corev1.Secret) bool {
		return client.IsOwnedByRepository(secret, "")
	})
}

// FetchImagePullSecrets lists the docker registry secrets of namespace.
func (e *Engine) FetchImagePullSecrets(ctx context.Context, cluster, namespace string) {
	e.fetchSecrets(ctx, events.ActionFetchImagePullSecrets, cluster, namespace, func(secret *corev1.Secret) bool {
		return secret.Type == corev1.SecretTypeDockerConfigJson
	})
}

// FetchRepositorySecret reads a single secret.
func (e *Engine) FetchRepositorySecret(ctx context.Context, cluster, namespace, name string) {
	op := e.start(operation{action: events.ActionFetchRepositorySecret, kind: api.OperationFetch, cluster: cluster, namespace: namespace, subject: name})

	secret, err := e.secrets.GetSecret(ctx, cluster, namespace, name)
	if err != nil {
		op.fail(err)
		return
	}
	op.succeed(secret)
}

func (e *Engine) fetchSecrets(ctx context.Context, action, cluster, namespace string, keep func(*corev1.Secret) bool) {
	op := e.start(operation{action: action, kind: api.OperationFetch, cluster: cluster, namespace: namespace})

	secrets, err := e.secrets.ListSecrets(ctx, cluster, namespace)
	if err != nil {
		op.fail(err)
		return
	}

	kept := make([]corev1.Secret, 0, len(secrets))
	for i := range secrets {
		if keep(&secrets[i]) {
			kept = append(kept, secrets[i])
		}
	}
	logging.Debug("Reconciler", "%s kept %d of %d secrets in %s", action, len(kept), len(secrets), namespace)
	op.succeed(kept)
}

// detach runs task in the background on a context that outlives the caller's
// cancellation.
func (e *Engine) detach(ctx context.Context, task func(context.Context)) {
	detachedCtx := context.WithoutCancel(ctx)
	e.detached.Go(func() {
		task(detachedCtx)
	})
}

// operation emits the events of one engine call.
type operation struct {
	engine *Engine

	action    string
	kind      api.OperationKind
	cluster   string
	namespace string
	name      string
	subject   string

	err error
}

func (e *Engine) start(op operation) *operation {
	op.engine = e
	e.metrics.RecordAttempt(op.action)
	op.emit(events.PhaseStarted, op.namespace, nil)
	return &op
}

// restart reports that the operation moved on to another namespace.
func (op *operation) restart(namespace string) {
	op.emit(events.PhaseStarted, namespace, nil)
}

func (op *operation) succeed(payload interface{}) bool {
	op.engine.metrics.RecordSuccess(op.action)
	op.emit(events.PhaseSucceeded, op.namespace, payload)
	return true
}

func (op *operation) fail(err error) bool {
	op.err = api.Classify(err)
	op.engine.metrics.RecordFailure(op.action, op.err.Error())
	op.emit(events.PhaseFailed, op.namespace, nil)
	return false
}

func (op *operation) emit(phase events.Phase, namespace string, payload interface{}) {
	event := events.Event{
		Phase:     phase,
		Action:    op.action,
		Cluster:   op.cluster,
		Namespace: namespace,
		Name:      op.name,
		Subject:   op.subject,
		Kind:      op.kind,
		Payload:   payload,
		Time:      op.engine.now(),
	}
	if phase == events.PhaseFailed {
		event.Err = op.err
	}
	op.engine.emitter.Emit(event)
}

func distinct(names ...string) []string {
	var out []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
