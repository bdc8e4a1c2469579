package events

import (
	"context"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"apprepo/pkg/apis/kubeapps/v1alpha1"
	"apprepo/pkg/logging"
)

// EventSink records an event about obj in a cluster.
type EventSink interface {
	CreateEvent(ctx context.Context, cluster string, obj client.Object, reason, message, eventType string) error
}

// EventGenerator turns terminal lifecycle events about a named repository
// into Kubernetes Events (or events.log lines on filesystem clusters).
type EventGenerator struct {
	sink      EventSink
	templates *MessageTemplateEngine
	timeout   time.Duration
}

// NewEventGenerator creates an EventGenerator writing to sink.
func NewEventGenerator(sink EventSink) *EventGenerator {
	return &EventGenerator{
		sink:      sink,
		templates: NewMessageTemplateEngine(),
		timeout:   5 * time.Second,
	}
}

// Templates returns the engine used to render messages.
func (g *EventGenerator) Templates() *MessageTemplateEngine {
	return g.templates
}

// Emit records e when it concerns a single repository. Recording failures are
// logged and dropped.
func (g *EventGenerator) Emit(e Event) {
	reason, ok := reasonFor(e)
	if !ok {
		return
	}

	obj := &v1alpha1.AppRepository{
		ObjectMeta: metav1.ObjectMeta{Name: e.Name, Namespace: e.Namespace},
	}
	data := EventData{
		Name:      e.Name,
		Namespace: e.Namespace,
		Cluster:   e.Cluster,
		Action:    e.Action,
		Operation: string(e.Kind),
		Chart:     e.Subject,
	}
	if repo, ok := e.Payload.(*v1alpha1.AppRepository); ok && repo != nil {
		obj = repo
		data.URL = repo.Spec.URL
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	message := g.templates.Render(reason, data)
	eventType := string(getEventType(reason))

	logging.Debug("events", "Generating AppRepository event: reason=%s, message=%s, type=%s",
		reason, message, eventType)

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	if err := g.sink.CreateEvent(ctx, e.Cluster, obj, string(reason), message, eventType); err != nil {
		logging.Debug("events", "Failed to record event %s for %s/%s: %v", reason, e.Namespace, e.Name, err)
	}
}

func reasonFor(e Event) (EventReason, bool) {
	if e.Name == "" {
		return "", false
	}
	switch e.Phase {
	case PhaseFailed:
		return ReasonAppRepositoryFailed, true
	case PhaseSucceeded:
		switch e.Action {
		case ActionCreateRepository:
			return ReasonAppRepositoryCreated, true
		case ActionUpdateRepository:
			return ReasonAppRepositoryUpdated, true
		case ActionDeleteRepository:
			return ReasonAppRepositoryDeleted, true
		case ActionResyncRepository:
			return ReasonAppRepositoryResyncRequested, true
		case ActionCheckChartAvailability:
			return ReasonAppRepositoryChartAvailable, true
		}
	}
	return "", false
}
