package events

import (
	"fmt"
	"time"

	"apprepo/internal/api"
)

// Phase is the stage of an engine operation an Event reports.
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Event is a lifecycle notification emitted by the reconciliation engine.
// Every operation emits Started, then exactly one of Succeeded or Failed.
type Event struct {
	Phase Phase

	// Kind tags the change the operation attempts. Failed events are
	// reported under this kind.
	Kind api.OperationKind

	// Action names the engine operation, e.g. "ListRepositories".
	Action string

	Cluster   string
	Namespace string
	Name      string

	// Subject is a secondary target, such as the chart of a chart check.
	Subject string

	// Payload carries the result of a successful operation.
	Payload interface{}

	// Err is the classified failure.
	Err error

	Time time.Time
}

func (e Event) String() string {
	target := e.Namespace
	if e.Name != "" {
		target += "/" + e.Name
	}
	switch e.Phase {
	case PhaseFailed:
		return fmt.Sprintf("%s %s %s [%s]: %v", e.Action, e.Phase, target, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s %s", e.Action, e.Phase, target)
	}
}

// Emitter receives lifecycle events. Implementations must be safe for
// concurrent use and must not block for long.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// Multi fans an event out to several emitters in order.
func Multi(emitters ...Emitter) Emitter {
	var out multiEmitter
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type multiEmitter []Emitter

func (m multiEmitter) Emit(e Event) {
	for _, emitter := range m {
		emitter.Emit(e)
	}
}

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})

// EventType represents the type/severity of a Kubernetes Event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason is the reason of a recorded Kubernetes Event.
type EventReason string

const (
	ReasonAppRepositoryCreated         EventReason = "AppRepositoryCreated"
	ReasonAppRepositoryUpdated         EventReason = "AppRepositoryUpdated"
	ReasonAppRepositoryDeleted         EventReason = "AppRepositoryDeleted"
	ReasonAppRepositoryResyncRequested EventReason = "AppRepositoryResyncRequested"
	ReasonAppRepositoryChartAvailable  EventReason = "AppRepositoryChartAvailable"

	// ReasonAppRepositoryFailed covers any failed operation on a named repository.
	ReasonAppRepositoryFailed EventReason = "AppRepositoryFailed"
)

// EventData holds contextual information for event message templating.
type EventData struct {
	Name      string
	Namespace string
	Cluster   string
	Action    string

	// Operation is the kind of change that failed, for failure events.
	Operation string

	URL   string
	Chart string
	Error string
}

func getEventType(reason EventReason) EventType {
	if reason == ReasonAppRepositoryFailed {
		return EventTypeWarning
	}
	return EventTypeNormal
}
