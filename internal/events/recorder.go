package events

import (
	"sync"

	"apprepo/pkg/logging"
)

// DefaultRecorderSize is the capacity of a Recorder created with size <= 0.
const DefaultRecorderSize = 1000

// Recorder keeps the most recent events in a fixed-size ring buffer.
type Recorder struct {
	mu    sync.RWMutex
	items []Event
	head  int
	count int
}

// NewRecorder creates a Recorder holding at most size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{items: make([]Event, size)}
}

// Emit stores e, overwriting the oldest event when full.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.head] = e
	r.head = (r.head + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

// Events returns the stored events from oldest to newest.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, r.count)
	start := (r.head - r.count + len(r.items)) % len(r.items)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(start+i)%len(r.items)]
	}
	return out
}

// Filter returns the stored events matching keep, oldest first.
func (r *Recorder) Filter(keep func(Event) bool) []Event {
	var out []Event
	for _, e := range r.Events() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of stored events.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Reset drops every stored event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head, r.count = 0, 0
	clear(r.items)
}

// LogEmitter writes every event to the structured log.
type LogEmitter struct{}

func (LogEmitter) Emit(e Event) {
	switch e.Phase {
	case PhaseFailed:
		logging.Warn("Reconciler", "%s failed for %s (cluster %s, kind %s): %v",
			e.Action, target(e), e.Cluster, e.Kind, e.Err)
	case PhaseSucceeded:
		logging.Info("Reconciler", "%s succeeded for %s (cluster %s)", e.Action, target(e), e.Cluster)
	default:
		logging.Debug("Reconciler", "%s started for %s (cluster %s)", e.Action, target(e), e.Cluster)
	}
}

func target(e Event) string {
	if e.Name == "" {
		return e.Namespace
	}
	return e.Namespace + "/" + e.Name
}
