package reconciler

import (
	"sort"
	"sync"
	"time"

	"apprepo/pkg/logging"
)

// EngineMetrics tracks how often each engine operation runs and how it ends.
//
// Counters are kept per action (see the events package for the action names)
// so a failing operation can be spotted without scanning the event stream.
type EngineMetrics struct {
	mu sync.RWMutex

	actions map[string]*actionMetrics

	totalAttempts  int64
	totalSuccesses int64
	totalFailures  int64
}

type actionMetrics struct {
	Attempts      int64
	Successes     int64
	Failures      int64
	LastAttemptAt time.Time
	LastSuccessAt time.Time
	LastFailureAt time.Time
	LastError     string
}

// NewEngineMetrics creates an empty EngineMetrics.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		actions: make(map[string]*actionMetrics),
	}
}

func (m *EngineMetrics) getOrCreate(action string) *actionMetrics {
	if metrics, exists := m.actions[action]; exists {
		return metrics
	}
	metrics := &actionMetrics{}
	m.actions[action] = metrics
	return metrics
}

// RecordAttempt records the start of an operation.
func (m *EngineMetrics) RecordAttempt(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(action)
	metrics.Attempts++
	metrics.LastAttemptAt = time.Now()
	m.totalAttempts++
}

// RecordSuccess records a successful operation.
func (m *EngineMetrics) RecordSuccess(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(action)
	metrics.Successes++
	metrics.LastSuccessAt = time.Now()
	m.totalSuccesses++
}

// RecordFailure records a failed operation together with its cause.
func (m *EngineMetrics) RecordFailure(action string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(action)
	metrics.Failures++
	metrics.LastFailureAt = time.Now()
	metrics.LastError = reason
	m.totalFailures++

	logging.Debug("EngineMetrics", "%s failure: %s (failures: %d)", action, reason, metrics.Failures)
}

// EngineMetricsSummary is a point-in-time copy of the engine metrics.
type EngineMetricsSummary struct {
	TotalAttempts  int64              `json:"total_attempts"`
	TotalSuccesses int64              `json:"total_successes"`
	TotalFailures  int64              `json:"total_failures"`
	FailureRate    float64            `json:"failure_rate"`
	PerAction      []ActionMetricView `json:"per_action"`
}

// ActionMetricView is a read-only view of the metrics of one action.
type ActionMetricView struct {
	Action        string    `json:"action"`
	Attempts      int64     `json:"attempts"`
	Successes     int64     `json:"successes"`
	Failures      int64     `json:"failures"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	LastFailureAt time.Time `json:"last_failure_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// GetSummary returns a summary of all recorded metrics, sorted by action.
func (m *EngineMetrics) GetSummary() EngineMetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := EngineMetricsSummary{
		TotalAttempts:  m.totalAttempts,
		TotalSuccesses: m.totalSuccesses,
		TotalFailures:  m.totalFailures,
		PerAction:      make([]ActionMetricView, 0, len(m.actions)),
	}
	if m.totalAttempts > 0 {
		summary.FailureRate = float64(m.totalFailures) / float64(m.totalAttempts)
	}

	for action, metrics := range m.actions {
		summary.PerAction = append(summary.PerAction, view(action, metrics))
	}
	sort.Slice(summary.PerAction, func(i, j int) bool {
		return summary.PerAction[i].Action < summary.PerAction[j].Action
	})
	return summary
}

// GetActionMetrics returns the metrics of a single action.
func (m *EngineMetrics) GetActionMetrics(action string) (ActionMetricView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics, ok := m.actions[action]
	if !ok {
		return ActionMetricView{}, false
	}
	return view(action, metrics), true
}

// LogSummary writes the totals and one line per action that failed at debug level.
func (m *EngineMetrics) LogSummary() {
	summary := m.GetSummary()
	if summary.TotalAttempts == 0 {
		return
	}
	logging.Debug("EngineMetrics", "%d operations, %d succeeded, %d failed (failure rate %.2f)",
		summary.TotalAttempts, summary.TotalSuccesses, summary.TotalFailures, summary.FailureRate)
	for _, action := range summary.PerAction {
		if action.Failures == 0 {
			continue
		}
		logging.Debug("EngineMetrics", "%s: %d of %d failed, last error: %s",
			action.Action, action.Failures, action.Attempts, action.LastError)
	}
}

// Reset clears all counters.
func (m *EngineMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = make(map[string]*actionMetrics)
	m.totalAttempts = 0
	m.totalSuccesses = 0
	m.totalFailures = 0
}

func view(action string, metrics *actionMetrics) ActionMetricView {
	return ActionMetricView{
		Action:        action,
		Attempts:      metrics.Attempts,
		Successes:     metrics.Successes,
		Failures:      metrics.Failures,
		LastAttemptAt: metrics.LastAttemptAt,
		LastSuccessAt: metrics.LastSuccessAt,
		LastFailureAt: metrics.LastFailureAt,
		LastError:     metrics.LastError,
	}
}
