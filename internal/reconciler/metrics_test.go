package reconciler

import (
	"sync"
	"testing"
)

func TestEngineMetrics_NewInstance(t *testing.T) {
	metrics := NewEngineMetrics()
	if metrics == nil {
		t.Fatal("expected non-nil metrics instance")
	}
	if metrics.actions == nil {
		t.Error("expected actions map to be initialized")
	}
}

func TestEngineMetrics_RecordAttemptAndSuccess(t *testing.T) {
	metrics := NewEngineMetrics()

	metrics.RecordAttempt("ListRepositories")
	metrics.RecordSuccess("ListRepositories")

	summary := metrics.GetSummary()
	if summary.TotalAttempts != 1 {
		t.Errorf("expected TotalAttempts=1, got %d", summary.TotalAttempts)
	}
	if summary.TotalSuccesses != 1 {
		t.Errorf("expected TotalSuccesses=1, got %d", summary.TotalSuccesses)
	}

	view, ok := metrics.GetActionMetrics("ListRepositories")
	if !ok {
		t.Fatal("expected ListRepositories metrics to exist")
	}
	if view.LastSuccessAt.IsZero() {
		t.Error("expected LastSuccessAt to be set")
	}
}

func TestEngineMetrics_RecordFailure(t *testing.T) {
	metrics := NewEngineMetrics()

	metrics.RecordAttempt("DeleteRepository")
	metrics.RecordFailure("DeleteRepository", "not found")

	view, ok := metrics.GetActionMetrics("DeleteRepository")
	if !ok {
		t.Fatal("expected DeleteRepository metrics to exist")
	}
	if view.Failures != 1 {
		t.Errorf("expected Failures=1, got %d", view.Failures)
	}
	if view.LastError != "not found" {
		t.Errorf("expected LastError=%q, got %q", "not found", view.LastError)
	}
	if view.LastFailureAt.IsZero() {
		t.Error("expected LastFailureAt to be set")
	}
}

func TestEngineMetrics_SummaryIsSortedWithRate(t *testing.T) {
	metrics := NewEngineMetrics()

	metrics.RecordAttempt("ValidateRepository")
	metrics.RecordFailure("ValidateRepository", "409")
	metrics.RecordAttempt("CreateRepository")
	metrics.RecordSuccess("CreateRepository")

	summary := metrics.GetSummary()
	if summary.FailureRate != 0.5 {
		t.Errorf("expected FailureRate=0.5, got %f", summary.FailureRate)
	}
	if len(summary.PerAction) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(summary.PerAction))
	}
	if summary.PerAction[0].Action != "CreateRepository" {
		t.Errorf("expected CreateRepository first, got %s", summary.PerAction[0].Action)
	}
}

func TestEngineMetrics_FailureRateZeroAttempts(t *testing.T) {
	summary := NewEngineMetrics().GetSummary()
	if summary.FailureRate != 0 {
		t.Errorf("expected FailureRate=0 with no attempts, got %f", summary.FailureRate)
	}
}

func TestEngineMetrics_Reset(t *testing.T) {
	metrics := NewEngineMetrics()
	metrics.RecordAttempt("ResyncRepository")
	metrics.Reset()

	if _, ok := metrics.GetActionMetrics("ResyncRepository"); ok {
		t.Error("expected metrics to be cleared")
	}
	if metrics.GetSummary().TotalAttempts != 0 {
		t.Error("expected TotalAttempts=0 after reset")
	}
}

func TestEngineMetrics_ConcurrentAccess(t *testing.T) {
	metrics := NewEngineMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.RecordAttempt("ResyncRepository")
			metrics.RecordSuccess("ResyncRepository")
		}()
	}
	wg.Wait()

	if got := metrics.GetSummary().TotalSuccesses; got != 10 {
		t.Errorf("expected TotalSuccesses=10, got %d", got)
	}
}
