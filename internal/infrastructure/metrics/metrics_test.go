package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.ExpensesCreated == nil || m.HTTPRequests == nil || m.LedgerErrors == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	// Vec metrics only appear once a label set has been observed.
	m.RecordExpense("EQUAL", 10)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerRecorders(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordExpense("EQUAL", 100)
	m.RecordExpense("EQUAL", 50)
	m.RecordExpense("EXACT", 20)
	m.RecordSettlement(30)
	m.RecordLedgerError("apply_split", "invalid_split")
	m.ObserveLedgerDuration("apply_split", 5*time.Millisecond)
	m.RecordAuth("failure")

	if got := testutil.ToFloat64(m.ExpensesCreated.WithLabelValues("EQUAL")); got != 2 {
		t.Errorf("EQUAL expenses = %v, want 2", got)
	}

	if got := testutil.ToFloat64(m.ExpensesCreated.WithLabelValues("EXACT")); got != 1 {
		t.Errorf("EXACT expenses = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.SettlementsCreated); got != 1 {
		t.Errorf("settlements = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.LedgerErrors.WithLabelValues("apply_split", "invalid_split")); got != 1 {
		t.Errorf("ledger errors = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")); got != 1 {
		t.Errorf("auth failures = %v, want 1", got)
	}

	if got := testutil.CollectAndCount(m.LedgerDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}
