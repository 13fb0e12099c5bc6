package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackerRecordsSuccessAndFailure(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	if err := m.Track("reports:balance_warmup").End(nil); err != nil {
		t.Fatalf("success run returned error: %v", err)
	}
	wantErr := errors.New("redis down")
	if err := m.Track("reports:balance_warmup").End(wantErr); !errors.Is(err, wantErr) {
		t.Fatalf("failure run returned %v, want original error", err)
	}

	if got := testutil.ToFloat64(m.runs.WithLabelValues("reports:balance_warmup", "success")); got != 1 {
		t.Fatalf("success count %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("reports:balance_warmup", "failure")); got != 1 {
		t.Fatalf("failure count %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("reports:balance_warmup")); got != 1 {
		t.Fatalf("failures counter %v, want 1", got)
	}
}

func TestAddWarmedAccounts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddWarmedAccounts("reports:balance_warmup", 3)
	m.AddWarmedAccounts("reports:balance_warmup", 0)

	if got := testutil.ToFloat64(m.warmed.WithLabelValues("reports:balance_warmup")); got != 3 {
		t.Fatalf("warmed counter %v, want 3", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	wantErr := errors.New("boom")
	if err := m.Track("anything").End(wantErr); !errors.Is(err, wantErr) {
		t.Fatal("nil metrics must pass the error through")
	}
	m.AddWarmedAccounts("anything", 5)
}
