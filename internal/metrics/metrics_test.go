package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMetricWrite(t *testing.T) {
	tests := []struct {
		name    string
		written bool
		err     error
		outcome string
	}{
		{"written", true, nil, "written"},
		{"unchanged", false, nil, "unchanged"},
		{"failed", false, errors.New("down"), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MetricWrites.WithLabelValues("test_family", tt.outcome)
			before := testutil.ToFloat64(c)
			RecordMetricWrite("test_family", tt.written, tt.err)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("%s counter delta = %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	errs := DBQueryErrors.WithLabelValues("test_op")
	before := testutil.ToFloat64(errs)

	RecordDBQuery("test_op", 10*time.Millisecond, nil)
	RecordDBQuery("test_op", 10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("error counter delta = %v, want 1", got)
	}
}

func TestRecordClassified(t *testing.T) {
	rel := ItemsClassified.WithLabelValues("test_pop", "true")
	irr := ItemsClassified.WithLabelValues("test_pop", "false")
	relBefore, irrBefore := testutil.ToFloat64(rel), testutil.ToFloat64(irr)

	RecordClassified("test_pop", 3, 10)

	if got := testutil.ToFloat64(rel) - relBefore; got != 3 {
		t.Errorf("relevant delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(irr) - irrBefore; got != 7 {
		t.Errorf("irrelevant delta = %v, want 7", got)
	}
}

func TestCollectorsLint(t *testing.T) {
	RecordAPIRequest("GET", "/health", "200", time.Millisecond)
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"relevance_api_requests_total", "relevance_metric_writes_total")
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint problem in %s: %s", p.Metric, p.Text)
	}
}
