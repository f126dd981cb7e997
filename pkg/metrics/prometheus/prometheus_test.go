package prometheus

import (
	"testing"
	"time"

	"github.com/alsaadxx12/roda10-sub000/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	pc := NewPrometheusCollector("test")
	reg := prometheus.NewRegistry()
	if err := pc.Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := pc.Register(reg); err == nil {
		t.Error("second Register() on the same registry should fail")
	}
}

func TestRecordRender(t *testing.T) {
	pc := NewPrometheusCollector("test")
	pc.RecordRender("statement", 2*time.Millisecond, 3)
	pc.RecordRender("statement", time.Millisecond, 0)
	pc.RecordRender("voucher", time.Millisecond, 0)

	if got := testutil.ToFloat64(pc.renders.WithLabelValues("statement")); got != 2 {
		t.Errorf("statement renders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pc.renders.WithLabelValues("voucher")); got != 1 {
		t.Errorf("voucher renders = %v, want 1", got)
	}
}

func TestRecordWarnings(t *testing.T) {
	pc := NewPrometheusCollector("test")
	pc.RecordWarnings("UNMATCHED_CLOSE", 2)
	pc.RecordWarnings("UNMATCHED_CLOSE", 0)
	pc.RecordWarnings("UNMATCHED_CLOSE", 1)

	if got := testutil.ToFloat64(pc.warnings.WithLabelValues("UNMATCHED_CLOSE")); got != 3 {
		t.Errorf("warnings = %v, want 3", got)
	}
}

func TestRecordStoreOpAndCircuit(t *testing.T) {
	pc := NewPrometheusCollector("test")
	pc.RecordStoreOp("redis", "get", true, time.Millisecond)
	pc.RecordStoreOp("redis", "get", false, time.Millisecond)
	pc.RecordCircuitState("redis", metrics.CircuitOpen)
	pc.RecordCircuitState("redis", metrics.CircuitHalfOpen)

	if got := testutil.ToFloat64(pc.storeOps.WithLabelValues("redis", "get")); got != 2 {
		t.Errorf("store ops = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pc.storeErrors.WithLabelValues("redis", "get")); got != 1 {
		t.Errorf("store errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pc.circuitOpens.WithLabelValues("redis")); got != 1 {
		t.Errorf("circuit opens = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pc.circuitState.WithLabelValues("redis")); got != float64(metrics.CircuitHalfOpen) {
		t.Errorf("circuit state = %v, want %v", got, float64(metrics.CircuitHalfOpen))
	}
}

func TestRecordCacheLookup(t *testing.T) {
	pc := NewPrometheusCollector("test")
	pc.RecordCacheLookup(true)
	pc.RecordCacheLookup(false)
	pc.RecordCacheLookup(true)

	if got := testutil.ToFloat64(pc.cacheLookups.WithLabelValues("true")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
}
