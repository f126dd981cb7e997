package metrics

import (
	"time"
)

// Collector defines the interface for collecting engine, store and circuit metrics.
// Implementations can export metrics to various backends (Prometheus, StatsD, etc.).
type Collector interface {
	// Rendering
	RecordRender(kind string, duration time.Duration, transactions int)
	RecordWarnings(code string, count int)
	RecordCacheLookup(hit bool)

	// Template store
	RecordStoreOp(backend, op string, success bool, duration time.Duration)

	// Circuit breaker
	RecordCircuitState(backend string, state CircuitState)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is allowing requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is blocking requests.
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is testing if the backend has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is the default collector when metrics are not needed.
type NoOpCollector struct{}

// RecordRender does nothing.
func (NoOpCollector) RecordRender(kind string, duration time.Duration, transactions int) {}

// RecordWarnings does nothing.
func (NoOpCollector) RecordWarnings(code string, count int) {}

// RecordCacheLookup does nothing.
func (NoOpCollector) RecordCacheLookup(hit bool) {}

// RecordStoreOp does nothing.
func (NoOpCollector) RecordStoreOp(backend, op string, success bool, duration time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(backend string, state CircuitState) {}
