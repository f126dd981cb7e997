package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/metrics"
)

// ResilientConfig configures the circuit breaker and timeout around a backend.
type ResilientConfig struct {
	// Timeout bounds every operation. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `yaml:"max_requests"`
	// Interval is the cyclic period of the closed state after which the
	// failure counts are cleared. Zero never clears them.
	Interval time.Duration `yaml:"interval"`
	// OpenTimeout is how long the breaker stays open before going half-open.
	OpenTimeout time.Duration `yaml:"open_timeout"`
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// DefaultResilientConfig returns the settings used for remote backends.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Timeout:          time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// ResilientStore wraps a Store with a circuit breaker and per-operation
// timeout. Missing templates and invalid names do not count as failures.
type ResilientStore struct {
	store   Store
	name    string
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics metrics.Collector
	logger  *logging.Logger
}

// NewResilientStore wraps store. name labels logs and metrics.
func NewResilientStore(store Store, name string, config ResilientConfig, collector metrics.Collector) *ResilientStore {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}

	rs := &ResilientStore{
		store:   store,
		name:    name,
		timeout: config.Timeout,
		metrics: collector,
		logger:  logging.L().Named("store").Named(name),
	}

	rs.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidName)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			rs.logger.Warn("circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			rs.metrics.RecordCircuitState(name, state)
		},
	})

	rs.logger.Info("resilient store initialized",
		zap.Duration("timeout", config.Timeout),
		zap.Uint32("failure_threshold", config.FailureThreshold),
		zap.Duration("open_timeout", config.OpenTimeout),
	)
	return rs
}

// Name returns the backend label.
func (rs *ResilientStore) Name() string {
	return rs.name
}

// State returns the current breaker state.
func (rs *ResilientStore) State() metrics.CircuitState {
	switch rs.cb.State() {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}

func (rs *ResilientStore) execute(ctx context.Context, op, name string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	start := time.Now()

	if rs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.timeout)
		defer cancel()
	}

	result, err := rs.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})

	duration := time.Since(start)
	rs.metrics.RecordStoreOp(rs.name, op, err == nil || IsNotFound(err), duration)

	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rs.logger.Warn("circuit breaker open - request rejected",
			zap.String("operation", op),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("%w: %s circuit open", ErrUnavailable, rs.name)
	case ctx.Err() == context.DeadlineExceeded:
		rs.logger.Warn("operation timeout",
			zap.String("operation", op),
			zap.String("name", name),
			zap.Duration("timeout", rs.timeout),
			zap.Duration("elapsed", duration),
		)
		return nil, fmt.Errorf("%w: %s %s timed out", ErrUnavailable, rs.name, op)
	case IsNotFound(err), errors.Is(err, ErrInvalidName):
		return nil, err
	}

	rs.logger.Error("store operation failed",
		zap.String("operation", op),
		zap.String("name", name),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
	return nil, err
}

// Get returns the template stored under name.
func (rs *ResilientStore) Get(ctx context.Context, name string) (Template, error) {
	result, err := rs.execute(ctx, "get", name, func(ctx context.Context) (interface{}, error) {
		return rs.store.Get(ctx, name)
	})
	if err != nil {
		return Template{}, err
	}
	return result.(Template), nil
}

// Put stores tmpl.
func (rs *ResilientStore) Put(ctx context.Context, tmpl Template) error {
	_, err := rs.execute(ctx, "put", tmpl.Name, func(ctx context.Context) (interface{}, error) {
		return nil, rs.store.Put(ctx, tmpl)
	})
	return err
}

// Delete removes the template stored under name.
func (rs *ResilientStore) Delete(ctx context.Context, name string) error {
	_, err := rs.execute(ctx, "delete", name, func(ctx context.Context) (interface{}, error) {
		return nil, rs.store.Delete(ctx, name)
	})
	return err
}

// List returns every stored template.
func (rs *ResilientStore) List(ctx context.Context) ([]Template, error) {
	result, err := rs.execute(ctx, "list", "", func(ctx context.Context) (interface{}, error) {
		return rs.store.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Template), nil
}
