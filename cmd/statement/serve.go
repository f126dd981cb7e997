package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/metrics"
	promMetrics "github.com/alsaadxx12/roda10-sub000/pkg/metrics/prometheus"
	"github.com/alsaadxx12/roda10-sub000/pkg/preview"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("serve", stderr)
	configFile := fs.String("config", "", "YAML config `file`")
	addr := fs.String("addr", "", "listen `address`, overrides the config file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	config, err := LoadConfig(*configFile)
	if err != nil {
		return fail(stderr, "serve", err)
	}
	if *addr != "" {
		config.Server.Address = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, config); err != nil {
		return fail(stderr, "serve", err)
	}
	return exitOK
}

// serve wires the engine, store and metrics into a preview server and runs
// it until ctx is done.
func serve(ctx context.Context, config Config) error {
	logger, err := logging.NewLogger(config.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	logging.SetGlobal(logger)
	statement.SetLogger(logger.Named("statement"))

	reg := prometheus.NewRegistry()
	collector := promMetrics.NewPrometheusCollector(config.Metrics.Namespace)
	if err := collector.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if config.Metrics.Runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	engine := statement.NewWithOptions(
		statement.WithConfig(config.Engine),
		statement.WithLogger(logger.Named("engine")),
		statement.WithMetrics(collector),
	)

	st, closeStore, err := openStore(ctx, config.Store, collector, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	server := preview.NewServer(engine, st, config.Server,
		preview.WithLogger(logger.Named("http")),
		preview.WithRegistry(reg),
	)

	logger.Info("starting preview server",
		zap.String("address", config.Server.Address),
		zap.String("store", config.Store.Backend),
	)
	return server.Run(ctx)
}

// openStore builds the configured backend behind a circuit breaker. The
// returned store is nil for the none backend.
func openStore(ctx context.Context, config StoreConfig, collector metrics.Collector, logger *logging.Logger) (store.Store, func(), error) {
	noop := func() {}

	var backend store.Store
	closeFn := noop
	switch config.Backend {
	case backendNone:
		return nil, noop, nil

	case backendMemory:
		backend = store.NewMemoryStore()

	case backendDir:
		d, err := store.NewDirStore(config.Dir)
		if err != nil {
			return nil, noop, err
		}
		if config.Watch {
			if err := d.Watch(ctx); err != nil {
				return nil, noop, err
			}
			go logChanges(ctx, d, logger)
		}
		backend, closeFn = d, func() { d.Close() }

	case backendRedis:
		r, err := store.NewRedisStore(config.Redis)
		if err != nil {
			return nil, noop, err
		}
		backend, closeFn = r, func() { r.Close() }

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", config.Backend)
	}

	return store.NewResilientStore(backend, config.Backend, config.Resilience, collector), closeFn, nil
}

func logChanges(ctx context.Context, d *store.DirStore, logger *logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-d.Changes():
			logger.Info("template reloaded", zap.String("name", name))
		}
	}
}
