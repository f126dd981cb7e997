// Package preview serves template authoring and rendering over HTTP.
package preview

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

// Config holds the HTTP server settings.
type Config struct {
	// Address to listen on (e.g., ":8080")
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	// MaxBodyBytes caps request bodies on PUT and POST routes.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// StoreTimeout bounds each store call made while serving a request.
	StoreTimeout time.Duration `yaml:"store_timeout"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:      ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxBodyBytes: 4 << 20,
		StoreTimeout: 5 * time.Second,
	}
}

// Server is the preview HTTP server.
type Server struct {
	engine  *statement.Engine
	store   store.Store
	loader  *store.Loader
	config  Config
	logger  *logging.Logger
	router  *mux.Router
	server  *http.Server
	metrics *httpMetrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry registers the HTTP metrics in reg and serves reg on /metrics.
// Without it the server uses a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.metrics = newHTTPMetrics(reg)
		}
	}
}

// NewServer builds the router. st may be nil, in which case only the
// built-in templates are available and the template routes answer 503.
func NewServer(engine *statement.Engine, st store.Store, config Config, opts ...Option) *Server {
	if engine == nil {
		engine = statement.DefaultEngine
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	if config.StoreTimeout <= 0 {
		config.StoreTimeout = DefaultConfig().StoreTimeout
	}

	s := &Server{
		engine: engine,
		store:  st,
		loader: store.NewLoader(st),
		config: config,
		logger: logging.L().Named("preview"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newHTTPMetrics(prometheus.NewRegistry())
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.accessLogMiddleware, s.metrics.middleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/catalogue", s.handleCatalogue).Methods(http.MethodGet)
	r.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/templates/{name}", s.handleGetTemplate).Methods(http.MethodGet)
	r.HandleFunc("/templates/{name}", s.handlePutTemplate).Methods(http.MethodPut)
	r.HandleFunc("/templates/{name}", s.handleDeleteTemplate).Methods(http.MethodDelete)
	r.HandleFunc("/preview/{name}", s.handlePreview).Methods(http.MethodGet)
	r.HandleFunc("/render", s.handleRender).Methods(http.MethodPost)
	r.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router = r
	s.server = &http.Server{
		Addr:         config.Address,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("address", s.config.Address))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
