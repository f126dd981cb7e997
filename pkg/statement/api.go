package statement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/metrics"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement/render"
)

// Format is the markup language a template source is written in.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a name to a Format. Unknown names yield false.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "", "html", "htm":
		return FormatHTML, true
	case "markdown", "md":
		return FormatMarkdown, true
	default:
		return "", false
	}
}

// Result is the outcome of a render.
type Result struct {
	// HTML is the final standalone document.
	HTML string
	// Warnings lists the directives that were rendered leniently.
	Warnings []SyntaxWarning
}

// Engine renders statement and voucher templates.
// Use New() to create a new engine instance.
type Engine struct {
	config  *Config
	cache   *TemplateCache
	logger  *logging.Logger
	metrics metrics.Collector
	isEmpty func(string) bool
}

// New creates a new engine with the global configuration.
func New() *Engine {
	config := GetGlobalConfig()
	return &Engine{
		config:  config,
		cache:   newCache(config),
		metrics: metrics.NoOpCollector{},
		isEmpty: IsSentinelEmpty,
	}
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return NewWithOptions(WithConfig(config))
}

func newCache(config *Config) *TemplateCache {
	return NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
		e.cache = newCache(e.config)
	}
}

// WithLogger returns an option that sets the engine logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics returns an option that sets the metrics collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(e *Engine) {
		if collector == nil {
			collector = metrics.NoOpCollector{}
		}
		e.metrics = collector
	}
}

// WithEmptyPredicate replaces the rule deciding which strings are falsy in
// truthiness conditionals. The default is IsSentinelEmpty.
func WithEmptyPredicate(isEmpty func(string) bool) Option {
	return func(e *Engine) {
		if isEmpty == nil {
			isEmpty = IsSentinelEmpty
		}
		e.isEmpty = isEmpty
	}
}

// WithDocumentOptions returns an option that sets the document shell options.
func WithDocumentOptions(opts render.DocumentOptions) Option {
	return func(e *Engine) {
		cfg := *e.config
		cfg.Document = opts.WithDefaults()
		e.config = &cfg
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// ClearCache removes all parsed templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

func (e *Engine) log() *logging.Logger {
	if e.logger != nil {
		return e.logger
	}
	return GetLogger()
}

// Prepare parses a template, using the cache when enabled.
func (e *Engine) Prepare(source string) *Template {
	tmpl, hit := e.cache.Prepare(source, e.config.MaxNestingDepth)
	if e.config.CacheMaxSize > 0 {
		e.metrics.RecordCacheLookup(hit)
	}
	return tmpl
}

// RenderDocument renders a statement to a complete document. It never fails;
// unresolved paths render empty and malformed directives stay literal.
func (e *Engine) RenderDocument(source string, data StatementData) string {
	fragment, _ := e.evaluate(KindStatement, source, data.TemplateData())
	return render.WrapDocument(fragment, e.config.Document)
}

// Render renders a statement and reports warnings. An error is only returned
// in strict mode.
func (e *Engine) Render(source string, data StatementData) (*Result, error) {
	return e.RenderData(KindStatement, source, data.TemplateData())
}

// RenderVoucher renders a voucher or receipt.
func (e *Engine) RenderVoucher(source string, data VoucherData) (*Result, error) {
	return e.RenderData(KindVoucher, source, data.TemplateData())
}

// RenderData renders a template against an arbitrary data context.
func (e *Engine) RenderData(kind Kind, source string, data TemplateData) (*Result, error) {
	return e.RenderFormat(kind, source, FormatHTML, data)
}

// RenderFormat renders a template written in the given format. Markdown is
// converted to HTML after directive evaluation.
func (e *Engine) RenderFormat(kind Kind, source string, format Format, data TemplateData) (*Result, error) {
	fragment, warnings := e.evaluate(kind, source, data)
	if format == FormatMarkdown {
		converted, err := render.MarkdownToHTML(fragment)
		if err != nil {
			return nil, fmt.Errorf("failed to convert markdown: %w", err)
		}
		fragment = converted
	}

	if e.config.StrictMode && len(warnings) > 0 {
		return nil, NewTemplateError("template rendered with warnings", warnings)
	}

	return &Result{
		HTML:     render.WrapDocument(fragment, e.config.Document),
		Warnings: warnings,
	}, nil
}

// evaluate renders the fragment and records metrics and logs.
func (e *Engine) evaluate(kind Kind, source string, data TemplateData) (string, []SyntaxWarning) {
	start := time.Now()
	tmpl := e.Prepare(source)
	fragment := tmpl.execute(data, e.isEmpty, e.config.EscapeHTML)
	warnings := tmpl.Warnings()
	duration := time.Since(start)

	transactions := len(toItems(data[LoopCollection]))
	e.metrics.RecordRender(string(kind), duration, transactions)

	counts := make(map[WarningCode]int)
	for _, w := range warnings {
		counts[w.Code]++
	}
	for code, n := range counts {
		e.metrics.RecordWarnings(string(code), n)
	}

	logger := e.log()
	if len(warnings) > 0 {
		logger.Warn("template rendered with warnings",
			zap.String("kind", string(kind)),
			zap.Int("warning_count", len(warnings)),
			zap.String("first_warning", warnings[0].String()))
	}
	if logger.IsDebug() {
		logger.Debug("template rendered",
			zap.String("render_id", uuid.NewString()),
			zap.String("kind", string(kind)),
			zap.Int("transactions", transactions),
			zap.Int("output_length", len(fragment)),
			zap.Duration("duration", duration))
	}

	return fragment, warnings
}

// Validate checks a template against the vocabulary of kind.
func (e *Engine) Validate(source string, kind Kind) *ValidationResult {
	return Validate(source, kind)
}

// DefaultEngine is the global default engine instance.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// RenderDocument renders a statement to a complete document using the
// default engine.
func RenderDocument(source string, data StatementData) string {
	return DefaultEngine.RenderDocument(source, data)
}

// Render renders a statement using the default engine.
func Render(source string, data StatementData) (*Result, error) {
	return DefaultEngine.Render(source, data)
}

// RenderVoucher renders a voucher using the default engine.
func RenderVoucher(source string, data VoucherData) (*Result, error) {
	return DefaultEngine.RenderVoucher(source, data)
}

// Prepare parses a template using the default engine's cache.
func Prepare(source string) *Template {
	return DefaultEngine.Prepare(source)
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
