package statement

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alsaadxx12/roda10-sub000/pkg/statement/render"
)

// DefaultMaxNestingDepth bounds conditional nesting inside a loop body.
const DefaultMaxNestingDepth = 10

// Config contains all configuration options for the statement engine
type Config struct {
	// CacheMaxSize is the maximum number of parsed templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// LogLevel controls the verbosity of engine logging (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
	// MaxNestingDepth bounds conditional nesting inside a loop body. Deeper
	// blocks are emitted verbatim.
	MaxNestingDepth int `yaml:"max_nesting_depth"`
	// StrictMode makes Render return a TemplateError when a template has warnings
	StrictMode bool `yaml:"strict_mode"`
	// EscapeHTML escapes substituted values. Off by default, values are trusted markup.
	EscapeHTML bool `yaml:"escape_html"`
	// Document controls the shell wrapped around fragment templates
	Document render.DocumentOptions `yaml:"document"`
}

var (
	globalConfig      = ConfigFromEnvironment()
	globalConfigMutex sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:    100,
		CacheTTL:        0,
		LogLevel:        "info",
		MaxNestingDepth: DefaultMaxNestingDepth,
		StrictMode:      false,
		EscapeHTML:      false,
		Document:        render.DefaultDocumentOptions(),
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.ApplyEnvironment()
	return config
}

// ApplyEnvironment overrides fields from STATEMENT_* environment variables.
// Unparseable values are ignored.
func (c *Config) ApplyEnvironment() {
	// STATEMENT_CACHE_MAX_SIZE
	if val := os.Getenv("STATEMENT_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.CacheMaxSize = size
		}
	}

	// STATEMENT_CACHE_TTL
	if val := os.Getenv("STATEMENT_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.CacheTTL = duration
		}
	}

	// STATEMENT_LOG_LEVEL
	if val := os.Getenv("STATEMENT_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	// STATEMENT_MAX_NESTING_DEPTH
	if val := os.Getenv("STATEMENT_MAX_NESTING_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			c.MaxNestingDepth = depth
		}
	}

	// STATEMENT_STRICT_MODE
	if val := os.Getenv("STATEMENT_STRICT_MODE"); val != "" {
		c.StrictMode = parseBool(val)
	}

	// STATEMENT_ESCAPE_HTML
	if val := os.Getenv("STATEMENT_ESCAPE_HTML"); val != "" {
		c.EscapeHTML = parseBool(val)
	}
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.MaxNestingDepth == 0 {
		config.MaxNestingDepth = defaults.MaxNestingDepth
	}

	config.Document = config.Document.WithDefaults()

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxNestingDepth <= 0 {
		return errors.New("max nesting depth must be positive")
	}

	if d := c.Document.Dir; d != "" && d != "ltr" && d != "rtl" && d != "auto" {
		return fmt.Errorf("invalid document direction: %s", d)
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back.
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
