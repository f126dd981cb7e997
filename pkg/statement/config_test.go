package statement

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CacheMaxSize != 100 {
		t.Errorf("CacheMaxSize = %d, want 100", cfg.CacheMaxSize)
	}
	if cfg.MaxNestingDepth != DefaultMaxNestingDepth {
		t.Errorf("MaxNestingDepth = %d, want %d", cfg.MaxNestingDepth, DefaultMaxNestingDepth)
	}
	if cfg.StrictMode || cfg.EscapeHTML {
		t.Error("strict mode and escaping must be off by default")
	}
	if cfg.Document.Title != "Statement" {
		t.Errorf("Document.Title = %q", cfg.Document.Title)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("STATEMENT_CACHE_MAX_SIZE", "5")
	t.Setenv("STATEMENT_CACHE_TTL", "30s")
	t.Setenv("STATEMENT_LOG_LEVEL", "debug")
	t.Setenv("STATEMENT_MAX_NESTING_DEPTH", "4")
	t.Setenv("STATEMENT_STRICT_MODE", "yes")
	t.Setenv("STATEMENT_ESCAPE_HTML", "1")

	cfg := ConfigFromEnvironment()
	if cfg.CacheMaxSize != 5 || cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache settings = %d, %v", cfg.CacheMaxSize, cfg.CacheTTL)
	}
	if cfg.LogLevel != "debug" || cfg.MaxNestingDepth != 4 {
		t.Errorf("LogLevel = %q, MaxNestingDepth = %d", cfg.LogLevel, cfg.MaxNestingDepth)
	}
	if !cfg.StrictMode || !cfg.EscapeHTML {
		t.Error("boolean environment overrides not applied")
	}
}

func TestConfigFromEnvironmentIgnoresGarbage(t *testing.T) {
	t.Setenv("STATEMENT_CACHE_MAX_SIZE", "lots")
	t.Setenv("STATEMENT_CACHE_TTL", "soon")
	cfg := ConfigFromEnvironment()
	if cfg.CacheMaxSize != 100 || cfg.CacheTTL != 0 {
		t.Errorf("garbage values changed config: %d, %v", cfg.CacheMaxSize, cfg.CacheTTL)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"negative cache", func(c *Config) { c.CacheMaxSize = -1 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero depth", func(c *Config) { c.MaxNestingDepth = 0 }, true},
		{"bad dir", func(c *Config) { c.Document.Dir = "up" }, true},
		{"rtl", func(c *Config) { c.Document.Dir = "rtl" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	cfg := NewConfigWithDefaults(&Config{CacheMaxSize: 3})
	if cfg.LogLevel != "info" || cfg.MaxNestingDepth != DefaultMaxNestingDepth || cfg.CacheMaxSize != 3 {
		t.Errorf("NewConfigWithDefaults() = %+v", cfg)
	}
	if cfg.Document.Lang != "en" {
		t.Errorf("Document defaults not applied: %+v", cfg.Document)
	}
	if NewConfigWithDefaults(nil).CacheMaxSize != 100 {
		t.Error("NewConfigWithDefaults(nil) is not the default config")
	}
}

func TestGlobalConfigIsCopied(t *testing.T) {
	orig := GetGlobalConfig()
	defer SetGlobalConfig(orig)

	cfg := DefaultConfig()
	cfg.MaxNestingDepth = 2
	SetGlobalConfig(cfg)

	got := GetGlobalConfig()
	got.MaxNestingDepth = 50
	if GetGlobalConfig().MaxNestingDepth != 2 {
		t.Error("GetGlobalConfig() returned a shared pointer")
	}

	_, warnings := ParseNodes("", GetGlobalConfig().MaxNestingDepth)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	tmpl := Parse("{{#each transactions}}{{#if a}}{{#if b}}{{#if c}}x{{/if}}{{/if}}{{/if}}{{/each}}")
	if codes := warningCodes(tmpl.Warnings()); len(codes) != 1 || codes[0] != WarnNestingTooDeep {
		t.Errorf("Parse() did not use the global nesting limit: %v", codes)
	}
}
