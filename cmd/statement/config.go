package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/preview"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

// Store backends accepted in the config file.
const (
	backendNone   = "none"
	backendMemory = "memory"
	backendDir    = "dir"
	backendRedis  = "redis"
)

// Config is the layout of the serve config file.
type Config struct {
	Engine  *statement.Config `yaml:"engine"`
	Logging logging.Config    `yaml:"logging"`
	Store   StoreConfig       `yaml:"store"`
	Server  preview.Config    `yaml:"server"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// StoreConfig selects and configures the template backend.
type StoreConfig struct {
	// Backend is one of none, memory, dir or redis.
	Backend string `yaml:"backend"`
	// Dir is the template directory of the dir backend.
	Dir string `yaml:"dir"`
	// Watch reloads templates edited on disk.
	Watch      bool                  `yaml:"watch"`
	Redis      store.RedisConfig     `yaml:"redis"`
	Resilience store.ResilientConfig `yaml:"resilience"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	// Runtime adds the Go runtime and process collectors.
	Runtime bool `yaml:"runtime"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Engine:  statement.ConfigFromEnvironment(),
		Logging: logging.DefaultConfig(),
		Store: StoreConfig{
			Backend:    backendDir,
			Dir:        "templates",
			Watch:      true,
			Redis:      store.DefaultRedisConfig(),
			Resilience: store.DefaultResilientConfig(),
		},
		Server: preview.DefaultConfig(),
		Metrics: MetricsConfig{
			Namespace: "statement",
			Runtime:   true,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the file
// keep their default values. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &config); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	config.Engine = statement.NewConfigWithDefaults(config.Engine)
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the settings that the packages do not check themselves.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	switch c.Store.Backend {
	case backendNone, backendMemory, backendRedis:
	case backendDir:
		if c.Store.Dir == "" {
			return fmt.Errorf("store: dir backend needs a directory")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server: address is required")
	}
	return nil
}
