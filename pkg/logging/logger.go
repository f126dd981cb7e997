// Package logging provides the structured logger shared by the engine, the
// template store and the preview server.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger so packages can pass a single concrete type around.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Config holds logging configuration.
type Config struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Format is the log encoding (json or console).
	Format string `yaml:"format"`
	// OutputPaths is a list of paths to write logs to.
	OutputPaths []string `yaml:"output_paths"`
	// Development enables caller info, stack traces and the console-friendly encoder.
	Development bool `yaml:"development"`
}

// DefaultConfig returns a production logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// DevelopmentConfig returns a configuration for local work.
func DevelopmentConfig() Config {
	return Config{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{"stderr"},
		Development: true,
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(config Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(config.Level))

	var encoderConfig zapcore.EncoderConfig
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	format := config.Format
	if format == "" {
		format = "json"
	}
	outputs := config.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             level,
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger, level: level}, nil
}

// NewLoggerFromEnv creates a logger based on environment variables
// LOG_LEVEL, LOG_FORMAT and LOG_DEV.
func NewLoggerFromEnv() (*Logger, error) {
	config := DefaultConfig()
	if os.Getenv("LOG_DEV") == "true" {
		config = DevelopmentConfig()
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = format
	}
	return NewLogger(config)
}

// New wraps an existing zap logger, e.g. one built on a zaptest observer core.
func New(l *zap.Logger) *Logger {
	return &Logger{Logger: l, level: zap.NewAtomicLevelAt(l.Level())}
}

// NewNoOpLogger creates a logger that discards all logs.
func NewNoOpLogger() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the level of a logger built by NewLogger at runtime.
// Loggers wrapping a foreign core keep the core's own level.
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(ParseLevel(level))
}

// IsDebug reports whether debug entries would be written.
func (l *Logger) IsDebug() bool {
	return l.Logger.Core().Enabled(zapcore.DebugLevel)
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), level: l.level}
}

// Named creates a child logger with a name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), level: l.level}
}

var (
	global      = NewNoOpLogger()
	globalMutex sync.RWMutex
)

// SetGlobal sets the global logger instance.
func SetGlobal(logger *Logger) {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	globalMutex.Lock()
	global = logger
	globalMutex.Unlock()
}

// L returns the global logger instance.
func L() *Logger {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return global
}
