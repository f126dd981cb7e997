package statement

import (
	"sync"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
)

var (
	globalLogger      *logging.Logger
	globalLoggerMutex sync.RWMutex
	globalLoggerOnce  sync.Once
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		config := GetGlobalConfig()
		logger, err := logging.NewLogger(logging.Config{
			Level:       config.LogLevel,
			Format:      "console",
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			logger = logging.NewNoOpLogger()
		}
		globalLoggerMutex.Lock()
		if globalLogger == nil {
			globalLogger = logger.Named("statement")
		}
		globalLoggerMutex.Unlock()
	})
}

// SetLogger replaces the package logger. A nil logger discards output.
func SetLogger(logger *logging.Logger) {
	initGlobalLogger()
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	globalLoggerMutex.Lock()
	globalLogger = logger
	globalLoggerMutex.Unlock()
}

// GetLogger returns the package logger.
func GetLogger() *logging.Logger {
	initGlobalLogger()
	globalLoggerMutex.RLock()
	defer globalLoggerMutex.RUnlock()
	return globalLogger
}

// UpdateLoggerFromConfig applies the global config's log level to the
// package logger.
func UpdateLoggerFromConfig() {
	GetLogger().SetLevel(GetGlobalConfig().LogLevel)
}
