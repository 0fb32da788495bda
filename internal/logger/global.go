package logger

import (
	"io"
	"os"
	"sync"
	"time"
)

var (
	globalLogger   Logger
	globalLoggerMu sync.Mutex
)

// SetGlobal sets the global Logger instance.
// This should be called once during application startup after loading configuration.
func SetGlobal(l Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = l
}

// Global returns the global Logger instance.
// If no logger has been set via SetGlobal, it returns a fallback stderr logger at info level.
func Global() Logger {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()

	if globalLogger == nil {
		globalLogger = NewSlogLogger(os.Stderr, LogLevelInfo, time.Local)
	}
	return globalLogger
}

// Discard returns a logger that drops everything; intended for tests.
func Discard() Logger {
	return NewSlogLogger(io.Discard, LogLevelError, time.UTC)
}
