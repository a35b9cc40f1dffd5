package diwrap

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// SetDefaultErrorLogger replaces the logger used to report recovered cleanup panics.
func SetDefaultErrorLogger(log *slog.Logger) {
	defaultLogger.Store(log)
}

func logger() *slog.Logger {
	return defaultLogger.Load()
}
