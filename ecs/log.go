package ecs

import (
	"log/slog"
	"sync/atomic"
)

// The library never fails hard on discouraged-but-legal usage; it reports
// through this logger and continues. Applications decide severity policy,
// e.g. a test harness can install a handler that fails on error records.
var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for all diagnostic output.
// Passing nil restores the process default logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		pkgLogger.Store(nil)
		return
	}
	pkgLogger.Store(l)
}

func logSink() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
