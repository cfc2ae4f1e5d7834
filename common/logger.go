package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by the engine packages.
// By default nothing is logged. Passing nil restores the silent default.
//
// Levels in use:
//   - slog.LevelDebug: skipped passes, cache evictions, missing inputs
//   - slog.LevelInfo: lifecycle (device acquired, tracking started)
//   - slog.LevelWarn: shader validation findings, recovered frame panics
//   - slog.LevelError: pose-tracker start failures
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
