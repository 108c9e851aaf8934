package wave

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while the shader watcher goroutine logs.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for wave and all its sub-packages.
// By default, wave produces no log output. Call SetLogger to enable logging.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by wave:
//   - [slog.LevelDebug]: per-call diagnostics (uniform locations, batch sizes)
//   - [slog.LevelInfo]: lifecycle events (context created, hint applied, shader sent)
//   - [slog.LevelWarn]: recoverable issues (cache miss, missing extension, MSAA clamp)
//   - [slog.LevelError]: every error before it is returned to the caller
//
// Example:
//
//	wave.SetLogger(slog.New(wave.NewConsoleHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by wave.
// Sub-packages (shader/, renderer/, backend/...) call this to share the same
// logger configuration without introducing import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ComponentKey is the attribute key naming the subsystem that logged a record.
// NewConsoleHandler renders it as a bracketed prefix.
const ComponentKey = "component"

// Component returns the shared logger tagged with a subsystem name.
func Component(name string) *slog.Logger {
	return Logger().With(slog.String(ComponentKey, name))
}
