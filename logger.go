package xeokit

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Exiver-Labs/xeokit-sdk/backend/halgpu"
	"github.com/Exiver-Labs/xeokit-sdk/render"
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
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for the viewer and all its
// sub-packages. By default no log output is produced. Pass nil to
// restore the silent default.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically and propagates it to the render and backend packages.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame diagnostics (draw counts, elision)
//   - [slog.LevelInfo]: lifecycle events (GPU adapter opened, programs built)
//   - [slog.LevelWarn]: degraded operation (render pass disabled, context loss)
//
// Example:
//
//	xeokit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	render.SetLogger(l)
	halgpu.SetLogger(l)
}

// Logger returns the current logger. Sub-packages share the same logger
// configuration through SetLogger's propagation.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
