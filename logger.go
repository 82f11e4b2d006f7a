package vtbuf

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discardHandler drops every record. Enabled reports false so callers skip
// building attributes.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(discardHandler{}))
}

// SetLogger sets the logger used by vtbuf and its sub-packages. By default
// nothing is logged; pass nil to restore that.
//
// Levels used:
//   - [slog.LevelDebug]: unmapped value types, scene loading and resolution summaries
//   - [slog.LevelWarn]: invalid sources found while loading scene files,
//     malformed configuration
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages log through it so a
// single SetLogger call configures the whole module.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
