package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerKey carries the command logger on a context.
type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger. A nil logger leaves ctx
// as it is.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger ctx carries, or Default when there is none.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return logger
	}
	return Default()
}
