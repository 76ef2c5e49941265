package logger

import (
	"context"

	"go.uber.org/zap"
)

// The root command stores the logger built from --verbose in cmd.Context().
// Subcommands and the packages they call take it back out with FromContext
// or ForServer.

type loggerKey struct{}

// NewContext returns a copy of ctx carrying log.
func NewContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the logger stored by NewContext. A nil ctx, or one
// without a logger, yields a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	if log, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}

// ForServer returns the context logger with a "server" field, as used for
// every entry about one configured server.
func ForServer(ctx context.Context, server string) *zap.Logger {
	return FromContext(ctx).With(zap.String("server", server))
}
