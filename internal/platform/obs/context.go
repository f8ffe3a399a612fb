package obs

import (
	"context"

	"go.uber.org/zap"
)

const loggerKey ctxKey = "logger"

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// Logger returns the request-scoped logger, or a no-op logger when none is attached.
func Logger(ctx context.Context) *zap.SugaredLogger {
	if log, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok && log != nil {
		return log
	}
	return zap.NewNop().Sugar()
}
