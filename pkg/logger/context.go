package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "request_id"

func (l *ZapLogger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func (l *ZapLogger) GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func (l *ZapLogger) GenerateRequestID() string {
	return uuid.NewString()
}

// ContextLogger returns the base logger enriched with the request id, when
// the context carries one.
func (l *ZapLogger) ContextLogger(ctx context.Context) *zap.Logger {
	requestID := l.GetRequestID(ctx)
	if requestID == "" {
		return l.logger
	}
	return l.logger.With(zap.String("request_id", requestID))
}

func (l *ZapLogger) LogRequest(
	ctx context.Context,
	method, path string,
	status int,
	duration time.Duration,
) {
	l.ContextLogger(ctx).Info("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}
