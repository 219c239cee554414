// Package logger defines the structured logging contract for the service
// and its zap-backed implementation. Call sites depend on the Logger
// interface only.
package logger

import (
	"context"
	"time"
)

//go:generate mockgen -source=logger.go -destination=mock/logger.go -package=mock_logger

// Level mirrors slog's numbering so attr-style call sites read naturally.
type Level int

const (
	DebugLevel Level = iota - 4
	InfoLevel
	WarnLevel
	ErrorLevel
)

type (
	// Attr is one structured key/value pair.
	Attr struct {
		Key   string
		Value any
	}

	Logger interface {
		Debug(msg string, args ...any)
		Info(msg string, args ...any)
		Warn(msg string, args ...any)
		Error(msg string, args ...any)

		Debugw(msg string, keysAndValues ...any)
		Infow(msg string, keysAndValues ...any)
		Warnw(msg string, keysAndValues ...any)
		Errorw(msg string, keysAndValues ...any)

		// Ctx binds the request id carried by ctx, when present.
		Ctx(ctx context.Context) Logger
		With(args ...any) Logger
		WithGroup(name string) Logger
		WithRequestID(ctx context.Context, requestID string) context.Context

		GenerateRequestID() string
		GetRequestID(ctx context.Context) string
		LogRequest(ctx context.Context, method, path string, status int, duration time.Duration)

		Log(level Level, msg string, attrs ...Attr)
		LogAttrs(ctx context.Context, level Level, msg string, attrs ...Attr)
	}
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Attr constructors, in the manner of slog.

func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

func Int64(key string, value int64) Attr {
	return Attr{Key: key, Value: value}
}

func Float64(key string, value float64) Attr {
	return Attr{Key: key, Value: value}
}

func Bool(key string, value bool) Attr {
	return Attr{Key: key, Value: value}
}

func Time(key string, value time.Time) Attr {
	return Attr{Key: key, Value: value}
}

func Any(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}
