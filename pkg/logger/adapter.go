package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*Adapter)(nil)

// Adapter exposes the zap core behind the package Logger interface so the
// rest of the tree never imports zap directly.
type Adapter struct {
	zapLogger *ZapLogger
}

func NewAdapter(cfg *config.Config, opts ...Option) (*Adapter, error) {
	zl, err := NewZapLogger(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("logger.NewAdapter: %w", err)
	}
	return &Adapter{zapLogger: zl}, nil
}

// wrap derives a child adapter sharing the parent's request-id plumbing.
func (a *Adapter) wrap(z *zap.Logger) *Adapter {
	return &Adapter{zapLogger: &ZapLogger{logger: z, level: a.zapLogger.level}}
}

func (a *Adapter) Debug(msg string, args ...any) {
	a.zapLogger.Zap().Sugar().Debugw(msg, args...)
}

func (a *Adapter) Info(msg string, args ...any) {
	a.zapLogger.Zap().Sugar().Infow(msg, args...)
}

func (a *Adapter) Warn(msg string, args ...any) {
	a.zapLogger.Zap().Sugar().Warnw(msg, args...)
}

func (a *Adapter) Error(msg string, args ...any) {
	a.zapLogger.Zap().Sugar().Errorw(msg, args...)
}

func (a *Adapter) Debugw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Debugw(msg, keysAndValues...)
}

func (a *Adapter) Infow(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Infow(msg, keysAndValues...)
}

func (a *Adapter) Warnw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Warnw(msg, keysAndValues...)
}

func (a *Adapter) Errorw(msg string, keysAndValues ...any) {
	a.zapLogger.Zap().Sugar().Errorw(msg, keysAndValues...)
}

func (a *Adapter) Ctx(ctx context.Context) Logger {
	return a.wrap(a.zapLogger.ContextLogger(ctx))
}

func (a *Adapter) With(args ...any) Logger {
	return a.wrap(a.zapLogger.Zap().With(pairsToFields(args)...))
}

func (a *Adapter) WithGroup(name string) Logger {
	return a.wrap(a.zapLogger.Zap().With(zap.Namespace(name)))
}

func (a *Adapter) Log(level Level, msg string, attrs ...Attr) {
	zapLevel := toZapLevel(level)
	if !a.zapLogger.Zap().Core().Enabled(zapLevel) {
		return
	}
	a.zapLogger.Zap().Log(zapLevel, msg, attrsToFields(attrs)...)
}

func (a *Adapter) LogAttrs(ctx context.Context, level Level, msg string, attrs ...Attr) {
	zl := a.zapLogger.ContextLogger(ctx)
	zapLevel := toZapLevel(level)
	if !zl.Core().Enabled(zapLevel) {
		return
	}
	zl.Log(zapLevel, msg, attrsToFields(attrs)...)
}

func (a *Adapter) GenerateRequestID() string {
	return a.zapLogger.GenerateRequestID()
}

func (a *Adapter) GetRequestID(ctx context.Context) string {
	return a.zapLogger.GetRequestID(ctx)
}

func (a *Adapter) WithRequestID(ctx context.Context, requestID string) context.Context {
	return a.zapLogger.WithRequestID(ctx, requestID)
}

func (a *Adapter) LogRequest(
	ctx context.Context,
	method, path string,
	status int,
	duration time.Duration,
) {
	a.zapLogger.LogRequest(ctx, method, path, status, duration)
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// pairsToFields turns sugared key/value varargs into typed fields. Odd
// trailing values and non-string keys are kept visible rather than dropped.
func pairsToFields(args []any) []zap.Field {
	if len(args)%2 != 0 {
		args = append(args, "<missing>")
	}
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("!badkey:%v", args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func attrsToFields(attrs []Attr) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, attr := range attrs {
		fields = append(fields, zap.Any(attr.Key, attr.Value))
	}
	return fields
}
