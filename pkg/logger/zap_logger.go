package logger

import (
	"fmt"
	"os"

	"github.com/Karlitosantana/reima-resale/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger owns the underlying zap core: JSON output to stdout plus a
// lumberjack-rotated file. Rotation knobs come from the config and may be
// overridden per Option.
type ZapLogger struct {
	logger *zap.Logger
	level  zapcore.Level

	maxSize    int
	maxBackups int
	maxAge     int
}

func NewZapLogger(cfg *config.Config, opts ...Option) (*ZapLogger, error) {
	zl := &ZapLogger{
		maxSize:    cfg.Logger.MaxSize,
		maxBackups: cfg.Logger.MaxBackups,
		maxAge:     cfg.Logger.MaxAge,
		level:      parseLevel(cfg.Logger.Level),
	}

	for _, opt := range opts {
		opt(zl)
	}

	if err := zl.validate(); err != nil {
		return nil, fmt.Errorf("logger.NewZapLogger: validation: %w", err)
	}

	fileSink := &lumberjack.Logger{
		Filename:   cfg.Logger.Filename,
		MaxSize:    zl.maxSize,
		MaxBackups: zl.maxBackups,
		MaxAge:     zl.maxAge,
		Compress:   true,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(fileSink),
			zapcore.AddSync(os.Stdout),
		),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zl.level
		}),
	)

	zl.logger = zap.New(core,
		zap.Fields(
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.Env),
		),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)

	return zl, nil
}

func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey,
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
