package logger

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

// Option overrides a config-seeded rotation or level setting.
type Option func(*ZapLogger)

func MaxSize(size int) Option {
	return func(zl *ZapLogger) {
		zl.maxSize = size
	}
}

func MaxBackups(backups int) Option {
	return func(zl *ZapLogger) {
		zl.maxBackups = backups
	}
}

func MaxAge(age int) Option {
	return func(zl *ZapLogger) {
		zl.maxAge = age
	}
}

func SetLevel(level zapcore.Level) Option {
	return func(zl *ZapLogger) {
		zl.level = level
	}
}

func (l *ZapLogger) validate() error {
	if l.maxSize <= 0 {
		return errors.New("max size must be positive")
	}
	if l.maxBackups < 0 {
		return errors.New("max backups must not be negative")
	}
	if l.maxAge <= 0 {
		return errors.New("max age must be positive")
	}
	return nil
}
