package postgres

import (
	"errors"
	"time"
)

// Option overrides a config-seeded connection setting.
type Option func(*Postgres)

func MaxPoolSize(size int32) Option {
	return func(p *Postgres) {
		p.maxPoolSize = size
	}
}

func MaxConnAttempts(attempts int) Option {
	return func(p *Postgres) {
		p.connAttempts = attempts
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(p *Postgres) {
		p.baseRetryDelay = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(p *Postgres) {
		p.maxRetryDelay = delay
	}
}

func (p *Postgres) validate() error {
	if p.maxPoolSize <= 0 {
		return errors.New("max pool size must be positive")
	}
	if p.connAttempts <= 0 {
		return errors.New("conn attempts must be positive")
	}
	if p.baseRetryDelay <= 0 {
		return errors.New("base retry delay must be positive")
	}
	if p.maxRetryDelay <= 0 {
		return errors.New("max retry delay must be positive")
	}
	if p.baseRetryDelay > p.maxRetryDelay {
		return errors.New("base retry delay cannot exceed max retry delay")
	}
	return nil
}
