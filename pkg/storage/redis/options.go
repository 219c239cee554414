package redis

import (
	"errors"
	"time"
)

type Option func(*Redis)

func MaxConnAttempts(attempts int) Option {
	return func(r *Redis) {
		r.connAttempts = attempts
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(r *Redis) {
		r.baseRetryDelay = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(r *Redis) {
		r.maxRetryDelay = delay
	}
}

func (r *Redis) validate() error {
	if r.connAttempts <= 0 {
		return errors.New("invalid connAttempts: must be > 0")
	}

	if r.baseRetryDelay <= 0 {
		return errors.New("invalid base retry delay: must be > 0")
	}

	if r.maxRetryDelay <= 0 {
		return errors.New("invalid max retry delay: must be > 0")
	}

	if r.baseRetryDelay > r.maxRetryDelay {
		return errors.New("baseRetryDelay cannot exceed maxRetryDelay")
	}
	return nil
}
