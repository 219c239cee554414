package redis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/config"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	_defaultConnAttempts   = 5
	_defaultBaseRetryDelay = 100 * time.Millisecond
	_defaultMaxRetryDelay  = 2 * time.Second

	_backoffMultiplier = 2
)

type Redis struct {
	Client *redis.Client

	connAttempts   int
	baseRetryDelay time.Duration
	maxRetryDelay  time.Duration
}

func NewRedis(cfg *config.Redis, log logger.Logger, opts ...Option) (*Redis, error) {
	const op = "storage.redis.NewRedis"

	r := &Redis{
		connAttempts:   _defaultConnAttempts,
		baseRetryDelay: _defaultBaseRetryDelay,
		maxRetryDelay:  _defaultMaxRetryDelay,
	}
	if cfg.ConnAttempts > 0 {
		r.connAttempts = cfg.ConnAttempts
	}

	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("%s: validation: %w", op, err)
	}

	r.Client = redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	var err error
	currentBackoff := r.baseRetryDelay
	for attemptCount := 1; attemptCount <= r.connAttempts; attemptCount++ {
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		err = r.Client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return r, nil
		}

		jitter := time.Duration(
			rand.Int64N(int64(currentBackoff * _backoffMultiplier)),
		)
		if jitter > r.maxRetryDelay {
			jitter = r.maxRetryDelay
		}

		log.Infow("Redis connection attempt failed",
			"operation", op,
			"attempt", attemptCount,
			"retry_after", jitter.String(),
			"error", err,
		)

		time.Sleep(jitter)

		nextBackoff := currentBackoff * _backoffMultiplier
		if nextBackoff > r.maxRetryDelay {
			nextBackoff = r.maxRetryDelay
		}
		currentBackoff = nextBackoff
	}

	return nil, fmt.Errorf("%s: ping: %w", op, err)
}

func (r *Redis) Close() error {
	if r.Client != nil {
		if err := r.Client.Close(); err != nil {
			return fmt.Errorf("storage.redis.Close: %w", err)
		}
	}
	return nil
}
