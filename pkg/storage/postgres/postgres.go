// Package postgres wraps pgxpool with config-driven connect retries and a
// shared squirrel statement builder.
package postgres

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/config"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

const _backoffMultiplier = 2

type Postgres struct {
	Builder squirrel.StatementBuilderType
	Pool    *pgxpool.Pool

	connAttempts   int
	baseRetryDelay time.Duration
	maxRetryDelay  time.Duration
	maxPoolSize    int32
}

func NewPostgres(cfg *config.Postgres, log logger.Logger, opts ...Option) (*Postgres, error) {
	const op = "storage.postgres.NewPostgres"

	pg := &Postgres{
		connAttempts:   cfg.ConnAttempts,
		baseRetryDelay: cfg.BaseRetryDelay,
		maxRetryDelay:  cfg.MaxRetryDelay,
		maxPoolSize:    cfg.PoolMax,
	}

	for _, opt := range opts {
		opt(pg)
	}
	if err := pg.validate(); err != nil {
		return nil, fmt.Errorf("%s: validation: %w", op, err)
	}

	pg.Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	poolConfig, err := pgxpool.ParseConfig(connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: parse pool config: %w", op, err)
	}
	poolConfig.MaxConns = pg.maxPoolSize

	if err := pg.connect(poolConfig, log); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pg, nil
}

// connect opens the pool and pings it, backing off with jitter between
// attempts. The pool itself is lazy; only the ping proves the server is
// reachable.
func (p *Postgres) connect(poolConfig *pgxpool.Config, log logger.Logger) error {
	backoff := p.baseRetryDelay

	var err error
	for attempt := 1; attempt <= p.connAttempts; attempt++ {
		p.Pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err == nil {
			err = p.Pool.Ping(context.Background())
			if err == nil {
				return nil
			}
			p.Pool.Close()
		}

		delay := backoff + time.Duration(rand.Int64N(int64(backoff)))
		if delay > p.maxRetryDelay {
			delay = p.maxRetryDelay
		}

		log.Infow("postgres connection attempt failed",
			"attempt", attempt,
			"retry_after", delay.String(),
			"error", err,
		)

		time.Sleep(delay)

		backoff *= _backoffMultiplier
		if backoff > p.maxRetryDelay {
			backoff = p.maxRetryDelay
		}
	}

	return fmt.Errorf("connect after %d attempts: %w", p.connAttempts, err)
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

func connString(cfg *config.Postgres) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		net.JoinHostPort(cfg.Host, cfg.Port),
		cfg.Name,
		cfg.SSLMode,
	)
}
