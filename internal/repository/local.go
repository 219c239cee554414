package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	"github.com/Karlitosantana/reima-resale/pkg/metric"
	storage "github.com/Karlitosantana/reima-resale/pkg/storage/redis"

	"github.com/redis/go-redis/v9"
)

// LocalItemRepository is the offline cache: the full collection serialized
// as one JSON array under a single fixed key. Every write replaces the blob
// wholesale; there is no per-item update path.
type LocalItemRepository struct {
	rdb     *storage.Redis
	key     string
	metrics metric.Storage
}

func NewLocalItemRepository(rdb *storage.Redis, key string, metrics metric.Storage) *LocalItemRepository {
	return &LocalItemRepository{
		rdb:     rdb,
		key:     key,
		metrics: metrics,
	}
}

// Load returns the cached collection in raw form. A missing key and a
// corrupt blob both degrade to an empty collection; only transport errors
// surface.
func (lr *LocalItemRepository) Load(ctx context.Context) ([]normalize.RawItem, error) {
	const op = "repository.local.Load"

	start := time.Now()
	defer func() {
		lr.metrics.ObserveQuery("local", "load", time.Since(start))
	}()

	payload, err := lr.rdb.Client.Get(ctx, lr.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []normalize.RawItem{}, nil
		}
		lr.metrics.IncrementFailures("local", "load")
		return nil, fmt.Errorf("%s: get %q: %w", op, lr.key, err)
	}

	var raws []normalize.RawItem
	if err := json.Unmarshal(payload, &raws); err != nil {
		// A corrupt blob is unrecoverable; treat it as absent data.
		lr.metrics.IncrementFailures("local", "decode")
		return []normalize.RawItem{}, nil
	}

	return raws, nil
}

// Store replaces the cached collection.
func (lr *LocalItemRepository) Store(ctx context.Context, items []entity.Item) error {
	const op = "repository.local.Store"

	start := time.Now()
	defer func() {
		lr.metrics.ObserveQuery("local", "store", time.Since(start))
	}()

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := lr.rdb.Client.Set(ctx, lr.key, payload, 0).Err(); err != nil {
		lr.metrics.IncrementFailures("local", "store")
		if isCapacityError(err) {
			return fmt.Errorf("%s: set %q: %w", op, lr.key, entity.ErrStorageCapacity)
		}
		return fmt.Errorf("%s: set %q: %w", op, lr.key, err)
	}

	return nil
}

// isCapacityError recognizes the redis maxmemory rejection, the moral
// equivalent of a storage-quota failure.
func isCapacityError(err error) bool {
	return strings.Contains(err.Error(), "OOM")
}
