package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/auth"
	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	"github.com/Karlitosantana/reima-resale/internal/notify"
	"github.com/Karlitosantana/reima-resale/internal/seed"
	"github.com/Karlitosantana/reima-resale/pkg/cache"
	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"
)

const (
	_defaultRemoteTimeout = 2 * time.Second
	_slowOpThreshold      = 200 * time.Millisecond
)

type (
	// LocalStore is the offline cache: one blob holding the whole
	// collection.
	LocalStore interface {
		Load(ctx context.Context) ([]normalize.RawItem, error)
		Store(ctx context.Context, items []entity.Item) error
	}

	// RemoteStore is the authoritative store when configured.
	RemoteStore interface {
		List(ctx context.Context, limit uint64) ([]normalize.RawItem, error)
		Upsert(ctx context.Context, item *entity.Item) error
		Delete(ctx context.Context, id string) error
	}

	// ItemService is the single gateway for reading and mutating items.
	// Every mutation writes the local cache first, mirrors to the remote
	// store when one is configured, and ends with exactly one change
	// notification.
	ItemService struct {
		local      LocalStore
		remote     RemoteStore
		normalizer *normalize.Normalizer
		provider   auth.Provider
		authorize  auth.Policy
		notifier   notify.Notifier
		log        logger.Logger
		metrics    metric.Storage
		itemCache  cache.Cache[string, *entity.Item]
		cacheTTL   time.Duration
		listLimit  uint64
		demoSeed   bool
	}
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock_service

func NewItemService(
	local LocalStore,
	remote RemoteStore,
	normalizer *normalize.Normalizer,
	provider auth.Provider,
	authorize auth.Policy,
	notifier notify.Notifier,
	log logger.Logger,
	metrics metric.Storage,
	itemCache cache.Cache[string, *entity.Item],
	cacheTTL time.Duration,
	listLimit uint64,
	demoSeed bool,
) *ItemService {
	itemCache.SetOnEvicted(func(key string, value *entity.Item) {
		log.Infow("item cache eviction",
			"key", key,
			"type", fmt.Sprintf("%T", value),
		)
	})

	return &ItemService{
		local:      local,
		remote:     remote,
		normalizer: normalizer,
		provider:   provider,
		authorize:  authorize,
		notifier:   notifier,
		log:        log,
		metrics:    metrics,
		itemCache:  itemCache,
		cacheTTL:   cacheTTL,
		listLimit:  listLimit,
		demoSeed:   demoSeed,
	}
}

func (is *ItemService) remoteConfigured() bool {
	return is.remote != nil
}

// ListItems resolves the collection from whichever store currently owns the
// truth. Remote mode requires an authenticated caller and soft-degrades to
// an empty collection without one; a failing remote query falls back to the
// local cache. An empty remote store is seeded from local data (one-time
// migration) or from the demo set.
func (is *ItemService) ListItems(ctx context.Context) ([]entity.Item, error) {
	const op = "service.ListItems"
	log := is.log.Ctx(ctx)

	startTime := time.Now()
	defer func() {
		if duration := time.Since(startTime); duration > _slowOpThreshold {
			log.LogAttrs(ctx, logger.WarnLevel, "slow service operation",
				logger.String("op", op),
				logger.String("duration", duration.String()),
			)
		}
	}()

	if !is.remoteConfigured() {
		return is.listLocal(ctx)
	}

	identity, err := is.provider.CurrentUser(ctx)
	if err != nil || identity == nil {
		log.LogAttrs(ctx, logger.WarnLevel, "no authenticated user, returning empty items",
			logger.String("op", op),
			logger.Any("error", err),
		)
		return []entity.Item{}, nil
	}

	remoteCtx, cancel := context.WithTimeout(ctx, _defaultRemoteTimeout)
	defer cancel()

	raws, err := is.remote.List(remoteCtx, is.listLimit)
	if err != nil {
		// Degrade to the local cache rather than propagating; the read
		// path must stay usable offline.
		is.metrics.IncrementFallbacks("list")
		log.LogAttrs(ctx, logger.ErrorLevel, "remote list failed, falling back to local cache",
			logger.String("op", op),
			logger.Any("error", err),
		)
		localRaws, localErr := is.local.Load(ctx)
		if localErr != nil {
			return nil, fmt.Errorf("%s: local fallback: %w", op, localErr)
		}
		return is.normalizer.Items(localRaws), nil
	}

	if len(raws) == 0 {
		return is.populateRemote(ctx)
	}

	items := is.normalizer.Items(raws)

	log.LogAttrs(ctx, logger.InfoLevel, "items listed from remote store",
		logger.String("op", op),
		logger.String("user", identity.Email),
		logger.Int("count", len(items)),
	)

	return items, nil
}

// listLocal serves the collection in offline mode, persisting migrated
// shapes back and seeding the demo set on a truly empty cache.
func (is *ItemService) listLocal(ctx context.Context) ([]entity.Item, error) {
	const op = "service.listLocal"
	log := is.log.Ctx(ctx)

	raws, err := is.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: load: %w", op, err)
	}

	if len(raws) > 0 {
		items := is.normalizer.Items(raws)
		// Normalization may have upgraded legacy records; write the
		// canonical shapes back so the migration sticks.
		if err := is.local.Store(ctx, items); err != nil {
			is.logStoreFailure(ctx, op, err)
		}
		return items, nil
	}

	if !is.demoSeed {
		return []entity.Item{}, nil
	}

	items := seed.Items(time.Now())
	if err := is.local.Store(ctx, items); err != nil {
		is.logStoreFailure(ctx, op, err)
	}
	log.LogAttrs(ctx, logger.InfoLevel, "seeded local cache with demo data",
		logger.String("op", op),
		logger.Int("count", len(items)),
	)
	return items, nil
}

// populateRemote handles the empty-remote cases: migrate the local cache up
// if it has data, otherwise seed the demo set. Both go through SaveItem so
// each record lands in both stores.
func (is *ItemService) populateRemote(ctx context.Context) ([]entity.Item, error) {
	const op = "service.populateRemote"
	log := is.log.Ctx(ctx)

	localRaws, err := is.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: load local: %w", op, err)
	}

	if len(localRaws) > 0 {
		items := is.normalizer.Items(localRaws)
		log.LogAttrs(ctx, logger.InfoLevel, "migrating local data to remote store",
			logger.String("op", op),
			logger.Int("count", len(items)),
		)
		for i := range items {
			if err := is.SaveItem(ctx, &items[i]); err != nil {
				return nil, fmt.Errorf("%s: migrate item %s: %w", op, items[i].ID, err)
			}
		}
		return items, nil
	}

	if !is.demoSeed {
		return []entity.Item{}, nil
	}

	items := seed.Items(time.Now())
	log.LogAttrs(ctx, logger.InfoLevel, "seeding remote store with demo data",
		logger.String("op", op),
		logger.Int("count", len(items)),
	)
	for i := range items {
		if err := is.SaveItem(ctx, &items[i]); err != nil {
			return nil, fmt.Errorf("%s: seed item %s: %w", op, items[i].ID, err)
		}
	}
	return items, nil
}

// SaveItem upserts one full record: local cache first, then the remote
// store when configured. The change notification fires once the local write
// has landed and the remote write (if any) has been attempted, success or
// not.
func (is *ItemService) SaveItem(ctx context.Context, item *entity.Item) error {
	const op = "service.SaveItem"
	log := is.log.Ctx(ctx)

	if err := is.validateItem(item); err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "item validation failed",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("item_id", item.ID),
		)
		return fmt.Errorf("%s: validate item: %w", op, err)
	}

	canonical := is.canonicalize(item)
	*item = canonical

	if err := is.upsertLocal(ctx, &canonical); err != nil {
		is.logStoreFailure(ctx, op, err)
	}
	is.itemCache.Put(canonical.ID, &canonical, is.cacheTTL)

	// Local state changed, so observers reload no matter how the remote
	// write goes.
	defer is.notifyChange(ctx, op)

	if !is.remoteConfigured() {
		return nil
	}

	identity, err := is.provider.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%s: current user: %w", op, err)
	}
	if identity == nil {
		return fmt.Errorf("%s: %w", op, entity.ErrNotAuthenticated)
	}

	remoteCtx, cancel := context.WithTimeout(ctx, _defaultRemoteTimeout)
	defer cancel()

	if err := is.remote.Upsert(remoteCtx, &canonical); err != nil {
		// The local write already succeeded; the caller must learn the
		// remote mirror is behind.
		log.LogAttrs(ctx, logger.ErrorLevel, "remote upsert failed after local write",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("item_id", canonical.ID),
		)
		return fmt.Errorf("%s: remote upsert: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "item saved",
		logger.String("op", op),
		logger.String("item_id", canonical.ID),
		logger.String("status", string(canonical.Status)),
	)

	return nil
}

// DeleteItem removes the record from the local cache unconditionally and
// mirrors the delete remotely when configured. Deletion is a destructive
// operation and additionally passes the authorization policy in remote
// mode.
func (is *ItemService) DeleteItem(ctx context.Context, id string) error {
	const op = "service.DeleteItem"
	log := is.log.Ctx(ctx)

	if id == "" {
		return fmt.Errorf("%s: %w", op, entity.ErrInvalidData)
	}

	if err := is.removeLocal(ctx, id); err != nil {
		is.logStoreFailure(ctx, op, err)
	}
	// No per-key eviction on the LRU; a full purge is fine because the
	// next reads repopulate from the stores.
	is.itemCache.Purge()

	defer is.notifyChange(ctx, op)

	if !is.remoteConfigured() {
		return nil
	}

	identity, err := is.provider.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%s: current user: %w", op, err)
	}
	if identity == nil {
		return fmt.Errorf("%s: %w", op, entity.ErrNotAuthenticated)
	}
	if !is.authorize(*identity) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotAuthorized)
	}

	remoteCtx, cancel := context.WithTimeout(ctx, _defaultRemoteTimeout)
	defer cancel()

	if err := is.remote.Delete(remoteCtx, id); err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "remote delete failed after local removal",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("item_id", id),
		)
		return fmt.Errorf("%s: remote delete: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "item deleted",
		logger.String("op", op),
		logger.String("item_id", id),
	)

	return nil
}

// GetItem serves one item, preferring the LRU read cache.
func (is *ItemService) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	const op = "service.GetItem"
	log := is.log.Ctx(ctx)

	if cached, found := is.itemCache.Get(id); found {
		log.LogAttrs(ctx, logger.DebugLevel, "item served from cache",
			logger.String("op", op),
			logger.String("item_id", id),
		)
		return cached, nil
	}

	items, err := is.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list items: %w", op, err)
	}

	for i := range items {
		if items[i].ID == id {
			item := items[i]
			is.itemCache.Put(id, &item, is.cacheTTL)
			return &item, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrDataNotFound)
}

// NewItem hands out an empty item template the way the UI instantiates one.
func (is *ItemService) NewItem() entity.Item {
	return is.normalizer.Empty()
}

// WarmCache pre-fills the LRU from the current collection at startup.
func (is *ItemService) WarmCache(ctx context.Context) error {
	const op = "service.WarmCache"
	log := is.log.Ctx(ctx)

	items, err := is.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("%s: list items: %w", op, err)
	}

	for i := range items {
		item := items[i]
		is.itemCache.Put(item.ID, &item, is.cacheTTL)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "item cache warmed",
		logger.Int("count", len(items)),
	)
	return nil
}

// PurgeCache drops the whole read cache; the change consumer calls this
// when another instance mutated the data.
func (is *ItemService) PurgeCache() {
	is.itemCache.Purge()
}

func (is *ItemService) validateItem(item *entity.Item) error {
	if item == nil {
		return entity.ErrInvalidData
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("empty name: %w", entity.ErrInvalidData)
	}
	if item.PurchasePrice < 0 {
		return fmt.Errorf("negative purchase price: %w", entity.ErrInvalidData)
	}
	return nil
}

// canonicalize runs a typed item through the normalizer so every persisted
// record has the canonical shape regardless of what the caller filled in.
func (is *ItemService) canonicalize(item *entity.Item) entity.Item {
	payload, err := json.Marshal(item)
	if err != nil {
		return *item
	}
	var raw normalize.RawItem
	if err := json.Unmarshal(payload, &raw); err != nil {
		return *item
	}
	return is.normalizer.Item(&raw)
}

func (is *ItemService) upsertLocal(ctx context.Context, item *entity.Item) error {
	raws, err := is.local.Load(ctx)
	if err != nil {
		return err
	}
	items := is.normalizer.Items(raws)

	replaced := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, *item)
	}

	return is.local.Store(ctx, items)
}

func (is *ItemService) removeLocal(ctx context.Context, id string) error {
	raws, err := is.local.Load(ctx)
	if err != nil {
		return err
	}
	items := is.normalizer.Items(raws)

	kept := make([]entity.Item, 0, len(items))
	for i := range items {
		if items[i].ID != id {
			kept = append(kept, items[i])
		}
	}

	return is.local.Store(ctx, kept)
}

func (is *ItemService) notifyChange(ctx context.Context, op string) {
	if err := is.notifier.Changed(ctx); err != nil {
		is.log.LogAttrs(ctx, logger.WarnLevel, "change notification failed",
			logger.String("op", op),
			logger.Any("error", err),
		)
	}
}

func (is *ItemService) logStoreFailure(ctx context.Context, op string, err error) {
	if errors.Is(err, entity.ErrStorageCapacity) {
		is.log.LogAttrs(ctx, logger.WarnLevel, "local cache write exceeded capacity",
			logger.String("op", op),
			logger.Any("error", err),
		)
		return
	}
	is.log.LogAttrs(ctx, logger.ErrorLevel, "local cache write failed",
		logger.String("op", op),
		logger.Any("error", err),
	)
}
