package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/Karlitosantana/reima-resale/internal/auth"
	"github.com/Karlitosantana/reima-resale/internal/config"
	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	"github.com/Karlitosantana/reima-resale/internal/notify"
	"github.com/Karlitosantana/reima-resale/internal/repository"
	"github.com/Karlitosantana/reima-resale/internal/service"
	httpt "github.com/Karlitosantana/reima-resale/internal/transport/http"
	kafkat "github.com/Karlitosantana/reima-resale/internal/transport/kafka"
	"github.com/Karlitosantana/reima-resale/pkg/cache"
	"github.com/Karlitosantana/reima-resale/pkg/kafka"
	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"
	"github.com/Karlitosantana/reima-resale/pkg/storage/postgres"
	storageredis "github.com/Karlitosantana/reima-resale/pkg/storage/redis"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(eg, &cfg.Metrics, log)

	rdb, redisErr := initRedis(&cfg.Redis, log)
	if redisErr != nil {
		return redisErr
	}
	defer closeRedis(rdb, log)

	db, dbErr := initDatabase(&cfg.Postgres, log)
	if dbErr != nil {
		return dbErr
	}
	defer closeDB(db)

	if db != nil {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("app.Run: %w", err)
		}
	}

	itemCache, cacheErr := initCache(&cfg.Cache, log, metrics)
	if cacheErr != nil {
		return cacheErr
	}
	defer stopCache(itemCache)

	notifier, notifierErr := initNotifier(cfg, log, metrics)
	if notifierErr != nil {
		return notifierErr
	}
	defer closeNotifier(notifier, log)

	itemService := initItemService(
		cfg,
		db,
		rdb,
		itemCache,
		notifier.Notifier(),
		log,
		metrics,
	)

	if err := itemService.WarmCache(ctx); err != nil {
		log.Errorw("failed to warm item cache", "error", err)
	}

	if serverErr := initHTTPServer(ctx, eg, &cfg.HTTP, itemService, log, metrics); serverErr != nil {
		return serverErr
	}

	if kafkaErr := initChangeConsumer(ctx, eg, cfg, itemService, notifier, log, metrics); kafkaErr != nil {
		return kafkaErr
	}

	return waitForShutdown(eg)
}

func initMetrics(
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	metricsServer := &http.Server{
		Addr:              hostPort,
		Handler:           metrics.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	eg.Go(func() error {
		log.Infow("starting metrics server", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app.initMetrics: %w", err)
		}
		return nil
	})

	return metrics
}

func initRedis(cfg *config.Redis, log logger.Logger) (*storageredis.Redis, error) {
	rdb, err := storageredis.NewRedis(
		cfg,
		log.With("component", "redis"),
		storageredis.MaxConnAttempts(cfg.ConnAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initRedis: %w", err)
	}
	return rdb, nil
}

func closeRedis(rdb *storageredis.Redis, log logger.Logger) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Errorw("redis close failed", "error", err)
		}
	}
}

// initDatabase connects the remote store; a disabled postgres section means
// the service runs local-only and no pool is opened.
func initDatabase(cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	if !cfg.Enabled {
		log.Infow("remote store disabled, running in local-only mode")
		return nil, nil
	}

	db, err := postgres.NewPostgres(cfg, log.With("component", "database"))
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initCache(
	cfg *config.Cache,
	log logger.Logger,
	metrics metric.Factory,
) (cache.Cache[string, *entity.Item], error) {
	itemCache, err := cache.NewLRUCache[string, *entity.Item](
		cfg.Capacity,
		"items",
		log.With("component", "cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initCache: %w", err)
	}
	itemCache.StartCleanup(cfg.CleanupInterval)
	return itemCache, nil
}

func stopCache(itemCache cache.Cache[string, *entity.Item]) {
	if itemCache != nil {
		itemCache.StopCleanup()
	}
}

// notifierSet bundles the change-signal plumbing: the notifier the service
// publishes through, the local broadcaster, and the instance id used to
// skip our own events on the consumer side.
type notifierSet struct {
	notifier    notify.Notifier
	broadcaster *notify.Broadcaster
	kafkaN      *notify.KafkaNotifier
	source      string
}

func (s *notifierSet) Notifier() notify.Notifier { return s.notifier }

func initNotifier(
	cfg *config.Config,
	log logger.Logger,
	metrics metric.Factory,
) (*notifierSet, error) {
	broadcaster := notify.NewBroadcaster()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "resale"
	}
	source := fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])

	set := &notifierSet{
		notifier:    broadcaster,
		broadcaster: broadcaster,
		source:      source,
	}

	if !cfg.Kafka.Enabled {
		return set, nil
	}

	writer, err := kafka.NewKafkaWriter(cfg.Kafka, log.With("component", "kafka writer"))
	if err != nil {
		return nil, fmt.Errorf("app.initNotifier: kafka writer creation: %w", err)
	}

	set.kafkaN = notify.NewKafkaNotifier(
		writer,
		broadcaster,
		source,
		log.With("component", "kafka notifier"),
		metrics.Kafka(),
	)
	set.notifier = set.kafkaN

	return set, nil
}

func closeNotifier(set *notifierSet, log logger.Logger) {
	if set != nil && set.kafkaN != nil {
		if err := set.kafkaN.Close(); err != nil {
			log.Errorw("kafka notifier close failed", "error", err)
		}
	}
}

func initItemService(
	cfg *config.Config,
	db *postgres.Postgres,
	rdb *storageredis.Redis,
	itemCache cache.Cache[string, *entity.Item],
	notifier notify.Notifier,
	log logger.Logger,
	metrics metric.Factory,
) *service.ItemService {
	localRepo := repository.NewLocalItemRepository(rdb, cfg.Redis.Key, metrics.Storage())

	var remoteRepo service.RemoteStore
	if db != nil {
		remoteRepo = repository.NewRemoteItemRepository(db, metrics.Storage())
	}

	return service.NewItemService(
		localRepo,
		remoteRepo,
		normalize.New(),
		auth.NewContextProvider(),
		auth.AdminEmailPolicy(cfg.Auth.AdminEmail),
		notifier,
		log.With("component", "item service"),
		metrics.Storage(),
		itemCache,
		cfg.Cache.TTL,
		cfg.Postgres.ListLimit,
		cfg.App.DemoSeed,
	)
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.HTTP,
	itemService *service.ItemService,
	log logger.Logger,
	metrics metric.Factory,
) error {
	httpServer, err := httpt.NewHTTPServer(
		httpt.NewItemHandler(itemService, log, metrics.HTTP()),
		cfg,
		log.With("component", "http server"),
	)
	if err != nil {
		return fmt.Errorf("app.initHTTPServer: %w", err)
	}

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	return nil
}

func initChangeConsumer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	itemService *service.ItemService,
	set *notifierSet,
	log logger.Logger,
	metrics metric.Factory,
) error {
	if !cfg.Kafka.Enabled {
		return nil
	}

	kafkaReader, err := kafka.NewKafkaReader(cfg.Kafka, log.With("component", "kafka reader"))
	if err != nil {
		return fmt.Errorf("app.initChangeConsumer: kafka reader creation: %w", err)
	}

	changeConsumer := kafkat.NewChangeConsumer(
		kafkaReader,
		itemService,
		set.broadcaster,
		set.source,
		metrics.Kafka(),
		log,
	)
	eg.Go(func() error {
		return changeConsumer.Start(ctx)
	})

	return nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !isShutdownSignal(err) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}

func isShutdownSignal(err error) bool {
	return err != nil && err.Error() == "shutdown signal"
}
