package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/roamr-backend/internal/cache"
	"github.com/baharkarakas/roamr-backend/internal/config"
	"github.com/baharkarakas/roamr-backend/internal/db"
	"github.com/baharkarakas/roamr-backend/internal/events"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
	"github.com/baharkarakas/roamr-backend/internal/repository/memory"
	"github.com/baharkarakas/roamr-backend/internal/repository/postgres"
	"github.com/baharkarakas/roamr-backend/internal/services"
	"github.com/baharkarakas/roamr-backend/internal/storage"
	"github.com/baharkarakas/roamr-backend/internal/worker"
)

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Set, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore().Repositories(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return repo.Set{}, nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repo.Set{}, nil, fmt.Errorf("migrations: %w", err)
		}
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}

// integrations holds the optional backends. Each is enabled by its address
// being configured.
type integrations struct {
	redis  *redis.Client
	cache  *cache.ListingCache
	nats   *events.NATSPublisher
	events *events.Dispatcher
	images *storage.ImageStore
}

func openIntegrations(ctx context.Context, cfg config.Config, wp *worker.Pool, log *slog.Logger) (*integrations, error) {
	in := &integrations{}

	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		in.redis = client
		in.cache = cache.NewListingCache(client, cfg.CacheTTL)
		log.Info("listing cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("nats: %w", err)
		}
		in.nats = pub
		in.events = events.NewDispatcher(pub, wp, log)
		log.Info("event publishing enabled", "url", cfg.NATSURL)
	}

	if cfg.MinioEndpoint != "" {
		store, err := storage.NewImageStore(ctx, storage.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, log)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		in.images = store
	}
	return in, nil
}

func (in *integrations) options() []services.Option {
	var opts []services.Option
	if in.cache != nil {
		opts = append(opts, services.WithCache(in.cache))
	}
	if in.events != nil {
		opts = append(opts, services.WithEvents(in.events))
	}
	return opts
}

func (in *integrations) close() {
	if in.nats != nil {
		in.nats.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
}
