package main

import (
	"context"
	"fmt"
	"log/slog"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/config"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/kv"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
)

// backend is the configured session storage plus its lifecycle hooks
type backend struct {
	kv.Store
	ping  func(ctx context.Context) error
	close func() error
}

func (b *backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *backend) Close() {
	if b.close != nil {
		_ = b.close()
	}
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		path := cfg.StoragePath
		if path == "" {
			path = kv.DefaultFilePath
		}
		file, err := kv.OpenFile(path)
		if err != nil {
			return nil, err
		}
		if aside := file.Quarantined(); aside != "" {
			log.Warn("storage file was unreadable, moved aside and starting empty", "path", file.Path(), "moved_to", aside)
		}
		log.Info("using file storage", "path", file.Path())
		return &backend{Store: file}, nil

	case config.StorageRedis:
		store := redis.NewStore(redis.RedisClient(redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		}), 0)

		pingCtx, cancel := context.WithTimeout(ctx, global.DefaultTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddress, err)
		}
		log.Info("using Redis storage", "address", cfg.RedisAddress)
		return &backend{Store: store, ping: store.Ping, close: store.Close}, nil

	default:
		log.Warn("using in-memory storage, wishlists and settings are lost on restart")
		return &backend{Store: kv.NewMemory()}, nil
	}
}

// loadCatalog reads the catalog once at startup. The Mongo connection is only
// held while loading.
func loadCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogSource != config.CatalogMongo {
		return catalog.Static()
	}

	client, err := mongo.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect from MongoDB", "error", err)
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(db, log); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(ctx, mongo.CatalogSource{DB: db})
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		log.Warn("MongoDB catalog is empty, run cmd/seed to load the bundled products", "database", cfg.MongoDatabase)
	}
	return cat, nil
}
