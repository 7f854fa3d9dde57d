package gazetteer

import (
	"context"
	"database/sql"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/postgres"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/redis"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/database/sqlite"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// Handle bundles an opened gazetteer backend.
type Handle struct {
	// Store answers lookups, through the cache when one is configured.
	Store Store
	// Importer is nil for the memory driver.
	Importer *Importer
	// Memory is set for the memory driver so fixtures can be added.
	Memory *MemoryStore
	// DB is the underlying database of the sql drivers.
	DB      *sql.DB
	Dialect Dialect

	closers []func() error
}

// Close releases the database and cache connections.
func (h *Handle) Close() error {
	var first error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}

// InvalidateCache drops cached lookups. It is a no-op without a cache.
func (h *Handle) InvalidateCache(ctx context.Context) (int64, error) {
	cs, ok := h.Store.(*CachedStore)
	if !ok {
		return 0, nil
	}
	return cs.Invalidate(ctx)
}

// Open builds the backend selected by cfg.Gazetteer.Driver and, when
// caching is enabled, fronts it with Redis. observer may be nil.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger, observer CacheObserver) (*Handle, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	h := &Handle{}

	switch cfg.Gazetteer.Driver {
	case "memory":
		h.Memory = NewMemoryStore()
		h.Store = h.Memory
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLite, log)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, db.Close)
		if err := h.useSQL(db, DialectSQLite, cfg.Gazetteer, log); err != nil {
			h.Close()
			return nil, err
		}
	case "postgres":
		conn, err := postgres.NewConnection(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, conn.Close)
		if err := h.useSQL(conn.DB(), DialectPostgres, cfg.Gazetteer, log); err != nil {
			h.Close()
			return nil, err
		}
	default:
		return nil, errors.Newf(errors.ErrCodeGazetteerDriver, "unknown gazetteer driver %q", cfg.Gazetteer.Driver)
	}

	if cfg.Gazetteer.CacheEnabled {
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.closers = append(h.closers, client.Close)
		var cacheOpts []redis.CacheOption
		if cfg.Redis.KeyPrefix != "" {
			cacheOpts = append(cacheOpts, redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Gazetteer.CacheTTL > 0 {
			cacheOpts = append(cacheOpts, redis.WithDefaultTTL(cfg.Gazetteer.CacheTTL))
		}
		cache := redis.NewRedisCache(client, log, cacheOpts...)
		opts := []CachedOption{WithCacheTTL(cfg.Gazetteer.CacheTTL), WithCacheLogger(log)}
		if observer != nil {
			opts = append(opts, WithCacheObserver(observer))
		}
		h.Store = NewCachedStore(h.Store, cache, opts...)
	}

	log.Info("gazetteer opened",
		logging.String("driver", cfg.Gazetteer.Driver),
		logging.Bool("cache", cfg.Gazetteer.CacheEnabled))
	return h, nil
}

func (h *Handle) useSQL(db *sql.DB, dialect Dialect, cfg config.GazetteerConfig, log logging.Logger) error {
	store, err := NewSQLStore(db, dialect, cfg, log)
	if err != nil {
		return err
	}
	im, err := NewImporter(db, dialect, 0, log)
	if err != nil {
		return err
	}
	h.DB, h.Dialect, h.Store, h.Importer = db, dialect, store, im
	return nil
}

//Personal.AI order the ending
