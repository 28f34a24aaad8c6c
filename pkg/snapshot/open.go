package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/groupfit/pkg/config"
	"github.com/matzehuels/groupfit/pkg/errors"
	"github.com/matzehuels/groupfit/pkg/observability"
)

// Open builds the store selected by cfg.Store.Backend.
//
// With cfg.Store.Fallback set, the redis and mongo backends are chained to a
// file store in cfg.Store.Dir. If the remote backend cannot be reached at
// all, Open returns the file store alone.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Instrument(store), nil
}

func open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile:
		s, err := NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, unavailable("sqlite", err, "create directory")
		}
		s, err := NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		return withFallback(ctx, cfg, "redis", func() (Store, error) {
			s, err := NewRedisStore(ctx, RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL.Duration,
			})
			if err != nil {
				return nil, err
			}
			return s, nil
		})
	case config.BackendMongo:
		return withFallback(ctx, cfg, "mongo", func() (Store, error) {
			s, err := NewMongoStore(ctx, MongoConfig{
				URI:        cfg.Mongo.URI,
				Database:   cfg.Mongo.Database,
				Collection: cfg.Mongo.Collection,
			})
			if err != nil {
				return nil, err
			}
			return s, nil
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Store.Backend)
	}
}

func withFallback(ctx context.Context, cfg *config.Config, kind string, connect func() (Store, error)) (Store, error) {
	primary, err := connect()
	if !cfg.Store.Fallback {
		return primary, err
	}
	if err != nil && !ShouldFallback(err) {
		return nil, err
	}

	secondary, ferr := NewFileStore(cfg.Store.Dir)
	if ferr != nil {
		if primary != nil {
			primary.Close()
		}
		if err != nil {
			return nil, err
		}
		return nil, ferr
	}
	if err != nil {
		observability.Store().OnFallback(ctx, "open", kind, secondary.Kind(), err)
		return secondary, nil
	}
	return NewFallbackStore(primary, secondary), nil
}
