package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/social"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/views"
)

const (
	visitorTTL         = 10 * time.Minute
	mediaDeleteTimeout = 30 * time.Second
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. A nil pool selects the in-memory store. The returned cleanup stops
// background workers and closes clients opened here.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	var store repositories.Store
	if pool != nil {
		store = repositories.NewPostgresStore(pool)
	} else {
		store = repositories.NewMemoryStore().Store()
	}

	objects, err := buildObjectStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	janitor := media.NewJanitor(objects, media.JanitorConfig{
		QueueSize:     cfg.Media.CleanupQueue,
		Workers:       cfg.Media.CleanupWorkers,
		DeleteTimeout: mediaDeleteTimeout,
	}, logger)
	prober := media.NewProber(cfg.Media.FFprobePath, cfg.Media.FFprobeTimeout)

	sessions := auth.NewManager(auth.Config{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	}, store.Accounts)

	limiter, redisClient := buildLimiter(cfg)

	deps := handlers.Dependencies{
		Store:          store,
		Sessions:       sessions,
		Gate:           auth.NewGate(sessions, store.Accounts),
		Media:          media.NewUploader(objects, prober, janitor),
		Views:          views.NewEngine(store),
		Graph:          social.NewGraph(store),
		Limiter:        limiter,
		Cookies:        handlers.CookieSecurity(cfg.CookieSecure),
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		if err := janitor.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop media janitor: %w", err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis client: %w", err))
			}
		}
		return errors.Join(errs...)
	}

	return deps, cleanup, nil
}

func buildObjectStore(ctx context.Context, cfg config.ObjectStoreConfig) (media.ObjectStore, error) {
	switch cfg.Driver {
	case config.ObjectStoreS3:
		s3, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case config.ObjectStoreDisk:
		disk, err := storage.NewDiskStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return disk, nil
	default:
		return nil, fmt.Errorf("unsupported object store driver %q", cfg.Driver)
	}
}

// buildLimiter prefers the shared Redis window when an address is configured so
// replicas enforce one budget.
func buildLimiter(cfg config.Config) (middleware.RateLimiter, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, visitorTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return middleware.NewRedisRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), client
}
