package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/middleware"
)

// Run bootstraps the VidTube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	var (
		pool        db.Pool
		healthCheck func(context.Context) error
	)
	if cfg.Database.Driver == config.StorePostgres {
		pgPool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		pool = pgPool
		healthCheck = pgPool.Ping
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
	}

	deps, cleanup, err := buildDependencies(ctx, pool, cfg, logger)
	if err != nil {
		return err
	}
	deps.HealthCheck = healthCheck

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)
	mux.Handle("GET /metrics", metrics.Handler())
	if cfg.ObjectStore.Driver == config.ObjectStoreDisk {
		if prefix, ok := mediaRoute(cfg.ObjectStore.PublicBaseURL); ok {
			mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.ObjectStore.LocalDir))))
		}
	}

	handler := middleware.RequestLogger(logger)(middleware.Metrics(mux))

	srv := httpserver.New(cfg.AppPort, handler, httpserver.WithUploadLimit(cfg.Media.MaxUploadBytes))

	logger.Info("starting http server", "port", cfg.AppPort, "store", cfg.Database.Driver, "objectStore", cfg.ObjectStore.Driver)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = cleanup(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), cleanup(shutdownCtx))
}

// mediaRoute turns a relative public base URL into a ServeMux prefix. Absolute
// URLs point at another host, so nothing is mounted for them.
func mediaRoute(baseURL string) (string, bool) {
	if !strings.HasPrefix(baseURL, "/") {
		return "", false
	}
	return strings.TrimSuffix(baseURL, "/") + "/", true
}

func connectPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.Driver != config.StorePostgres {
		return nil, fmt.Errorf("database driver %q does not support this command", cfg.Database.Driver)
	}
	return db.Connect(ctx, cfg.Database.URL)
}
