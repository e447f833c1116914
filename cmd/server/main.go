package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/forumkit/pulse/config"
	"github.com/forumkit/pulse/pkg/db"
	"github.com/forumkit/pulse/pkg/health"
	"github.com/forumkit/pulse/pkg/logger"
	"github.com/forumkit/pulse/pkg/redis"
	"github.com/forumkit/pulse/pkg/sysinfo"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry).With(slog.String("service", cfg.Service.Name))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}

	client, err := redis.Open(ctx, cfg.Redis.URL,
		redis.WithPoolSize(cfg.Redis.PoolSize),
		redis.WithMinIdleConns(cfg.Redis.MinIdleConns),
		redis.WithRetry(cfg.Redis.RetryAttempts, cfg.Redis.RetryInterval),
	)
	if err != nil {
		_ = db.Shutdown(pool)(ctx)
		return err
	}

	sampler := sysinfo.Unavailable()
	if cfg.Sysinfo.Enabled {
		sampler = sysinfo.Detect(ctx,
			sysinfo.WithCPUSampleWindow(cfg.Sysinfo.CPUSampleWindow),
			sysinfo.WithDiskPath(cfg.Sysinfo.DiskPath),
		)
	}
	if !sampler.Available() {
		log.Warn("system metrics unavailable, disk and memory checks report unknown")
	}

	connStats := db.Stats(pool)
	cacheInfo := redis.FetchInfo(client)

	probes := health.NewHandler(
		health.WithServiceInfo(cfg.Service.Name, cfg.Service.Version),
		health.WithTimeout(cfg.Health.CheckTimeout),
		health.WithThresholds(cfg.Health.DiskWarnPercent, cfg.Health.MemoryWarnPercent),
		health.WithDatabaseCheck(db.Healthcheck(pool)),
		health.WithCacheCheck(redis.Healthcheck(client)),
		health.WithSampler(sampler),
		health.WithDatabaseStats(func(ctx context.Context) (health.DatabaseStats, error) {
			stats, err := connStats(ctx)
			if err != nil {
				return health.DatabaseStats{}, err
			}
			return health.DatabaseStats{
				TotalConnections:  stats.Total,
				ActiveConnections: stats.Active,
			}, nil
		}),
		health.WithCacheStats(func(ctx context.Context) (health.CacheStats, error) {
			info, err := cacheInfo(ctx)
			if err != nil {
				return health.CacheStats{}, err
			}
			return health.CacheStats{
				ConnectedClients: info.ConnectedClients,
				UsedMemory:       info.UsedMemory,
				UsedMemoryPeak:   info.UsedMemoryPeak,
			}, nil
		}),
		health.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(health.Recoverer(log))
	// Both slash variants: orchestrators polling probes must not be
	// redirected.
	for path, handler := range map[string]http.HandlerFunc{
		"/health":  probes.Health,
		"/ready":   probes.Readiness,
		"/live":    probes.Liveness,
		"/metrics": probes.Metrics,
	} {
		r.Get(path, handler)
		r.Get(path+"/", handler)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.String("address", cfg.Server.Addr),
			slog.String("version", cfg.Service.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range []func(context.Context) error{
		redis.Shutdown(client),
		db.Shutdown(pool),
	} {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
