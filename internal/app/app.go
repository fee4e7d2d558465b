package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/config"
	"github.com/predictlive/sanrentan/internal/leaderboard"
	"github.com/predictlive/sanrentan/internal/logging"
	"github.com/predictlive/sanrentan/internal/server"
	"github.com/predictlive/sanrentan/internal/store/memory"
	"github.com/predictlive/sanrentan/internal/store/postgres"
	"github.com/predictlive/sanrentan/internal/tournament"
)

// Application aggregates shared infrastructure (store, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, the selected store, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("storage", cfg.Storage.Driver).Msg("starting application bootstrap")

	var (
		store tournament.Store
		pool  *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		p, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		pool = p
		store = postgres.New(p)
	case config.DriverMemory:
		logger.Warn().Msg("memory storage selected; state will not survive restarts")
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable; ranking cache degraded to store reads")
		}
	} else {
		logger.Info().Msg("REDIS_ADDR not set; ranking served without caching")
	}

	controller, err := tournament.NewController(ctx, store, tournament.Options{
		DefaultPrompt:  cfg.Tournament.DefaultPrompt,
		DefaultOptions: cfg.Tournament.DefaultOptions,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build tournament controller: %w", err)
	}

	lbSvc := leaderboard.NewService(controller, redisClient, logger, leaderboard.ServiceOptions{
		CacheTTL: cfg.Tournament.RankingCacheTTL,
	})

	handlers := server.NewHandlers(controller, lbSvc, logger)
	apiServer := server.NewHTTPServer(cfg, logger, handlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
