package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"agri-api/internal/config"
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/logger"
	"agri-api/internal/infrastructure/observability"
	"agri-api/internal/infrastructure/reaper"
	"agri-api/internal/interfaces/httpserver"
	"agri-api/internal/interfaces/httpserver/handlers"
)

// @title Agri Advisory API
// @version 1.0
// @description Agricultural advisory agent with streamed runs, conversation threads, farms and sensor readings.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	reaper     *reaper.Reaper
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, runReaper *reaper.Reaper, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		reaper:     runReaper,
		log:        log,
	}
}

// Start serves HTTP and sweeps stale runs until ctx is cancelled or either fails.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	g.Go(func() error {
		return a.reaper.Run(gctx)
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build application")
	}
	defer cleanup()

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication assembles the same graph as BuildApplication in wire.go.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Application, func(), error) {
		cleanup()
		return nil, nil, err
	}

	store, closeStore, err := newStorage(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeStore)

	redisCache, closeRedis, err := newRedisCache(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeRedis)

	cacheStore, err := newCacheStore(cfg, redisCache)
	if err != nil {
		return fail(err)
	}

	threadRepo := newThreadRepository(store)
	threadService := thread.NewService(threadRepo, log)
	farmService := farm.NewService(newFarmRepository(store), log)
	registry := newToolRegistry(cfg, cacheStore, farmService, log)

	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	coordinator := newCoordinator(threadRepo, newOrchestrator(chatModel, cfg, log), registry, cfg, log)

	validator, closeValidator, err := newAuthValidator(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeValidator)

	handlerProvider := handlers.NewProvider(coordinator, threadService, farmService, newSanitizer(cfg), log)
	server := httpserver.New(cfg, log, handlerProvider, validator, newReadinessCheck(store, redisCache))
	runReaper := newReaper(threadRepo, newRunLocker(redisCache), cfg, log)

	return NewApplication(server, runReaper, log), cleanup, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
