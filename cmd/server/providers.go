package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agri-api/internal/config"
	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
	"agri-api/internal/infrastructure/auth"
	"agri-api/internal/infrastructure/cache"
	"agri-api/internal/infrastructure/database"
	"agri-api/internal/infrastructure/llmprovider"
	"agri-api/internal/infrastructure/observability"
	"agri-api/internal/infrastructure/orchestrator"
	"agri-api/internal/infrastructure/reaper"
	"agri-api/internal/infrastructure/repository/farmrepo"
	"agri-api/internal/infrastructure/repository/threadrepo"
	"agri-api/internal/infrastructure/weather"
	"agri-api/internal/interfaces/httpserver"
)

// storage holds the persistence backends selected by DB_DRIVER.
type storage struct {
	db      *gorm.DB
	threads thread.Repository
	farms   farm.Repository
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, func(), error) {
	if cfg.UseMemoryStore() {
		log.Warn().Msg("DB_DRIVER=memory: conversations and farms are kept in process and lost on restart")
		return &storage{
			threads: threadrepo.NewMemoryRepository(),
			farms:   farmrepo.NewMemoryRepository(),
		}, func() {}, nil
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return &storage{
		db:      db,
		threads: threadrepo.NewPostgresRepository(db),
		farms:   farmrepo.NewPostgresRepository(db),
	}, cleanup, nil
}

func newThreadRepository(s *storage) thread.Repository { return s.threads }

func newFarmRepository(s *storage) farm.Repository { return s.farms }

func newReadinessCheck(s *storage, rc *cache.RedisCache) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		if s.db != nil {
			if err := database.Ping(ctx, s.db); err != nil {
				return fmt.Errorf("database: %w", err)
			}
		}
		if rc != nil {
			if err := rc.HealthCheck(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}

// newRedisCache returns nil when REDIS_URL is unset.
func newRedisCache(cfg *config.Config, log zerolog.Logger) (*cache.RedisCache, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}
	rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.ServiceName+":", log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}, nil
}

func newCacheStore(cfg *config.Config, rc *cache.RedisCache) (cache.Store, error) {
	if rc != nil {
		return rc, nil
	}
	return cache.NewMemoryCache(cfg.LocalCacheSize)
}

func newRunLocker(rc *cache.RedisCache) reaper.Locker {
	if rc == nil {
		return nil
	}
	return rc
}

func newToolRegistry(cfg *config.Config, store cache.Store, farms *farm.Service, log zerolog.Logger) *tool.Registry {
	opts := []tool.Option{
		tool.WithSensorSource(farms.SensorSource()),
		tool.WithLogger(log),
	}
	if client := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherTimeout, store, cfg.WeatherCacheTTL, log); client != nil {
		opts = append(opts, tool.WithWeatherSource(client))
	}
	return tool.NewRegistry(opts...)
}

func newChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	return llmprovider.NewChatModel(ctx, llmprovider.Config{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
}

func newOrchestrator(m model.ToolCallingChatModel, cfg *config.Config, log zerolog.Logger) agent.Orchestrator {
	return orchestrator.NewEino(m, orchestrator.Config{
		MaxIterations: cfg.AgentMaxIterations,
		ToolTimeout:   cfg.ToolTimeout,
		RunTimeout:    cfg.AgentRunTimeout,
	}, log)
}

func newCoordinator(repo thread.Repository, orch agent.Orchestrator, tools *tool.Registry, cfg *config.Config, log zerolog.Logger) *agent.Coordinator {
	return agent.NewCoordinator(repo, orch, tools, log, agent.WithHistoryLimit(cfg.ChatHistoryMessages))
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, func(), error) {
	v, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize auth validator: %w", err)
	}
	return v, v.Close, nil
}

func newReaper(repo thread.Repository, locker reaper.Locker, cfg *config.Config, log zerolog.Logger) *reaper.Reaper {
	return reaper.New(repo, cfg.RunStaleAfter, cfg.RunReaperSchedule, locker, log)
}

func newSanitizer(cfg *config.Config) *observability.Sanitizer {
	return observability.NewSanitizer(cfg.TracePIILevel, cfg.ServiceName)
}
