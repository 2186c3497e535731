//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"agri-api/internal/config"
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/auth"
	"agri-api/internal/interfaces/httpserver"
	"agri-api/internal/interfaces/httpserver/handlers"
	"agri-api/internal/interfaces/httpserver/middlewares"
)

var storageSet = wire.NewSet(
	newStorage,
	newThreadRepository,
	newFarmRepository,
	newReadinessCheck,
	newRedisCache,
	newCacheStore,
	newRunLocker,
)

var agentSet = wire.NewSet(
	thread.NewService,
	farm.NewService,
	newToolRegistry,
	newChatModel,
	newOrchestrator,
	newCoordinator,
)

var httpSet = wire.NewSet(
	newAuthValidator,
	newSanitizer,
	wire.Bind(new(middlewares.Authenticator), new(*auth.Validator)),
	handlers.NewProvider,
	httpserver.New,
)

// BuildApplication assembles the advisory service with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		storageSet,
		agentSet,
		httpSet,
		newReaper,
		NewApplication,
	)
	return nil, nil, nil
}
