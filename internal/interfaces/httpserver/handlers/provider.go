package handlers

import (
	"github.com/rs/zerolog"

	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/observability"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Agent  *AgentHandler
	Thread *ThreadHandler
	Farm   *FarmHandler
	Alert  *AlertHandler
	Task   *TaskHandler
	Team   *TeamHandler
	User   *UserHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(coordinator *agent.Coordinator, threads *thread.Service, farms *farm.Service, sanitizer *observability.Sanitizer, log zerolog.Logger) *Provider {
	return &Provider{
		Agent:  NewAgentHandler(coordinator, threads, sanitizer, log),
		Thread: NewThreadHandler(threads, log),
		Farm:   NewFarmHandler(farms, log),
		Alert:  NewAlertHandler(farms, log),
		Task:   NewTaskHandler(farms, log),
		Team:   NewTeamHandler(farms, log),
		User:   NewUserHandler(threads, farms, log),
	}
}
