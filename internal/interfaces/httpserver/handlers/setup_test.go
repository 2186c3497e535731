package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain"
	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
	"agri-api/internal/infrastructure/observability"
	"agri-api/internal/infrastructure/repository/farmrepo"
	"agri-api/internal/infrastructure/repository/threadrepo"
	"agri-api/internal/interfaces/httpserver/handlers"
	"agri-api/internal/interfaces/httpserver/middlewares"
	"agri-api/internal/interfaces/httpserver/routes"
)

var (
	alice = domain.Principal{ID: "alice", AuthMethod: domain.AuthMethodJWT}
	bob   = domain.Principal{ID: "bob", AuthMethod: domain.AuthMethodJWT}
)

// MockAuthenticator resolves "Bearer <id>" to a principal with that id.
type MockAuthenticator struct {
	AuthenticateFunc func(header string) (domain.Principal, error)
}

func (m *MockAuthenticator) Authenticate(header string) (domain.Principal, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(header)
	}
	id := strings.TrimPrefix(header, "Bearer ")
	if id == "" || id == header {
		return domain.Principal{}, errors.New("missing bearer token")
	}
	return domain.Principal{ID: id, AuthMethod: domain.AuthMethodJWT}, nil
}

// MockOrchestrator returns StreamFunc's stream, or replays Events then Err.
type MockOrchestrator struct {
	Events     []agent.Event
	Err        error
	StreamFunc func(ctx context.Context, history []agent.Turn) (agent.EventStream, error)
}

func (m *MockOrchestrator) Stream(ctx context.Context, _ string, history []agent.Turn, _ agent.Toolset) (agent.EventStream, error) {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, history)
	}
	return &replayStream{events: m.Events, err: m.Err}, nil
}

type replayStream struct {
	events []agent.Event
	err    error
}

func (s *replayStream) Recv() (agent.Event, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			return agent.Event{}, s.err
		}
		return agent.Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *replayStream) Close() error { return nil }

type fixture struct {
	router   *gin.Engine
	threads  *thread.Service
	farms    *farm.Service
	store    *threadrepo.MemoryRepository
	registry *tool.Registry
}

func newFixture(t *testing.T, orch agent.Orchestrator) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	store := threadrepo.NewMemoryRepository()
	threads := thread.NewService(store, log)
	farms := farm.NewService(farmrepo.NewMemoryRepository(), log)
	registry := tool.NewRegistry(tool.WithSeed(7))
	if orch == nil {
		orch = &MockOrchestrator{}
	}
	coordinator := agent.NewCoordinator(store, orch, registry, log)

	router := gin.New()
	router.Use(middlewares.RequestID())
	api := router.Group("")
	api.Use(middlewares.AuthMiddleware(&MockAuthenticator{}, log))
	routes.NewProvider(handlers.NewProvider(coordinator, threads, farms, observability.NewSanitizer("none", "test"), log)).Register(api)

	return &fixture{router: router, threads: threads, farms: farms, store: store, registry: registry}
}

func (f *fixture) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type sseFrame struct {
	Event string
	Data  string
}

func parseSSE(t *testing.T, body string) []sseFrame {
	t.Helper()
	var frames []sseFrame
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		if block == "" {
			continue
		}
		var frame sseFrame
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				frame.Event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				frame.Data = strings.TrimPrefix(line, "data: ")
			}
		}
		frames = append(frames, frame)
	}
	return frames
}

func names(frames []sseFrame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Event
	}
	return out
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
