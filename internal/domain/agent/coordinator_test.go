package agent_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain"
	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
	"agri-api/internal/infrastructure/repository/threadrepo"
	"agri-api/internal/utils/platformerrors"
)

var farmer = domain.Principal{ID: "farmer-1", AuthMethod: domain.AuthMethodJWT}

type fakeOrchestrator struct {
	StreamFunc func(ctx context.Context, systemPrompt string, history []agent.Turn, tools agent.Toolset) (agent.EventStream, error)
}

func (f *fakeOrchestrator) Stream(ctx context.Context, systemPrompt string, history []agent.Turn, tools agent.Toolset) (agent.EventStream, error) {
	return f.StreamFunc(ctx, systemPrompt, history, tools)
}

// scriptStream replays events and then returns err (io.EOF when nil).
type scriptStream struct {
	events []agent.Event
	err    error
	before func(i int)
	closed bool
}

func (s *scriptStream) Recv() (agent.Event, error) {
	if s.before != nil {
		s.before(len(s.events))
	}
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

func (s *scriptStream) Close() error {
	s.closed = true
	return nil
}

type emitted struct {
	name    string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
	failAt int
	reject string // event name whose payload "cannot be encoded"
}

func (r *recorder) Emit(name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt > 0 && len(r.events)+1 >= r.failAt {
		return errors.New("broken pipe")
	}
	if name == r.reject {
		return fmt.Errorf("%w: json: unsupported value: NaN", agent.ErrUnencodable)
	}
	r.events = append(r.events, emitted{name: name, payload: payload})
	return nil
}

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

func streamOf(s *scriptStream) *fakeOrchestrator {
	return &fakeOrchestrator{StreamFunc: func(context.Context, string, []agent.Turn, agent.Toolset) (agent.EventStream, error) {
		return s, nil
	}}
}

func setup(t *testing.T, orch agent.Orchestrator, opts ...agent.CoordinatorOption) (*agent.Coordinator, *threadrepo.MemoryRepository, *thread.Thread) {
	t.Helper()
	repo := threadrepo.NewMemoryRepository()
	th := &thread.Thread{UserID: farmer.ID}
	require.NoError(t, repo.CreateThread(context.Background(), th))
	c := agent.NewCoordinator(repo, orch, tool.NewRegistry(tool.WithSeed(1)), zerolog.Nop(), opts...)
	return c, repo, th
}

func TestExecute_SoilQuestionCompletes(t *testing.T) {
	stream := &scriptStream{events: []agent.Event{
		agent.ToolStart("analyze_soil_conditions", map[string]any{"zone_id": "A"}),
		agent.ToolEnd("analyze_soil_conditions", map[string]any{"moisture_percent": 42.0}),
		agent.Token("Zone A "),
		agent.Token("is at "),
		agent.Token("42% moisture."),
	}}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "What's the soil moisture in zone A?")
	require.NoError(t, err)
	assert.Equal(t, int64(1), prepared.UserMessage.Position)
	assert.Equal(t, status.StatusRunning, prepared.Run.Status)

	out := &recorder{}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.True(t, stream.closed)
	assert.Equal(t, []string{"tool_start", "tool_end", "token", "token", "token", "done"}, out.names())

	done := out.events[len(out.events)-1].payload.(agent.DonePayload)
	assert.Equal(t, "Zone A is at 42% moisture.", done.Content)
	assert.Equal(t, prepared.Run.ID, done.RunID)

	msgs, err := repo.ListMessages(ctx, th.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assistant := msgs[1]
	assert.Equal(t, int64(2), assistant.Position)
	assert.Equal(t, thread.RoleAssistant, assistant.Role)
	assert.Equal(t, done.MessageID, assistant.ID)
	assert.Equal(t, done.Content, assistant.Content)
	assert.Equal(t, prepared.Run.ID, assistant.Metadata["run_id"])

	calls := assistant.Metadata["tool_calls"].([]any)
	require.Len(t, calls, 1)
	call := calls[0].(map[string]any)
	assert.Equal(t, "analyze_soil_conditions", call["tool"])
	assert.Equal(t, "tool_call", call["type"])
	assert.Equal(t, 42.0, call["output"].(map[string]any)["moisture_percent"])

	stored, err := repo.GetRun(ctx, prepared.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusCompleted, stored.Status)
	assert.Len(t, stored.Metadata["tool_calls"], 1)
}

func TestExecute_FailureAfterTokensDiscardsText(t *testing.T) {
	stream := &scriptStream{
		events: []agent.Event{agent.Token("Checking "), agent.Token("soil...")},
		err:    errors.New("model endpoint returned 502"),
	}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "How is zone B?")
	require.NoError(t, err)

	out := &recorder{}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusFailed, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.Equal(t, "model endpoint returned 502", final.Metadata["error"])
	assert.Equal(t, []string{"token", "token", "error"}, out.names())
	assert.Equal(t, agent.ErrorPayload{Message: "model endpoint returned 502"}, out.events[2].payload)

	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExecute_StreamOpenFailure(t *testing.T) {
	orch := &fakeOrchestrator{StreamFunc: func(context.Context, string, []agent.Turn, agent.Toolset) (agent.EventStream, error) {
		return nil, errors.New("no api key")
	}}
	c, _, th := setup(t, orch)
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "hello")
	require.NoError(t, err)

	out := &recorder{}
	final := c.Execute(ctx, prepared, out)
	assert.Equal(t, status.StatusFailed, final.Status)
	assert.Equal(t, []string{"error"}, out.names())
}

func TestExecute_HistoryExcludesCurrentTurn(t *testing.T) {
	var (
		gotHistory []agent.Turn
		gotPrompt  string
	)
	orch := &fakeOrchestrator{StreamFunc: func(_ context.Context, prompt string, history []agent.Turn, _ agent.Toolset) (agent.EventStream, error) {
		gotPrompt = prompt
		gotHistory = history
		return &scriptStream{events: []agent.Event{agent.Token("ok")}}, nil
	}}
	c, repo, th := setup(t, orch)
	ctx := context.Background()

	_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "earlier question", nil)
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, th.ID, thread.RoleAssistant, "earlier answer", nil)
	require.NoError(t, err)

	prepared, err := c.Prepare(ctx, farmer, th.ID, "current question")
	require.NoError(t, err)
	c.Execute(ctx, prepared, &recorder{})

	require.Len(t, gotHistory, 3)
	assert.Equal(t, agent.Turn{Role: thread.RoleUser, Content: "earlier question"}, gotHistory[0])
	assert.Equal(t, agent.Turn{Role: thread.RoleAssistant, Content: "earlier answer"}, gotHistory[1])
	assert.Equal(t, agent.Turn{Role: thread.RoleUser, Content: "current question"}, gotHistory[2])

	occurrences := 0
	for _, turn := range gotHistory {
		if turn.Content == "current question" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
	assert.Contains(t, gotPrompt, "reason_step")
	assert.Contains(t, gotPrompt, "analyze_soil_conditions")
}

func TestExecute_HistoryIsBounded(t *testing.T) {
	var gotHistory []agent.Turn
	orch := &fakeOrchestrator{StreamFunc: func(_ context.Context, _ string, history []agent.Turn, _ agent.Toolset) (agent.EventStream, error) {
		gotHistory = history
		return &scriptStream{}, nil
	}}
	c, repo, th := setup(t, orch, agent.WithHistoryLimit(5))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "old", nil)
		require.NoError(t, err)
	}
	prepared, err := c.Prepare(ctx, farmer, th.ID, "now")
	require.NoError(t, err)
	c.Execute(ctx, prepared, &recorder{})

	require.Len(t, gotHistory, 6)
	assert.Equal(t, "now", gotHistory[5].Content)
}

func TestExecute_ReasoningStepsAreSeparate(t *testing.T) {
	stream := &scriptStream{events: []agent.Event{
		agent.ToolStart("reason_step", map[string]any{"title": "Plan", "detail": "check soil then weather"}),
		agent.ToolEnd("reason_step", map[string]any{"status": "recorded"}),
		agent.ToolStart("get_weather_forecast", map[string]any{"location": "Qassim"}),
		agent.ToolEnd("get_weather_forecast", map[string]any{"summary": "dry"}),
		agent.Token("Dry week ahead."),
	}}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "Plan my week")
	require.NoError(t, err)
	out := &recorder{}
	c.Execute(ctx, prepared, out)

	assert.Equal(t, []string{"reasoning", "tool_end", "tool_start", "tool_end", "token", "done"}, out.names())
	step := out.events[0].payload.(agent.ReasoningStep)
	assert.Equal(t, "reasoning", step.Type)
	assert.Equal(t, "Plan", step.Title)
	assert.Equal(t, "check soil then weather", step.Detail)

	msgs, err := repo.ListMessages(ctx, th.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Len(t, msgs[1].Metadata["reasoning_steps"], 1)
	assert.Len(t, msgs[1].Metadata["tool_calls"], 1)
}

func TestExecute_ClientDisconnectCancelsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &scriptStream{events: []agent.Event{agent.Token("a"), agent.Token("b")}}
	stream.before = func(remaining int) {
		if remaining == 1 {
			cancel()
		}
	}
	stream.err = context.Canceled
	c, repo, th := setup(t, streamOf(stream))

	prepared, err := c.Prepare(ctx, farmer, th.ID, "hello")
	require.NoError(t, err)

	out := &recorder{}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusCancelled, final.Status)
	assert.NotContains(t, out.names(), "done")
	assert.NotContains(t, out.names(), "error")

	stored, err := repo.GetRun(context.Background(), prepared.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	count, err := repo.CountMessages(context.Background(), th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExecute_EmitFailureCancelsRun(t *testing.T) {
	stream := &scriptStream{events: []agent.Event{agent.Token("a"), agent.Token("b"), agent.Token("c")}}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "hello")
	require.NoError(t, err)

	out := &recorder{failAt: 2}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusCancelled, final.Status)
	assert.Equal(t, []string{"token"}, out.names())
	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExecute_ReapedRunKeepsNoAssistantMessage(t *testing.T) {
	stream := &scriptStream{events: []agent.Event{agent.Token("Water "), agent.Token("zone A.")}}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()
	stream.before = func(remaining int) {
		if remaining == 2 {
			n, err := repo.FailStaleRuns(ctx, time.Now().Add(time.Hour), "stale")
			require.NoError(t, err)
			require.Equal(t, int64(1), n)
		}
	}

	prepared, err := c.Prepare(ctx, farmer, th.ID, "Should I irrigate?")
	require.NoError(t, err)

	out := &recorder{}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusFailed, final.Status)
	assert.Equal(t, "stale", final.Metadata["error"])
	assert.Equal(t, []string{"token", "token", "error"}, out.names())
	assert.Equal(t, agent.ErrorPayload{Message: agent.ErrRunSuperseded.Error()}, out.events[2].payload)

	msgs, err := repo.ListMessages(ctx, th.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, thread.RoleUser, msgs[0].Role)

	stored, err := repo.GetRun(ctx, prepared.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, stored.Status)
}

func TestExecute_UnencodableEventFailsRun(t *testing.T) {
	stream := &scriptStream{events: []agent.Event{
		agent.ToolStart("get_weather_forecast", map[string]any{"zone_id": "A"}),
		agent.ToolEnd("get_weather_forecast", map[string]any{"risk": "n/a"}),
		agent.Token("never sent"),
	}}
	c, repo, th := setup(t, streamOf(stream))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "Any frost risk?")
	require.NoError(t, err)

	out := &recorder{reject: agent.StreamToolEnd}
	final := c.Execute(ctx, prepared, out)

	assert.Equal(t, status.StatusFailed, final.Status)
	assert.Equal(t, []string{"tool_start", "error"}, out.names())
	assert.Contains(t, final.Metadata["error"], agent.ErrUnencodable.Error())

	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExecute_DoneContentMatchesTokens(t *testing.T) {
	tokens := []string{"Irrigate ", "zone C ", "for ", "12 ", "minutes ", "at 6:00 AM."}
	events := make([]agent.Event, 0, len(tokens))
	for _, tok := range tokens {
		events = append(events, agent.Token(tok))
	}
	c, _, th := setup(t, streamOf(&scriptStream{events: events}))
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "When should I water?")
	require.NoError(t, err)
	out := &recorder{}
	c.Execute(ctx, prepared, out)

	var sb strings.Builder
	for _, e := range out.events {
		if e.name == "token" {
			sb.WriteString(e.payload.(agent.TokenPayload).Content)
		}
	}
	done := out.events[len(out.events)-1]
	require.Equal(t, "done", done.name)
	assert.Equal(t, sb.String(), done.payload.(agent.DonePayload).Content)
}

func TestPrepare_Rejections(t *testing.T) {
	c, _, th := setup(t, streamOf(&scriptStream{}))
	ctx := context.Background()

	_, err := c.Prepare(ctx, domain.Principal{ID: "intruder"}, th.ID, "hi")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = c.Prepare(ctx, farmer, "missing-thread", "hi")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = c.Prepare(ctx, farmer, th.ID, "   ")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestExecute_PrincipalReachesTools(t *testing.T) {
	var seen domain.Principal
	orch := &fakeOrchestrator{StreamFunc: func(ctx context.Context, _ string, _ []agent.Turn, _ agent.Toolset) (agent.EventStream, error) {
		seen, _ = domain.PrincipalFromContext(ctx)
		return &scriptStream{}, nil
	}}
	c, _, th := setup(t, orch)
	ctx := context.Background()

	prepared, err := c.Prepare(ctx, farmer, th.ID, "hi")
	require.NoError(t, err)
	c.Execute(ctx, prepared, &recorder{})
	assert.Equal(t, farmer.ID, seen.ID)
}
