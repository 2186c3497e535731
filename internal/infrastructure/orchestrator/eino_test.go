package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
)

type scriptedTurn struct {
	chunks []*schema.Message
	err    error
}

// fakeModel replays one scripted turn per Stream call.
type fakeModel struct {
	mu     sync.Mutex
	turns  []scriptedTurn
	repeat bool
	seen   [][]*schema.Message
	tools  []*schema.ToolInfo
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	sr, err := f.Stream(ctx, input)
	if err != nil {
		return nil, err
	}
	defer sr.Close()
	var chunks []*schema.Message
	for {
		c, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return schema.ConcatMessages(chunks)
}

func (f *fakeModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, append([]*schema.Message(nil), input...))
	if len(f.turns) == 0 {
		return nil, errors.New("no scripted turn")
	}
	turn := f.turns[0]
	if !f.repeat {
		f.turns = f.turns[1:]
	}

	sr, sw := schema.Pipe[*schema.Message](len(turn.chunks) + 1)
	for _, c := range turn.chunks {
		sw.Send(c, nil)
	}
	if turn.err != nil {
		sw.Send(nil, turn.err)
	}
	sw.Close()
	return sr, nil
}

func (f *fakeModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = tools
	return f, nil
}

type fakeToolset struct {
	specs      []tool.Spec
	InvokeFunc func(ctx context.Context, name string, args json.RawMessage) (tool.Result, error)
}

func (f *fakeToolset) ListTools() []tool.Spec { return f.specs }

func (f *fakeToolset) Invoke(ctx context.Context, name string, args json.RawMessage) (tool.Result, error) {
	return f.InvokeFunc(ctx, name, args)
}

func text(s string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: s}
}

func toolCallChunk(id, name, args string) *schema.Message {
	idx := 0
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			Index:    &idx,
			ID:       id,
			Type:     "function",
			Function: schema.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func drain(t *testing.T, s agent.EventStream) ([]agent.Event, error) {
	t.Helper()
	defer s.Close()
	var events []agent.Event
	for {
		ev, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

var userTurn = []agent.Turn{{Role: thread.RoleUser, Content: "How is zone A?"}}

func TestStream_TextOnly(t *testing.T) {
	m := &fakeModel{turns: []scriptedTurn{{chunks: []*schema.Message{text("Soil "), text("looks fine.")}}}}
	reg := tool.NewRegistry(tool.WithSeed(3))
	o := NewEino(m, Config{}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "be helpful", userTurn, reg)
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, agent.Token("Soil "), events[0])
	assert.Equal(t, agent.Token("looks fine."), events[1])

	require.Len(t, m.seen, 1)
	assert.Equal(t, schema.System, m.seen[0][0].Role)
	assert.Equal(t, schema.User, m.seen[0][1].Role)
	assert.Len(t, m.tools, len(tool.Kinds))
}

func TestStream_ToolCallRoundTrip(t *testing.T) {
	m := &fakeModel{turns: []scriptedTurn{
		{chunks: []*schema.Message{
			toolCallChunk("call_1", "analyze_soil_conditions", `{"zone_id":`),
			toolCallChunk("", "", `"A"}`),
		}},
		{chunks: []*schema.Message{text("Moisture is adequate.")}},
	}}
	reg := tool.NewRegistry(tool.WithSeed(3))
	o := NewEino(m, Config{}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, reg)
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, agent.EventToolStart, events[0].Type)
	assert.Equal(t, "analyze_soil_conditions", events[0].Tool)
	assert.Equal(t, "A", events[0].Input["zone_id"])
	assert.Equal(t, agent.EventToolEnd, events[1].Type)
	out, ok := events[1].Output.(tool.Result)
	require.True(t, ok)
	assert.Equal(t, "A", out["zone_id"])
	assert.Equal(t, agent.Token("Moisture is adequate."), events[2])

	require.Len(t, m.seen, 2)
	second := m.seen[1]
	last := second[len(second)-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, `"zone_id":"A"`)
}

func TestStream_UnknownToolIsReportedToModel(t *testing.T) {
	m := &fakeModel{turns: []scriptedTurn{
		{chunks: []*schema.Message{toolCallChunk("c1", "launch_drone", `{}`)}},
		{chunks: []*schema.Message{text("I cannot do that.")}},
	}}
	o := NewEino(m, Config{}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tool.NewRegistry())
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)

	require.Len(t, events, 3)
	output := events[1].Output.(map[string]any)
	assert.Contains(t, output["error"], "unknown tool")
}

func TestStream_ToolTimeout(t *testing.T) {
	m := &fakeModel{turns: []scriptedTurn{
		{chunks: []*schema.Message{toolCallChunk("c1", "get_weather_forecast", `{"location":"1,2"}`)}},
		{chunks: []*schema.Message{text("Weather unavailable.")}},
	}}
	tools := &fakeToolset{InvokeFunc: func(ctx context.Context, _ string, _ json.RawMessage) (tool.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := NewEino(m, Config{ToolTimeout: 20 * time.Millisecond}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tools)
	require.NoError(t, err)
	events, err := drain(t, s)
	require.NoError(t, err)

	output := events[1].Output.(map[string]any)
	assert.Contains(t, output["error"], "timed out")
}

func TestStream_RunTimeoutEndsSlowLoop(t *testing.T) {
	m := &fakeModel{
		repeat: true,
		turns:  []scriptedTurn{{chunks: []*schema.Message{toolCallChunk("c", "get_weather_forecast", `{"location":"1,2"}`)}}},
	}
	tools := &fakeToolset{InvokeFunc: func(ctx context.Context, _ string, _ json.RawMessage) (tool.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := NewEino(m, Config{MaxIterations: 50, ToolTimeout: time.Minute, RunTimeout: 30 * time.Millisecond}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tools)
	require.NoError(t, err)
	_, err = drain(t, s)
	assert.ErrorIs(t, err, ErrRunTimeout)
	assert.Len(t, m.seen, 1)
}

func TestStream_MaxIterations(t *testing.T) {
	m := &fakeModel{
		repeat: true,
		turns:  []scriptedTurn{{chunks: []*schema.Message{toolCallChunk("c", "reason_step", `{"title":"again"}`)}}},
	}
	o := NewEino(m, Config{MaxIterations: 2}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tool.NewRegistry())
	require.NoError(t, err)
	events, err := drain(t, s)
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Len(t, events, 4)
	assert.Len(t, m.seen, 2)
}

func TestStream_ModelErrorAfterTokens(t *testing.T) {
	m := &fakeModel{turns: []scriptedTurn{{
		chunks: []*schema.Message{text("a"), text("b")},
		err:    errors.New("upstream 502"),
	}}}
	o := NewEino(m, Config{}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tool.NewRegistry())
	require.NoError(t, err)
	events, err := drain(t, s)
	assert.ErrorContains(t, err, "upstream 502")
	assert.Len(t, events, 2)
}

func TestStream_CloseStopsLoop(t *testing.T) {
	m := &fakeModel{
		repeat: true,
		turns:  []scriptedTurn{{chunks: []*schema.Message{toolCallChunk("c", "reason_step", `{}`)}}},
	}
	o := NewEino(m, Config{MaxIterations: 1000}, zerolog.Nop())

	s, err := o.Stream(context.Background(), "", userTurn, tool.NewRegistry())
	require.NoError(t, err)
	_, err = s.Recv()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not stop the loop")
	}
}

func TestToolInfos_FromRegistrySchemas(t *testing.T) {
	infos := toolInfos(tool.NewRegistry().ListTools())
	require.Len(t, infos, len(tool.Kinds))

	byName := map[string]*schema.ToolInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	soil := byName["analyze_soil_conditions"]
	require.NotNil(t, soil)
	assert.NotEmpty(t, soil.Desc)

	p := params(tool.NewRegistry().ListTools()[2].Parameters)
	require.Contains(t, p, "zone_id")
	assert.Equal(t, schema.String, p["zone_id"].Type)
	assert.True(t, p["zone_id"].Required)
	require.Contains(t, p, "sensor_data")
	assert.Equal(t, schema.Object, p["sensor_data"].Type)
	assert.False(t, p["sensor_data"].Required)
}
