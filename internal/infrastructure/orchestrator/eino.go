// Package orchestrator runs the tool-calling model loop on top of eino.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/metrics"
	"agri-api/internal/infrastructure/observability"
)

const (
	defaultMaxIterations = 10
	defaultToolTimeout   = 30 * time.Second
)

var (
	// ErrMaxIterations is returned when the model keeps calling tools past the limit.
	ErrMaxIterations = errors.New("agent exceeded maximum iterations")
	// ErrRunTimeout is returned when the whole loop outlives Config.RunTimeout.
	ErrRunTimeout = errors.New("agent run timed out")
)

// Config tunes the loop. A zero RunTimeout leaves the loop bounded only by
// the caller's context.
type Config struct {
	MaxIterations int
	ToolTimeout   time.Duration
	RunTimeout    time.Duration
}

// Eino implements agent.Orchestrator with an eino ToolCallingChatModel.
type Eino struct {
	model         model.ToolCallingChatModel
	maxIterations int
	toolTimeout   time.Duration
	runTimeout    time.Duration
	log           zerolog.Logger
}

var _ agent.Orchestrator = (*Eino)(nil)

// NewEino wraps a chat model.
func NewEino(m model.ToolCallingChatModel, cfg Config, log zerolog.Logger) *Eino {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = defaultToolTimeout
	}
	return &Eino{
		model:         m,
		maxIterations: cfg.MaxIterations,
		toolTimeout:   cfg.ToolTimeout,
		runTimeout:    cfg.RunTimeout,
		log:           log.With().Str("component", "eino-orchestrator").Logger(),
	}
}

// Stream binds the toolset and starts the loop in its own goroutine.
func (e *Eino) Stream(ctx context.Context, systemPrompt string, history []agent.Turn, tools agent.Toolset) (agent.EventStream, error) {
	bound, err := e.model.WithTools(toolInfos(tools.ListTools()))
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	msgs := make([]*schema.Message, 0, len(history)+1)
	if systemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(systemPrompt))
	}
	for _, turn := range history {
		switch turn.Role {
		case thread.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		case thread.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(turn.Content))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s := &eventStream{items: make(chan item, 16), cancel: cancel}
	go func() {
		defer close(s.items)
		runCtx, stop := e.withDeadline(loopCtx)
		defer stop()

		err := e.loop(runCtx, bound, msgs, tools, s)
		if err != nil && loopCtx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrRunTimeout, e.runTimeout)
		}
		if err != nil {
			s.send(loopCtx, item{err: err})
		}
	}()
	return s, nil
}

// withDeadline bounds the loop. The error is still delivered on the parent
// context once the deadline passes.
func (e *Eino) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.runTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.runTimeout)
}

func (e *Eino) loop(ctx context.Context, m model.BaseChatModel, msgs []*schema.Message, tools agent.Toolset, out *eventStream) error {
	for i := 1; i <= e.maxIterations; i++ {
		reply, err := e.turn(ctx, m, msgs, i, out)
		if err != nil {
			return err
		}
		if len(reply.ToolCalls) == 0 {
			return nil
		}

		msgs = append(msgs, reply)
		for _, call := range reply.ToolCalls {
			msgs = append(msgs, e.invoke(ctx, tools, call, out))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("%w (%d)", ErrMaxIterations, e.maxIterations)
}

// turn streams one model response, forwarding content deltas as tokens.
func (e *Eino) turn(ctx context.Context, m model.BaseChatModel, msgs []*schema.Message, iteration int, out *eventStream) (*schema.Message, error) {
	ctx, span := observability.StartModelSpan(ctx, iteration)
	defer span.End()

	sr, err := m.Stream(ctx, msgs)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("model stream: %w", err)
	}
	defer sr.Close()

	var chunks []*schema.Message
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			observability.RecordError(span, err)
			return nil, fmt.Errorf("model stream: %w", err)
		}
		if chunk == nil {
			continue
		}
		if chunk.Content != "" && !out.send(ctx, item{ev: agent.Token(chunk.Content)}) {
			return nil, ctx.Err()
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		return nil, errors.New("model returned an empty response")
	}
	reply, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("concat model response: %w", err)
	}
	return reply, nil
}

// invoke runs one tool call. Failures are reported to the model as the tool
// result so it can recover.
func (e *Eino) invoke(ctx context.Context, tools agent.Toolset, call schema.ToolCall, out *eventStream) *schema.Message {
	name := call.Function.Name
	args := call.Function.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	input := map[string]any{}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		input = map[string]any{"raw": args}
	}
	out.send(ctx, item{ev: agent.ToolStart(name, input)})

	toolCtx, span := observability.StartToolSpan(ctx, name)
	toolCtx, cancel := context.WithTimeout(toolCtx, e.toolTimeout)
	started := time.Now()
	result, err := tools.Invoke(toolCtx, name, json.RawMessage(args))
	cancel()

	var output any = result
	outcome := "success"
	if err != nil {
		outcome = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			err = fmt.Errorf("tool %s timed out after %s", name, e.toolTimeout)
		}
		observability.RecordError(span, err)
		e.log.Warn().Err(err).Str("tool", name).Msg("tool call failed")
		output = map[string]any{"error": err.Error()}
	}
	span.End()
	metrics.RecordToolCall(name, outcome, time.Since(started).Seconds())

	out.send(ctx, item{ev: agent.ToolEnd(name, output)})

	content, mErr := json.Marshal(output)
	if mErr != nil {
		content = []byte(fmt.Sprintf(`{"error":%q}`, mErr.Error()))
	}
	return schema.ToolMessage(string(content), call.ID)
}

type item struct {
	ev  agent.Event
	err error
}

type eventStream struct {
	items     chan item
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *eventStream) send(ctx context.Context, it item) bool {
	select {
	case s.items <- it:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *eventStream) Recv() (agent.Event, error) {
	it, ok := <-s.items
	if !ok {
		return agent.Event{}, io.EOF
	}
	if it.err != nil {
		return agent.Event{}, it.err
	}
	return it.ev, nil
}

// Close stops the loop and waits for its goroutine to exit.
func (s *eventStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.items {
		}
	})
	return nil
}
