package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agri-api/internal/domain"
	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
	"agri-api/internal/utils/platformerrors"
)

const (
	DefaultHistoryLimit = 20
	maxContentLength    = 16000
	finalizeTimeout     = 10 * time.Second
)

var (
	// ErrClientGone is recorded when the caller disconnects mid-run.
	ErrClientGone = errors.New("client disconnected")
	// ErrRunSuperseded is reported when the run was finalized elsewhere
	// while the model was still streaming.
	ErrRunSuperseded = errors.New("run was finalized before it completed")
)

// Coordinator runs one advisory turn on a thread.
type Coordinator struct {
	store        thread.Repository
	orchestrator Orchestrator
	tools        Toolset
	systemPrompt string
	historyLimit int
	now          func() time.Time
	log          zerolog.Logger
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithHistoryLimit caps how many prior messages are replayed to the model.
func WithHistoryLimit(limit int) CoordinatorOption {
	return func(c *Coordinator) {
		if limit > 0 {
			c.historyLimit = limit
		}
	}
}

// WithNow overrides the clock used for step timestamps.
func WithNow(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator wires a coordinator. The system prompt is rendered once
// from the toolset.
func NewCoordinator(store thread.Repository, orchestrator Orchestrator, tools Toolset, log zerolog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:        store,
		orchestrator: orchestrator,
		tools:        tools,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		log:          log.With().Str("component", "run-coordinator").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.systemPrompt = SystemPrompt(tools.ListTools())
	return c
}

// Tools lists what the orchestrator may call.
func (c *Coordinator) Tools() []tool.Spec {
	return c.tools.ListTools()
}

// PreparedRun is a run whose user message and run record are persisted.
type PreparedRun struct {
	Principal   domain.Principal
	Thread      *thread.Thread
	UserMessage *thread.Message
	Run         *thread.Run
}

// Prepare checks access, stores the user message and opens a running run.
// Errors returned here happen before anything is streamed.
func (c *Coordinator) Prepare(ctx context.Context, principal domain.Principal, threadID, content string) (*PreparedRun, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is required", nil, "run-content-required")
	}
	if len(content) > maxContentLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is too long", nil, "run-content-too-long")
	}

	t, err := c.store.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !t.OwnedBy(principal.ID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "thread not found", thread.ErrNotFound, "thread-not-found")
	}

	msg, err := c.store.AppendMessage(ctx, t.ID, thread.RoleUser, content, nil)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "store user message")
	}
	run, err := c.store.CreateRun(ctx, t.ID)
	if err != nil {
		c.log.Error().Err(err).Str("thread_id", t.ID).Str("message_id", msg.ID).Msg("user message stored without a run")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create run")
	}

	return &PreparedRun{Principal: principal, Thread: t, UserMessage: msg, Run: run}, nil
}

// Execute drives the orchestrator for a prepared run and relays its events
// to out. It always leaves the run terminal and returns its final state.
// Exactly one done or error event ends the stream unless the caller went
// away, in which case the run is cancelled and nothing more is emitted.
func (c *Coordinator) Execute(ctx context.Context, prepared *PreparedRun, out Emitter) *thread.Run {
	ctx = domain.WithPrincipal(ctx, prepared.Principal)
	log := c.log.With().Str("thread_id", prepared.Thread.ID).Str("run_id", prepared.Run.ID).Logger()
	log.Info().Msg("run started")

	history, err := c.history(ctx, prepared)
	if err != nil {
		return c.fail(ctx, prepared, out, err, log)
	}

	stream, err := c.orchestrator.Stream(ctx, c.systemPrompt, history, c.tools)
	if err != nil {
		return c.fail(ctx, prepared, out, err, log)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("close orchestrator stream")
		}
	}()

	acc := &accumulator{now: c.now}
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.fail(ctx, prepared, out, err, log)
		}
		if err := acc.relay(ev, out); err != nil {
			if errors.Is(err, ErrUnencodable) {
				return c.fail(ctx, prepared, out, err, log)
			}
			return c.cancel(ctx, prepared, err, log)
		}
	}
	if ctx.Err() != nil {
		return c.cancel(ctx, prepared, ctx.Err(), log)
	}

	content := acc.content.String()
	runMeta := acc.metadata()
	msgMeta := acc.metadata()
	msgMeta["run_id"] = prepared.Run.ID

	final, msg, err := c.store.CompleteRun(ctx, thread.Completion{
		RunID:           prepared.Run.ID,
		ThreadID:        prepared.Thread.ID,
		Content:         content,
		MessageMetadata: msgMeta,
		RunMetadata:     runMeta,
		CompletedAt:     c.now().UTC(),
	})
	if errors.Is(err, thread.ErrInvalidState) {
		return c.superseded(ctx, prepared, out, log)
	}
	if err != nil {
		return c.fail(ctx, prepared, out, err, log)
	}

	if err := out.Emit(StreamDone, DonePayload{MessageID: msg.ID, RunID: final.ID, Content: content}); err != nil {
		log.Debug().Err(err).Msg("client left before done")
	}
	log.Info().
		Int("tool_calls", len(acc.toolCalls)).
		Int("reasoning_steps", len(acc.reasoning)).
		Msg("run completed")
	return final
}

func (c *Coordinator) history(ctx context.Context, prepared *PreparedRun) ([]Turn, error) {
	recent, err := c.store.LoadRecentHistory(ctx, prepared.Thread.ID, c.historyLimit+1)
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(recent)+1)
	for _, m := range recent {
		if m.ID == prepared.UserMessage.ID {
			continue
		}
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	if len(turns) > c.historyLimit {
		turns = turns[len(turns)-c.historyLimit:]
	}
	return append(turns, Turn{Role: thread.RoleUser, Content: prepared.UserMessage.Content}), nil
}

func (c *Coordinator) fail(ctx context.Context, prepared *PreparedRun, out Emitter, cause error, log zerolog.Logger) *thread.Run {
	if ctx.Err() != nil {
		return c.cancel(ctx, prepared, cause, log)
	}
	log.Error().Err(cause).Msg("run failed")

	final := c.finalize(ctx, prepared, status.StatusFailed, map[string]any{"error": cause.Error()}, log)
	if err := out.Emit(StreamError, ErrorPayload{Message: cause.Error()}); err != nil {
		log.Debug().Err(err).Msg("client left before error")
	}
	return final
}

// superseded ends a stream whose run was finalized elsewhere, usually by the
// reaper. The stored state wins and nothing is written.
func (c *Coordinator) superseded(ctx context.Context, prepared *PreparedRun, out Emitter, log zerolog.Logger) *thread.Run {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	stored, err := c.store.GetRun(fctx, prepared.Run.ID)
	if err != nil {
		return c.fail(ctx, prepared, out, err, log)
	}
	log.Warn().Str("status", stored.Status.String()).Msg("run finalized before completion; output discarded")
	if err := out.Emit(StreamError, ErrorPayload{Message: ErrRunSuperseded.Error()}); err != nil {
		log.Debug().Err(err).Msg("client left before error")
	}
	return stored
}

func (c *Coordinator) cancel(ctx context.Context, prepared *PreparedRun, cause error, log zerolog.Logger) *thread.Run {
	reason := ErrClientGone.Error()
	if cause != nil && !errors.Is(cause, context.Canceled) {
		reason = reason + ": " + cause.Error()
	}
	log.Warn().Str("reason", reason).Msg("run cancelled")
	return c.finalize(ctx, prepared, status.StatusCancelled, map[string]any{"error": reason}, log)
}

// finalize writes the terminal state on a context that outlives the request.
func (c *Coordinator) finalize(ctx context.Context, prepared *PreparedRun, st status.Status, metadata map[string]any, log zerolog.Logger) *thread.Run {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	completedAt := c.now().UTC()
	final, err := c.store.FinalizeRun(fctx, prepared.Run.ID, st, metadata, completedAt)
	if err != nil {
		log.Error().Err(err).Str("status", st.String()).Msg("finalize run")
		run := *prepared.Run
		run.Status = st
		run.Metadata = metadata
		run.CompletedAt = &completedAt
		return &run
	}
	return final
}

type accumulator struct {
	now       func() time.Time
	content   strings.Builder
	reasoning []ReasoningStep
	toolCalls []ToolCallStep
}

func (a *accumulator) relay(ev Event, out Emitter) error {
	switch ev.Type {
	case EventToken:
		if ev.Content == "" {
			return nil
		}
		a.content.WriteString(ev.Content)
		return out.Emit(StreamToken, TokenPayload{Content: ev.Content})

	case EventToolStart:
		if kind, err := tool.ParseKind(ev.Tool); err == nil && kind.IsReasoning() {
			step := ReasoningStep{
				Type:      "reasoning",
				Title:     stringField(ev.Input, "title"),
				Detail:    stringField(ev.Input, "detail"),
				Timestamp: a.now().UTC(),
			}
			a.reasoning = append(a.reasoning, step)
			return out.Emit(StreamReasoning, step)
		}
		input := ev.Input
		if input == nil {
			input = map[string]any{}
		}
		step := ToolCallStep{
			Type:      "tool_call",
			Tool:      ev.Tool,
			Input:     input,
			Timestamp: a.now().UTC(),
		}
		a.toolCalls = append(a.toolCalls, step)
		return out.Emit(StreamToolStart, step)

	case EventToolEnd:
		for i := len(a.toolCalls) - 1; i >= 0; i-- {
			if a.toolCalls[i].Tool == ev.Tool && a.toolCalls[i].Output == nil {
				a.toolCalls[i].Output = ev.Output
				break
			}
		}
		return out.Emit(StreamToolEnd, ToolEndPayload{Tool: ev.Tool, Output: ev.Output})
	}
	return nil
}

func (a *accumulator) metadata() map[string]any {
	reasoning := make([]ReasoningStep, len(a.reasoning))
	copy(reasoning, a.reasoning)
	calls := make([]ToolCallStep, len(a.toolCalls))
	copy(calls, a.toolCalls)
	return map[string]any{
		"reasoning_steps": reasoning,
		"tool_calls":      calls,
	}
}

func stringField(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
