// Package agent drives advisory runs: it feeds a thread's history to an
// orchestrator and relays what the orchestrator does to the caller.
package agent

import (
	"time"

	"agri-api/internal/domain/thread"
)

// EventType identifies an orchestrator event.
type EventType string

const (
	EventToken     EventType = "token"
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
)

// Event is one item of an orchestrator stream.
type Event struct {
	Type    EventType
	Content string
	Tool    string
	Input   map[string]any
	Output  any
}

// Token builds a text fragment event.
func Token(content string) Event {
	return Event{Type: EventToken, Content: content}
}

// ToolStart builds the event emitted before a tool runs.
func ToolStart(tool string, input map[string]any) Event {
	return Event{Type: EventToolStart, Tool: tool, Input: input}
}

// ToolEnd builds the event emitted after a tool returns.
func ToolEnd(tool string, output any) Event {
	return Event{Type: EventToolEnd, Tool: tool, Output: output}
}

// Turn is one message of the history handed to the orchestrator.
type Turn struct {
	Role    thread.Role
	Content string
}

// Names of the events written to the client stream.
const (
	StreamToken     = "token"
	StreamReasoning = "reasoning"
	StreamToolStart = "tool_start"
	StreamToolEnd   = "tool_end"
	StreamDone      = "done"
	StreamError     = "error"
)

// TokenPayload carries a text fragment.
type TokenPayload struct {
	Content string `json:"content"`
}

// ReasoningStep is a planning step announced by the model.
type ReasoningStep struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCallStep records one tool invocation. Output is filled in when the
// matching tool_end arrives.
type ToolCallStep struct {
	Type      string         `json:"type"`
	Tool      string         `json:"tool"`
	Input     map[string]any `json:"input"`
	Output    any            `json:"output,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ToolEndPayload carries a tool result.
type ToolEndPayload struct {
	Tool   string `json:"tool"`
	Output any    `json:"output"`
}

// DonePayload closes a successful run.
type DonePayload struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id"`
	Content   string `json:"content"`
}

// ErrorPayload closes a failed run.
type ErrorPayload struct {
	Message string `json:"message"`
}
