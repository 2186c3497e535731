package agent

import (
	"context"
	"encoding/json"
	"errors"

	"agri-api/internal/domain/tool"
)

// Toolset is what an orchestrator may call on behalf of the model.
type Toolset interface {
	ListTools() []tool.Spec
	Invoke(ctx context.Context, name string, args json.RawMessage) (tool.Result, error)
}

// EventStream yields orchestrator events in order. Recv returns io.EOF once
// the model has finished with no tool calls pending; any other error ends
// the stream as a failure.
type EventStream interface {
	Recv() (Event, error)
	Close() error
}

// Orchestrator runs the model loop. history ends with the current user turn.
type Orchestrator interface {
	Stream(ctx context.Context, systemPrompt string, history []Turn, tools Toolset) (EventStream, error)
}

// ErrUnencodable marks an Emit error caused by a payload that cannot be
// serialized. The caller is still connected.
var ErrUnencodable = errors.New("event payload cannot be encoded")

// Emitter delivers named events to the caller. An error wrapping
// ErrUnencodable rejects only that payload; any other error means the caller
// is gone and nothing more can be delivered.
type Emitter interface {
	Emit(event string, payload any) error
}
