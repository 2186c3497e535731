package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"agri-api/internal/domain/agent"
	"agri-api/internal/infrastructure/metrics"
)

// sseEmitter writes named events as text/event-stream frames. Once a write
// fails every later Emit returns the same error. A payload that cannot be
// encoded is rejected on its own and leaves the stream usable.
type sseEmitter struct {
	mu      sync.Mutex
	ctx     context.Context
	w       io.Writer
	flusher http.Flusher
	err     error
}

func newSSEEmitter(ctx context.Context, w io.Writer, flusher http.Flusher) *sseEmitter {
	return &sseEmitter{ctx: ctx, w: w, flusher: flusher}
}

func (e *sseEmitter) Emit(event string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return e.err
	}
	if err := e.ctx.Err(); err != nil {
		e.err = err
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s event: %v", agent.ErrUnencodable, event, err)
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		e.err = err
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	metrics.RecordStreamEvent(event)
	return nil
}
