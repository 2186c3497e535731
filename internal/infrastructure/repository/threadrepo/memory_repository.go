package threadrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
)

// MemoryRepository keeps the conversation store in process. It backs
// DB_DRIVER=memory and the tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	threads  map[string]*memThread
	messages map[string][]*thread.Message
	runs     map[string]*thread.Run
	now      func() time.Time
}

type memThread struct {
	thread.Thread
	seq int64
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		threads:  make(map[string]*memThread),
		messages: make(map[string][]*thread.Message),
		runs:     make(map[string]*thread.Run),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ thread.Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateThread(_ context.Context, t *thread.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Metadata = normalize(t.Metadata)
	r.threads[t.ID] = &memThread{Thread: *t}
	return nil
}

func (r *MemoryRepository) GetThread(ctx context.Context, id string) (*thread.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.threads[id]
	if !ok {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	out := t.Thread
	return &out, nil
}

func (r *MemoryRepository) ListThreads(_ context.Context, userID string) ([]*thread.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*thread.Thread, 0)
	for _, t := range r.threads {
		if t.UserID != userID {
			continue
		}
		cp := t.Thread
		cp.MessageCount = t.seq
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt == nil:
			return true
		case a.LastMessageAt == nil && b.LastMessageAt != nil:
			return false
		case a.LastMessageAt != nil && !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateThread(ctx context.Context, t *thread.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.threads[t.ID]
	if !ok {
		return notFound(ctx, "thread not found", "thread-not-found")
	}
	stored.Title = t.Title
	stored.IsPinned = t.IsPinned
	stored.FarmID = t.FarmID
	stored.Metadata = normalize(t.Metadata)
	stored.UpdatedAt = r.now()
	t.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) DeleteThread(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[id]; !ok {
		return notFound(ctx, "thread not found", "thread-not-found")
	}
	delete(r.threads, id)
	delete(r.messages, id)
	for runID, run := range r.runs {
		if run.ThreadID == id {
			delete(r.runs, runID)
		}
	}
	return nil
}

func (r *MemoryRepository) AppendMessage(ctx context.Context, threadID string, role thread.Role, content string, metadata map[string]any) (*thread.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[threadID]; !ok {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	return r.appendLocked(threadID, role, content, metadata), nil
}

// appendLocked requires r.mu held and the thread present.
func (r *MemoryRepository) appendLocked(threadID string, role thread.Role, content string, metadata map[string]any) *thread.Message {
	t := r.threads[threadID]
	now := r.now()
	t.seq++
	t.LastMessageAt = &now

	msg := &thread.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Position:  t.seq,
		Role:      role,
		Content:   content,
		Metadata:  normalize(metadata),
		CreatedAt: now,
	}
	r.messages[threadID] = append(r.messages[threadID], msg)
	out := *msg
	return &out
}

func (r *MemoryRepository) ListMessages(_ context.Context, threadID string, limit int) ([]*thread.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.messages[threadID]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return copyMessages(all), nil
}

func (r *MemoryRepository) LoadRecentHistory(_ context.Context, threadID string, limit int) ([]*thread.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.messages[threadID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return copyMessages(all), nil
}

func (r *MemoryRepository) CountMessages(_ context.Context, threadID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages[threadID])), nil
}

func (r *MemoryRepository) CreateRun(ctx context.Context, threadID string) (*thread.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[threadID]; !ok {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	now := r.now()
	run := &thread.Run{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Status:    status.StatusRunning,
		Metadata:  map[string]any{},
		StartedAt: now,
		CreatedAt: now,
	}
	r.runs[run.ID] = run
	out := *run
	return &out, nil
}

func (r *MemoryRepository) GetRun(ctx context.Context, id string) (*thread.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, notFound(ctx, "run not found", "run-not-found")
	}
	out := *run
	return &out, nil
}

func (r *MemoryRepository) FinalizeRun(ctx context.Context, runID string, st status.Status, metadata map[string]any, completedAt time.Time) (*thread.Run, error) {
	if !st.IsTerminal() {
		return nil, invalidState(ctx, "run can only be finalized with a terminal status")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runID]
	if !ok {
		return nil, notFound(ctx, "run not found", "run-not-found")
	}
	return r.finalizeLocked(ctx, run, st, metadata, completedAt)
}

// CompleteRun holds the write lock across the status change and the append,
// so a reaped or already finalized run never gains an assistant message.
func (r *MemoryRepository) CompleteRun(ctx context.Context, c thread.Completion) (*thread.Run, *thread.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[c.RunID]
	if !ok || run.ThreadID != c.ThreadID {
		return nil, nil, notFound(ctx, "run not found", "run-not-found")
	}
	if _, ok := r.threads[c.ThreadID]; !ok {
		return nil, nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	final, err := r.finalizeLocked(ctx, run, status.StatusCompleted, c.RunMetadata, c.CompletedAt)
	if err != nil {
		return nil, nil, err
	}
	return final, r.appendLocked(c.ThreadID, thread.RoleAssistant, c.Content, c.MessageMetadata), nil
}

func (r *MemoryRepository) finalizeLocked(ctx context.Context, run *thread.Run, st status.Status, metadata map[string]any, completedAt time.Time) (*thread.Run, error) {
	if run.Status.IsTerminal() {
		return nil, invalidState(ctx, "run is already finalized")
	}
	moved, err := run.Status.TransitionTo(st)
	if err != nil {
		return nil, invalidState(ctx, fmt.Sprintf("run cannot move from %s to %s", run.Status, st))
	}
	run.Status = moved
	run.Metadata = normalize(metadata)
	run.CompletedAt = &completedAt
	out := *run
	return &out, nil
}

func (r *MemoryRepository) FailStaleRuns(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := r.now()
	for _, run := range r.runs {
		if run.Status.IsActive() && run.StartedAt.Before(cutoff) {
			run.Status = status.StatusFailed
			run.Metadata = map[string]any{"error": reason}
			completed := now
			run.CompletedAt = &completed
			n++
		}
	}
	return n, nil
}

func copyMessages(in []*thread.Message) []*thread.Message {
	out := make([]*thread.Message, 0, len(in))
	for _, m := range in {
		cp := *m
		out = append(out, &cp)
	}
	return out
}

// normalize stores metadata the way a jsonb column returns it.
func normalize(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
