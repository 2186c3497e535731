package thread

import (
	"context"
	"errors"
	"time"

	"agri-api/internal/domain/status"
)

var (
	// ErrNotFound is returned when a thread or run does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when a run is already terminal.
	ErrInvalidState = errors.New("invalid run state")
)

// ThreadRepository persists thread records.
type ThreadRepository interface {
	CreateThread(ctx context.Context, t *Thread) error
	GetThread(ctx context.Context, id string) (*Thread, error)
	ListThreads(ctx context.Context, userID string) ([]*Thread, error)
	UpdateThread(ctx context.Context, t *Thread) error
	// DeleteThread removes the thread together with its messages and runs.
	DeleteThread(ctx context.Context, id string) error
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	// AppendMessage assigns the next position atomically and bumps the
	// thread's last_message_at in the same transaction.
	AppendMessage(ctx context.Context, threadID string, role Role, content string, metadata map[string]any) (*Message, error)
	// ListMessages returns the first limit messages ordered by position ascending.
	ListMessages(ctx context.Context, threadID string, limit int) ([]*Message, error)
	// LoadRecentHistory returns the last limit messages, oldest first.
	LoadRecentHistory(ctx context.Context, threadID string, limit int) ([]*Message, error)
	CountMessages(ctx context.Context, threadID string) (int64, error)
}

// RunRepository tracks run lifecycle.
type RunRepository interface {
	// CreateRun inserts a run in the running state.
	CreateRun(ctx context.Context, threadID string) (*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	// FinalizeRun performs the single terminal transition of a run.
	FinalizeRun(ctx context.Context, runID string, st status.Status, metadata map[string]any, completedAt time.Time) (*Run, error)
	// FailStaleRuns marks running runs started before cutoff as failed.
	FailStaleRuns(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

// Completion is what a cleanly finished run persists.
type Completion struct {
	RunID           string
	ThreadID        string
	Content         string
	MessageMetadata map[string]any
	RunMetadata     map[string]any
	CompletedAt     time.Time
}

// Repository groups everything the conversation store offers.
type Repository interface {
	ThreadRepository
	MessageRepository
	RunRepository
	// CompleteRun moves the run to completed and appends the assistant
	// message in one transaction. When the run is already terminal nothing
	// is written and ErrInvalidState is returned.
	CompleteRun(ctx context.Context, c Completion) (*Run, *Message, error)
}
