package thread

import (
	"time"

	"agri-api/internal/domain/status"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Thread is a conversation scope owned by exactly one user.
type Thread struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	FarmID        *string        `json:"farm_id"`
	Title         *string        `json:"title"`
	IsPinned      bool           `json:"is_pinned"`
	Metadata      map[string]any `json:"metadata"`
	LastMessageAt *time.Time     `json:"last_message_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	MessageCount  int64          `json:"message_count"`
}

// OwnedBy reports whether the thread belongs to userID.
func (t *Thread) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// Message is one immutable turn in a thread.
type Message struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	Position  int64          `json:"position"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Run is one execution of the orchestrator for an inbound user message.
type Run struct {
	ID          string         `json:"id"`
	ThreadID    string         `json:"thread_id"`
	Status      status.Status  `json:"status"`
	Metadata    map[string]any `json:"metadata"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CreateParams describes a new thread.
type CreateParams struct {
	UserID   string
	Title    *string
	FarmID   *string
	Metadata map[string]any
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Title    *string
	IsPinned *bool
	FarmID   *string
	Metadata map[string]any
}
