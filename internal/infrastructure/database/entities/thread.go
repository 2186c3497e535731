package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
)

// Thread is the persisted conversation. MessageSeq is the last position
// handed out and is only ever advanced with an atomic UPDATE.
type Thread struct {
	ID            string            `gorm:"type:uuid;primaryKey"`
	UserID        string            `gorm:"type:varchar(128);not null;index:idx_thread_user_activity,priority:1"`
	FarmID        *string           `gorm:"type:uuid;index"`
	Title         *string           `gorm:"type:varchar(255)"`
	IsPinned      bool              `gorm:"not null;default:false"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	MessageSeq    int64             `gorm:"not null;default:0"`
	LastMessageAt *time.Time        `gorm:"index:idx_thread_user_activity,priority:2"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Thread.
func (Thread) TableName() string {
	return "threads"
}

// BeforeCreate assigns the public id.
func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Message is one row of a thread's append-only log.
type Message struct {
	ID        string            `gorm:"type:uuid;primaryKey"`
	ThreadID  string            `gorm:"type:uuid;not null;uniqueIndex:idx_message_thread_position,priority:1"`
	Position  int64             `gorm:"not null;uniqueIndex:idx_message_thread_position,priority:2"`
	Role      string            `gorm:"type:varchar(16);not null"`
	Content   string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns the public id.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Run records one orchestrator execution.
type Run struct {
	ID          string            `gorm:"type:uuid;primaryKey"`
	ThreadID    string            `gorm:"type:uuid;not null;index"`
	Status      string            `gorm:"type:varchar(16);not null;index:idx_run_status_started,priority:1"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	StartedAt   time.Time         `gorm:"not null;index:idx_run_status_started,priority:2"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Run.
func (Run) TableName() string {
	return "runs"
}

// BeforeCreate assigns the public id.
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewSchemaThread maps a domain thread to its row.
func NewSchemaThread(t *thread.Thread) *Thread {
	return &Thread{
		ID:            t.ID,
		UserID:        t.UserID,
		FarmID:        t.FarmID,
		Title:         t.Title,
		IsPinned:      t.IsPinned,
		Metadata:      datatypes.JSONMap(t.Metadata),
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// EtoD converts the row to the domain thread.
func (t *Thread) EtoD() *thread.Thread {
	return &thread.Thread{
		ID:            t.ID,
		UserID:        t.UserID,
		FarmID:        t.FarmID,
		Title:         t.Title,
		IsPinned:      t.IsPinned,
		Metadata:      jsonMap(t.Metadata),
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// EtoD converts the row to the domain message.
func (m *Message) EtoD() *thread.Message {
	return &thread.Message{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Position:  m.Position,
		Role:      thread.Role(m.Role),
		Content:   m.Content,
		Metadata:  jsonMap(m.Metadata),
		CreatedAt: m.CreatedAt,
	}
}

// EtoD converts the row to the domain run.
func (r *Run) EtoD() *thread.Run {
	return &thread.Run{
		ID:          r.ID,
		ThreadID:    r.ThreadID,
		Status:      status.Status(r.Status),
		Metadata:    jsonMap(r.Metadata),
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func jsonMap(m datatypes.JSONMap) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return map[string]any(m)
}
