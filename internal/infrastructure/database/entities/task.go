package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agri-api/internal/domain/farm"
)

// Task is a unit of farm work. Tasks are deleted outright.
type Task struct {
	ID          string            `gorm:"type:uuid;primaryKey"`
	FarmID      string            `gorm:"type:uuid;not null;index:idx_task_farm_due,priority:1"`
	ZoneID      *string           `gorm:"type:uuid"`
	AssignedTo  *string           `gorm:"type:uuid;index"`
	Title       string            `gorm:"type:varchar(255);not null"`
	Description *string           `gorm:"type:text"`
	Priority    string            `gorm:"type:varchar(20);not null;default:'medium'"`
	Status      string            `gorm:"type:varchar(50);not null;default:'pending'"`
	DueDate     *time.Time        `gorm:"index:idx_task_farm_due,priority:2"`
	CompletedAt *time.Time
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedBy   string            `gorm:"type:varchar(128)"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Task.
func (Task) TableName() string {
	return "farm_tasks"
}

// BeforeCreate assigns the public id.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TeamMember is a farm worker. Removal clears IsActive.
type TeamMember struct {
	ID            string            `gorm:"type:uuid;primaryKey"`
	FarmID        string            `gorm:"type:uuid;not null;index:idx_member_farm_active,priority:1"`
	UserID        *string           `gorm:"type:varchar(128)"`
	Name          string            `gorm:"type:varchar(255);not null"`
	Role          string            `gorm:"type:varchar(100);not null"`
	Status        string            `gorm:"type:varchar(50);not null;default:'active'"`
	CurrentZoneID *string           `gorm:"type:uuid"`
	Phone         *string           `gorm:"type:varchar(20)"`
	Email         *string           `gorm:"type:varchar(255)"`
	HiredDate     *time.Time        `gorm:"type:date"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	IsActive      bool              `gorm:"not null;default:true;index:idx_member_farm_active,priority:2"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for TeamMember.
func (TeamMember) TableName() string {
	return "team_members"
}

// BeforeCreate assigns the public id.
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// NewSchemaTask maps a domain task to its row.
func NewSchemaTask(t *farm.Task) *Task {
	return &Task{
		ID:          t.ID,
		FarmID:      t.FarmID,
		ZoneID:      t.ZoneID,
		AssignedTo:  t.AssignedTo,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Metadata:    datatypes.JSONMap(t.Metadata),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// EtoD converts the row to the domain task.
func (t *Task) EtoD() *farm.Task {
	return &farm.Task{
		ID:          t.ID,
		FarmID:      t.FarmID,
		ZoneID:      t.ZoneID,
		AssignedTo:  t.AssignedTo,
		Title:       t.Title,
		Description: t.Description,
		Priority:    farm.TaskPriority(t.Priority),
		Status:      farm.TaskStatus(t.Status),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Metadata:    jsonMap(t.Metadata),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewSchemaTeamMember maps a domain member to its row.
func NewSchemaTeamMember(m *farm.TeamMember) *TeamMember {
	return &TeamMember{
		ID:            m.ID,
		FarmID:        m.FarmID,
		UserID:        m.UserID,
		Name:          m.Name,
		Role:          m.Role,
		Status:        string(m.Status),
		CurrentZoneID: m.CurrentZoneID,
		Phone:         m.Phone,
		Email:         m.Email,
		HiredDate:     m.HiredDate,
		Metadata:      datatypes.JSONMap(m.Metadata),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// EtoD converts the row to the domain member.
func (m *TeamMember) EtoD() *farm.TeamMember {
	return &farm.TeamMember{
		ID:            m.ID,
		FarmID:        m.FarmID,
		UserID:        m.UserID,
		Name:          m.Name,
		Role:          m.Role,
		Status:        farm.MemberStatus(m.Status),
		CurrentZoneID: m.CurrentZoneID,
		Phone:         m.Phone,
		Email:         m.Email,
		HiredDate:     m.HiredDate,
		Metadata:      jsonMap(m.Metadata),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
