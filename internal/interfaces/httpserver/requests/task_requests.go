package requests

import (
	"time"

	"agri-api/internal/domain/farm"
)

// CreateTaskRequest adds a task to a farm.
type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description *string           `json:"description,omitempty"`
	Priority    farm.TaskPriority `json:"priority,omitempty" enums:"high,medium,low"`
	Status      farm.TaskStatus   `json:"status,omitempty" enums:"pending,in-progress,completed,cancelled"`
	ZoneID      *string           `json:"zone_id,omitempty"`
	AssignedTo  *string           `json:"assigned_to,omitempty"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

func (r CreateTaskRequest) Params() farm.TaskParams {
	return farm.TaskParams{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		ZoneID:      r.ZoneID,
		AssignedTo:  r.AssignedTo,
		DueDate:     r.DueDate,
		Metadata:    r.Metadata,
	}
}

// UpdateTaskRequest is a partial task update. An empty zone_id or
// assigned_to unlinks it.
type UpdateTaskRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Priority    *farm.TaskPriority `json:"priority,omitempty"`
	Status      *farm.TaskStatus   `json:"status,omitempty"`
	ZoneID      *string            `json:"zone_id,omitempty"`
	AssignedTo  *string            `json:"assigned_to,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

func (r UpdateTaskRequest) Params() farm.TaskUpdate {
	return farm.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		ZoneID:      r.ZoneID,
		AssignedTo:  r.AssignedTo,
		DueDate:     r.DueDate,
		CompletedAt: r.CompletedAt,
		Metadata:    r.Metadata,
	}
}
