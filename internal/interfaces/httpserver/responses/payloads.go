package responses

import (
	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/domain/tool"
)

// ListResponse wraps collections returned by list endpoints.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// NewList builds a list envelope that never serializes data as null.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Total: len(items)}
}

// ThreadList is the body of GET /threads.
type ThreadList = ListResponse[*thread.Thread]

// MessageList is the body of GET /agent/threads/{thread_id}/messages.
type MessageList = ListResponse[*thread.Message]

// ToolList is the body of GET /agent/tools.
type ToolList = ListResponse[tool.Spec]

// FarmList is the body of GET /farms.
type FarmList = ListResponse[*farm.Farm]

// ZoneList is the body of GET /farms/{farm_id}/zones.
type ZoneList = ListResponse[*farm.Zone]

// ReadingList is the body of GET /zones/{zone_id}/sensors.
type ReadingList = ListResponse[*farm.SensorReading]

// TaskList is the body of GET /farms/{farm_id}/tasks and GET /team/{member_id}/tasks.
type TaskList = ListResponse[*farm.Task]

// TeamList is the body of GET /farms/{farm_id}/team.
type TeamList = ListResponse[*farm.TeamMember]

// AlertList is the body of GET /zones/{zone_id}/alerts and GET /farms/{farm_id}/alerts.
type AlertList = ListResponse[*farm.Alert]

// Profile is the body of GET /me: the verified identity plus usage counts.
type Profile struct {
	ID          string `json:"id"`
	Subject     string `json:"subject,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	AuthMethod  string `json:"auth_method"`
	ThreadCount int    `json:"thread_count"`
	FarmCount   int    `json:"farm_count"`
}
