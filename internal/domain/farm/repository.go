package farm

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a farm, zone, reading, alert, task or team
// member does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists farms and everything that hangs off them.
type Repository interface {
	CreateFarm(ctx context.Context, f *Farm) error
	GetFarm(ctx context.Context, id string) (*Farm, error)
	// ListFarms returns the owner's active farms, newest first.
	ListFarms(ctx context.Context, ownerID string) ([]*Farm, error)
	UpdateFarm(ctx context.Context, f *Farm) error

	CreateZone(ctx context.Context, z *Zone) error
	GetZone(ctx context.Context, id string) (*Zone, error)
	ListZones(ctx context.Context, farmID string) ([]*Zone, error)

	CreateReading(ctx context.Context, r *SensorReading) error
	// ListReadings returns the newest readings first.
	ListReadings(ctx context.Context, zoneID string, limit int) ([]*SensorReading, error)
	// LatestReading returns ErrNotFound when the zone has no readings.
	LatestReading(ctx context.Context, zoneID string) (*SensorReading, error)

	CreateAlert(ctx context.Context, a *Alert) error
	GetAlert(ctx context.Context, id string) (*Alert, error)
	// ListAlerts orders by priority, most urgent first, then newest first.
	ListAlerts(ctx context.Context, filter AlertFilter) ([]*Alert, error)
	UpdateAlert(ctx context.Context, a *Alert) error
	DeleteAlert(ctx context.Context, id string) error

	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	// ListTasks orders by due date, undated last, then newest first.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, id string) error

	CreateMember(ctx context.Context, m *TeamMember) error
	GetMember(ctx context.Context, id string) (*TeamMember, error)
	// ListMembers returns a farm's active members by name. An empty status
	// matches all.
	ListMembers(ctx context.Context, farmID string, status MemberStatus) ([]*TeamMember, error)
	UpdateMember(ctx context.Context, m *TeamMember) error
}
