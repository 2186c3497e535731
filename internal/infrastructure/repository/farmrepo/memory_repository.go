package farmrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agri-api/internal/domain/farm"
)

// MemoryRepository keeps farms and everything under them in process for
// DB_DRIVER=memory and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	farms    map[string]*farm.Farm
	zones    map[string]*farm.Zone
	readings map[string][]*farm.SensorReading
	alerts   map[string]*farm.Alert
	tasks    map[string]*farm.Task
	members  map[string]*farm.TeamMember
	now      func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		farms:    make(map[string]*farm.Farm),
		zones:    make(map[string]*farm.Zone),
		readings: make(map[string][]*farm.SensorReading),
		alerts:   make(map[string]*farm.Alert),
		tasks:    make(map[string]*farm.Task),
		members:  make(map[string]*farm.TeamMember),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ farm.Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateFarm(_ context.Context, f *farm.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = r.now()
	f.UpdatedAt = f.CreatedAt
	cp := *f
	r.farms[f.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetFarm(ctx context.Context, id string) (*farm.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.farms[id]
	if !ok {
		return nil, notFound(ctx, "farm not found", "farm-not-found")
	}
	cp := *f
	return &cp, nil
}

func (r *MemoryRepository) ListFarms(_ context.Context, ownerID string) ([]*farm.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*farm.Farm, 0)
	for _, f := range r.farms {
		if f.OwnerID == ownerID && f.IsActive {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) UpdateFarm(ctx context.Context, f *farm.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.farms[f.ID]
	if !ok {
		return notFound(ctx, "farm not found", "farm-not-found")
	}
	f.UpdatedAt = r.now()
	f.CreatedAt = stored.CreatedAt
	f.OwnerID = stored.OwnerID
	cp := *f
	r.farms[f.ID] = &cp
	return nil
}

func (r *MemoryRepository) CreateZone(_ context.Context, z *farm.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	z.CreatedAt = r.now()
	z.UpdatedAt = z.CreatedAt
	cp := *z
	r.zones[z.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetZone(ctx context.Context, id string) (*farm.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[id]
	if !ok {
		return nil, notFound(ctx, "zone not found", "zone-not-found")
	}
	cp := *z
	return &cp, nil
}

func (r *MemoryRepository) ListZones(_ context.Context, farmID string) ([]*farm.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*farm.Zone, 0)
	for _, z := range r.zones {
		if z.FarmID == farmID && z.IsActive {
			cp := *z
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) CreateReading(_ context.Context, reading *farm.SensorReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	reading.CreatedAt = r.now()
	cp := *reading
	r.readings[reading.ZoneID] = append(r.readings[reading.ZoneID], &cp)
	return nil
}

func (r *MemoryRepository) ListReadings(_ context.Context, zoneID string, limit int) ([]*farm.SensorReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sorted := r.newestFirst(zoneID)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (r *MemoryRepository) LatestReading(ctx context.Context, zoneID string) (*farm.SensorReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sorted := r.newestFirst(zoneID)
	if len(sorted) == 0 {
		return nil, notFound(ctx, "no sensor readings found for this zone", "reading-not-found")
	}
	return sorted[0], nil
}

func (r *MemoryRepository) newestFirst(zoneID string) []*farm.SensorReading {
	src := r.readings[zoneID]
	out := make([]*farm.SensorReading, 0, len(src))
	for _, reading := range src {
		cp := *reading
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReadingTimestamp.After(out[j].ReadingTimestamp) })
	return out
}

func (r *MemoryRepository) CreateAlert(_ context.Context, a *farm.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = r.now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetAlert(ctx context.Context, id string) (*farm.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, notFound(ctx, "alert not found", "alert-not-found")
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ListAlerts(_ context.Context, filter farm.AlertFilter) ([]*farm.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	zones := make(map[string]struct{}, len(filter.ZoneIDs))
	for _, id := range filter.ZoneIDs {
		zones[id] = struct{}{}
	}
	out := make([]*farm.Alert, 0)
	for _, a := range r.alerts {
		if _, ok := zones[a.ZoneID]; !ok {
			continue
		}
		if filter.Resolved != nil && a.IsResolved != *filter.Resolved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateAlert(ctx context.Context, a *farm.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.alerts[a.ID]
	if !ok {
		return notFound(ctx, "alert not found", "alert-not-found")
	}
	a.UpdatedAt = r.now()
	a.CreatedAt = stored.CreatedAt
	a.ZoneID = stored.ZoneID
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) DeleteAlert(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return notFound(ctx, "alert not found", "alert-not-found")
	}
	delete(r.alerts, id)
	return nil
}

func (r *MemoryRepository) CreateTask(_ context.Context, t *farm.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetTask(ctx context.Context, id string) (*farm.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, notFound(ctx, "task not found", "task-not-found")
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryRepository) ListTasks(_ context.Context, filter farm.TaskFilter) ([]*farm.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*farm.Task, 0)
	for _, t := range r.tasks {
		switch {
		case filter.FarmID != "" && t.FarmID != filter.FarmID,
			filter.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != filter.AssignedTo),
			filter.Status != "" && t.Status != filter.Status,
			filter.Priority != "" && t.Priority != filter.Priority:
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) UpdateTask(ctx context.Context, t *farm.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[t.ID]
	if !ok {
		return notFound(ctx, "task not found", "task-not-found")
	}
	t.UpdatedAt = r.now()
	t.CreatedAt = stored.CreatedAt
	t.FarmID = stored.FarmID
	t.CreatedBy = stored.CreatedBy
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *MemoryRepository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return notFound(ctx, "task not found", "task-not-found")
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) CreateMember(_ context.Context, m *farm.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = r.now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetMember(ctx context.Context, id string) (*farm.TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return nil, notFound(ctx, "team member not found", "member-not-found")
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryRepository) ListMembers(_ context.Context, farmID string, status farm.MemberStatus) ([]*farm.TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*farm.TeamMember, 0)
	for _, m := range r.members {
		if m.FarmID != farmID || !m.IsActive || (status != "" && m.Status != status) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) UpdateMember(ctx context.Context, m *farm.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.members[m.ID]
	if !ok {
		return notFound(ctx, "team member not found", "member-not-found")
	}
	m.UpdatedAt = r.now()
	m.CreatedAt = stored.CreatedAt
	m.FarmID = stored.FarmID
	cp := *m
	r.members[m.ID] = &cp
	return nil
}
