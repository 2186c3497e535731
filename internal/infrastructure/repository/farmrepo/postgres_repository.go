package farmrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agri-api/internal/domain/farm"
	"agri-api/internal/infrastructure/database/entities"
	"agri-api/internal/utils/platformerrors"
)

// PostgresRepository persists farms, zones, sensor readings, alerts, tasks
// and teams.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ farm.Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) CreateFarm(ctx context.Context, f *farm.Farm) error {
	entity := entities.NewSchemaFarm(f)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create farm", err, "farm-create-error")
	}
	*f = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) GetFarm(ctx context.Context, id string) (*farm.Farm, error) {
	var entity entities.Farm
	if err := r.first(ctx, &entity, id); err != nil {
		return nil, r.lookupError(ctx, err, "farm not found", "farm-not-found", "farm-get-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListFarms(ctx context.Context, ownerID string) ([]*farm.Farm, error) {
	var rows []entities.Farm
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list farms", err, "farm-list-error")
	}
	out := make([]*farm.Farm, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) UpdateFarm(ctx context.Context, f *farm.Farm) error {
	entity := entities.NewSchemaFarm(f)
	entity.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&entities.Farm{}).
		Where("id = ?", f.ID).
		Select("name", "location", "latitude", "longitude", "size_hectares", "soil_type",
			"irrigation_type", "crops", "metadata", "is_active", "updated_at").
		Updates(entity)
	if res.Error != nil {
		return dbError(ctx, "failed to update farm", res.Error, "farm-update-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "farm not found", "farm-not-found")
	}
	f.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *PostgresRepository) CreateZone(ctx context.Context, z *farm.Zone) error {
	entity := entities.NewSchemaZone(z)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create zone", err, "zone-create-error")
	}
	*z = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) GetZone(ctx context.Context, id string) (*farm.Zone, error) {
	var entity entities.Zone
	if err := r.first(ctx, &entity, id); err != nil {
		return nil, r.lookupError(ctx, err, "zone not found", "zone-not-found", "zone-get-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListZones(ctx context.Context, farmID string) ([]*farm.Zone, error) {
	var rows []entities.Zone
	if err := r.db.WithContext(ctx).
		Where("farm_id = ? AND is_active = ?", farmID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list zones", err, "zone-list-error")
	}
	out := make([]*farm.Zone, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) CreateReading(ctx context.Context, reading *farm.SensorReading) error {
	entity := entities.NewSchemaSensorReading(reading)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to record reading", err, "reading-create-error")
	}
	*reading = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) ListReadings(ctx context.Context, zoneID string, limit int) ([]*farm.SensorReading, error) {
	var rows []entities.SensorReading
	if err := r.db.WithContext(ctx).
		Where("zone_id = ?", zoneID).
		Order("reading_timestamp DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list readings", err, "reading-list-error")
	}
	out := make([]*farm.SensorReading, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) LatestReading(ctx context.Context, zoneID string) (*farm.SensorReading, error) {
	var entity entities.SensorReading
	err := r.db.WithContext(ctx).
		Where("zone_id = ?", zoneID).
		Order("reading_timestamp DESC").
		First(&entity).Error
	if err != nil {
		return nil, r.lookupError(ctx, err, "no sensor readings found for this zone", "reading-not-found", "reading-latest-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) CreateAlert(ctx context.Context, a *farm.Alert) error {
	entity := entities.NewSchemaZoneAlert(a)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create alert", err, "alert-create-error")
	}
	*a = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) GetAlert(ctx context.Context, id string) (*farm.Alert, error) {
	var entity entities.ZoneAlert
	if err := r.first(ctx, &entity, id); err != nil {
		return nil, r.lookupError(ctx, err, "alert not found", "alert-not-found", "alert-get-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListAlerts(ctx context.Context, filter farm.AlertFilter) ([]*farm.Alert, error) {
	if len(filter.ZoneIDs) == 0 {
		return []*farm.Alert{}, nil
	}
	query := r.db.WithContext(ctx).Where("zone_id IN ?", filter.ZoneIDs)
	if filter.Resolved != nil {
		query = query.Where("is_resolved = ?", *filter.Resolved)
	}

	var rows []entities.ZoneAlert
	if err := query.Order("priority ASC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list alerts", err, "alert-list-error")
	}
	out := make([]*farm.Alert, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) UpdateAlert(ctx context.Context, a *farm.Alert) error {
	entity := entities.NewSchemaZoneAlert(a)
	entity.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&entities.ZoneAlert{}).
		Where("id = ?", a.ID).
		Select("alert_type", "message", "priority", "is_resolved", "resolved_at", "resolved_by",
			"metadata", "updated_at").
		Updates(entity)
	if res.Error != nil {
		return dbError(ctx, "failed to update alert", res.Error, "alert-update-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "alert not found", "alert-not-found")
	}
	a.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *PostgresRepository) DeleteAlert(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(ctx, "alert not found", "alert-not-found")
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.ZoneAlert{})
	if res.Error != nil {
		return dbError(ctx, "failed to delete alert", res.Error, "alert-delete-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "alert not found", "alert-not-found")
	}
	return nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, t *farm.Task) error {
	entity := entities.NewSchemaTask(t)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create task", err, "task-create-error")
	}
	*t = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, id string) (*farm.Task, error) {
	var entity entities.Task
	if err := r.first(ctx, &entity, id); err != nil {
		return nil, r.lookupError(ctx, err, "task not found", "task-not-found", "task-get-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, filter farm.TaskFilter) ([]*farm.Task, error) {
	query := r.db.WithContext(ctx).Model(&entities.Task{})
	if filter.FarmID != "" {
		query = query.Where("farm_id = ?", filter.FarmID)
	}
	if filter.AssignedTo != "" {
		if _, err := uuid.Parse(filter.AssignedTo); err != nil {
			return []*farm.Task{}, nil
		}
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}

	var rows []entities.Task
	if err := query.Order("due_date ASC NULLS LAST").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list tasks", err, "task-list-error")
	}
	out := make([]*farm.Task, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, t *farm.Task) error {
	entity := entities.NewSchemaTask(t)
	entity.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", t.ID).
		Select("zone_id", "assigned_to", "title", "description", "priority", "status",
			"due_date", "completed_at", "metadata", "updated_at").
		Updates(entity)
	if res.Error != nil {
		return dbError(ctx, "failed to update task", res.Error, "task-update-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "task not found", "task-not-found")
	}
	t.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(ctx, "task not found", "task-not-found")
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Task{})
	if res.Error != nil {
		return dbError(ctx, "failed to delete task", res.Error, "task-delete-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "task not found", "task-not-found")
	}
	return nil
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m *farm.TeamMember) error {
	entity := entities.NewSchemaTeamMember(m)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create team member", err, "member-create-error")
	}
	*m = *entity.EtoD()
	return nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, id string) (*farm.TeamMember, error) {
	var entity entities.TeamMember
	if err := r.first(ctx, &entity, id); err != nil {
		return nil, r.lookupError(ctx, err, "team member not found", "member-not-found", "member-get-error")
	}
	return entity.EtoD(), nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, farmID string, status farm.MemberStatus) ([]*farm.TeamMember, error) {
	query := r.db.WithContext(ctx).Where("farm_id = ? AND is_active = ?", farmID, true)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []entities.TeamMember
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list team members", err, "member-list-error")
	}
	out := make([]*farm.TeamMember, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, m *farm.TeamMember) error {
	entity := entities.NewSchemaTeamMember(m)
	entity.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&entities.TeamMember{}).
		Where("id = ?", m.ID).
		Select("name", "role", "status", "current_zone_id", "phone", "email",
			"hired_date", "metadata", "is_active", "updated_at").
		Updates(entity)
	if res.Error != nil {
		return dbError(ctx, "failed to update team member", res.Error, "member-update-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "team member not found", "member-not-found")
	}
	m.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *PostgresRepository) first(ctx context.Context, dest any, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return gorm.ErrRecordNotFound
	}
	return r.db.WithContext(ctx).Where("id = ?", id).First(dest).Error
}

func (r *PostgresRepository) lookupError(ctx context.Context, err error, message, notFoundCode, dbCode string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(ctx, message, notFoundCode)
	}
	return dbError(ctx, "database lookup failed", err, dbCode)
}

func notFound(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, farm.ErrNotFound, code)
}

func dbError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}
