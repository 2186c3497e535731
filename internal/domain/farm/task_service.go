package farm

import (
	"context"
	"strings"

	"agri-api/internal/domain"
	"agri-api/internal/utils/platformerrors"
)

const maxTitleLength = 255

// ListTasks returns a farm's tasks, optionally narrowed by status and priority.
func (s *Service) ListTasks(ctx context.Context, principal domain.Principal, farmID string, status TaskStatus, priority TaskPriority) ([]*Task, error) {
	if err := validateTaskFilter(ctx, status, priority); err != nil {
		return nil, err
	}
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{FarmID: farmID, Status: status, Priority: priority})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list tasks")
	}
	return tasks, nil
}

// CreateTask adds a task to one of the caller's farms. Priority defaults to
// medium and status to pending.
func (s *Service) CreateTask(ctx context.Context, principal domain.Principal, farmID string, params TaskParams) (*Task, error) {
	title := strings.TrimSpace(params.Title)
	if err := validateTitle(ctx, title); err != nil {
		return nil, err
	}
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}
	if params.Status == "" {
		params.Status = TaskPending
	}
	if err := validateTaskFilter(ctx, params.Status, params.Priority); err != nil {
		return nil, err
	}
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}
	zoneID, err := s.zoneOnFarm(ctx, farmID, params.ZoneID, "task")
	if err != nil {
		return nil, err
	}
	assignee, err := s.memberOnFarm(ctx, farmID, params.AssignedTo)
	if err != nil {
		return nil, err
	}

	t := &Task{
		FarmID:      farmID,
		ZoneID:      zoneID,
		AssignedTo:  assignee,
		Title:       title,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      params.Status,
		DueDate:     utc(params.DueDate),
		Metadata:    params.Metadata,
		CreatedBy:   principal.ID,
	}
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	if t.Status == TaskCompleted {
		now := s.now().UTC()
		t.CompletedAt = &now
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create task")
	}
	s.log.Info().Str("task_id", t.ID).Str("farm_id", farmID).Msg("task created")
	return t, nil
}

// GetTask loads a task whose farm the caller owns.
func (s *Service) GetTask(ctx context.Context, principal domain.Principal, id string) (*Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, principal, t.FarmID, "task"); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask applies a partial update. Completing a task stamps
// CompletedAt unless one is supplied; leaving completed clears it.
func (s *Service) UpdateTask(ctx context.Context, principal domain.Principal, id string, params TaskUpdate) (*Task, error) {
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if err := validateTitle(ctx, title); err != nil {
			return nil, err
		}
		params.Title = &title
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, invalid(ctx, "status must be one of pending, in-progress, completed, cancelled", "task-status-invalid")
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, invalid(ctx, "priority must be one of high, medium, low", "task-priority-invalid")
	}

	t, err := s.GetTask(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if params.ZoneID != nil {
		if t.ZoneID, err = s.zoneOnFarm(ctx, t.FarmID, params.ZoneID, "task"); err != nil {
			return nil, err
		}
	}
	if params.AssignedTo != nil {
		if t.AssignedTo, err = s.memberOnFarm(ctx, t.FarmID, params.AssignedTo); err != nil {
			return nil, err
		}
	}
	if params.Title != nil {
		t.Title = *params.Title
	}
	if params.Description != nil {
		t.Description = params.Description
	}
	if params.Priority != nil {
		t.Priority = *params.Priority
	}
	if params.DueDate != nil {
		t.DueDate = utc(params.DueDate)
	}
	if params.Metadata != nil {
		t.Metadata = params.Metadata
	}
	if params.Status != nil {
		t.Status = *params.Status
	}
	switch {
	case t.Status != TaskCompleted:
		t.CompletedAt = nil
	case params.CompletedAt != nil:
		t.CompletedAt = utc(params.CompletedAt)
	case t.CompletedAt == nil:
		now := s.now().UTC()
		t.CompletedAt = &now
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update task")
	}
	return t, nil
}

// DeleteTask removes a task for good.
func (s *Service) DeleteTask(ctx context.Context, principal domain.Principal, id string) error {
	if _, err := s.GetTask(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete task")
	}
	return nil
}

// zoneOnFarm resolves an optional zone reference. A nil or empty id clears it.
func (s *Service) zoneOnFarm(ctx context.Context, farmID string, zoneID *string, kind string) (*string, error) {
	if zoneID == nil || strings.TrimSpace(*zoneID) == "" {
		return nil, nil
	}
	z, err := s.repo.GetZone(ctx, *zoneID)
	if err != nil || z.FarmID != farmID {
		if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, err
		}
		return nil, invalid(ctx, "zone must belong to the same farm", kind+"-zone-invalid")
	}
	return &z.ID, nil
}

// memberOnFarm resolves an optional assignee, who must be active on the farm.
func (s *Service) memberOnFarm(ctx context.Context, farmID string, memberID *string) (*string, error) {
	if memberID == nil || strings.TrimSpace(*memberID) == "" {
		return nil, nil
	}
	m, err := s.repo.GetMember(ctx, *memberID)
	if err != nil || m.FarmID != farmID || !m.IsActive {
		if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, err
		}
		return nil, invalid(ctx, "assigned_to must be an active team member of the same farm", "task-assignee-invalid")
	}
	return &m.ID, nil
}

func validateTitle(ctx context.Context, title string) error {
	if title == "" {
		return invalid(ctx, "task title is required", "task-title-required")
	}
	if len(title) > maxTitleLength {
		return invalid(ctx, "task title must be at most 255 characters", "task-title-too-long")
	}
	return nil
}

func validateTaskFilter(ctx context.Context, status TaskStatus, priority TaskPriority) error {
	if status != "" && !status.IsValid() {
		return invalid(ctx, "status must be one of pending, in-progress, completed, cancelled", "task-status-invalid")
	}
	if priority != "" && !priority.IsValid() {
		return invalid(ctx, "priority must be one of high, medium, low", "task-priority-invalid")
	}
	return nil
}
