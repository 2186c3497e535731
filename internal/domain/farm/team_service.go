package farm

import (
	"context"
	"strings"
	"time"

	"agri-api/internal/domain"
	"agri-api/internal/utils/platformerrors"
)

const (
	maxRoleLength   = 100
	maxPhoneLength  = 20
	hiredDateLayout = "2006-01-02"
)

// ListTeam returns a farm's active members by name.
func (s *Service) ListTeam(ctx context.Context, principal domain.Principal, farmID string, status MemberStatus) ([]*TeamMember, error) {
	if status != "" && !status.IsValid() {
		return nil, invalid(ctx, "status must be one of active, break, off-duty, vacation", "member-status-invalid")
	}
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, farmID, status)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list team")
	}
	return members, nil
}

// CreateMember adds a worker to one of the caller's farms.
func (s *Service) CreateMember(ctx context.Context, principal domain.Principal, farmID string, params MemberParams) (*TeamMember, error) {
	name := strings.TrimSpace(params.Name)
	if err := validateName(ctx, &name, "member"); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(params.Role)
	if err := validateRole(ctx, role); err != nil {
		return nil, err
	}
	if params.Status == "" {
		params.Status = MemberActive
	}
	if !params.Status.IsValid() {
		return nil, invalid(ctx, "status must be one of active, break, off-duty, vacation", "member-status-invalid")
	}
	if err := validatePhone(ctx, params.Phone); err != nil {
		return nil, err
	}
	hired, err := parseHiredDate(ctx, params.HiredDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}
	zoneID, err := s.zoneOnFarm(ctx, farmID, params.CurrentZoneID, "member")
	if err != nil {
		return nil, err
	}

	m := &TeamMember{
		FarmID:        farmID,
		UserID:        params.UserID,
		Name:          name,
		Role:          role,
		Status:        params.Status,
		CurrentZoneID: zoneID,
		Phone:         params.Phone,
		Email:         params.Email,
		HiredDate:     hired,
		Metadata:      params.Metadata,
		IsActive:      true,
	}
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create team member")
	}
	s.log.Info().Str("member_id", m.ID).Str("farm_id", farmID).Msg("team member added")
	return m, nil
}

// GetMember loads a member whose farm the caller owns, active or not.
func (s *Service) GetMember(ctx context.Context, principal domain.Principal, id string) (*TeamMember, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, principal, m.FarmID, "member"); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMember applies a partial update.
func (s *Service) UpdateMember(ctx context.Context, principal domain.Principal, id string, params MemberUpdate) (*TeamMember, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if err := validateName(ctx, &name, "member"); err != nil {
			return nil, err
		}
		params.Name = &name
	}
	if params.Role != nil {
		role := strings.TrimSpace(*params.Role)
		if err := validateRole(ctx, role); err != nil {
			return nil, err
		}
		params.Role = &role
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, invalid(ctx, "status must be one of active, break, off-duty, vacation", "member-status-invalid")
	}
	if err := validatePhone(ctx, params.Phone); err != nil {
		return nil, err
	}
	hired, err := parseHiredDate(ctx, params.HiredDate)
	if err != nil {
		return nil, err
	}

	m, err := s.GetMember(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if params.CurrentZoneID != nil {
		if m.CurrentZoneID, err = s.zoneOnFarm(ctx, m.FarmID, params.CurrentZoneID, "member"); err != nil {
			return nil, err
		}
	}
	if params.Name != nil {
		m.Name = *params.Name
	}
	if params.Role != nil {
		m.Role = *params.Role
	}
	if params.Status != nil {
		m.Status = *params.Status
	}
	if params.Phone != nil {
		m.Phone = params.Phone
	}
	if params.Email != nil {
		m.Email = params.Email
	}
	if hired != nil {
		m.HiredDate = hired
	}
	if params.Metadata != nil {
		m.Metadata = params.Metadata
	}
	if params.IsActive != nil {
		m.IsActive = *params.IsActive
	}
	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update team member")
	}
	return m, nil
}

// DeleteMember deactivates a member. Tasks assigned to them are kept.
func (s *Service) DeleteMember(ctx context.Context, principal domain.Principal, id string) error {
	inactive := false
	_, err := s.UpdateMember(ctx, principal, id, MemberUpdate{IsActive: &inactive})
	return err
}

// ListMemberTasks returns the tasks assigned to a member by due date.
func (s *Service) ListMemberTasks(ctx context.Context, principal domain.Principal, memberID string, status TaskStatus) ([]*Task, error) {
	if err := validateTaskFilter(ctx, status, ""); err != nil {
		return nil, err
	}
	if _, err := s.GetMember(ctx, principal, memberID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{AssignedTo: memberID, Status: status})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list member tasks")
	}
	return tasks, nil
}

func validateRole(ctx context.Context, role string) error {
	if role == "" {
		return invalid(ctx, "member role is required", "member-role-required")
	}
	if len(role) > maxRoleLength {
		return invalid(ctx, "member role must be at most 100 characters", "member-role-too-long")
	}
	return nil
}

func validatePhone(ctx context.Context, phone *string) error {
	if phone != nil && len(*phone) > maxPhoneLength {
		return invalid(ctx, "phone must be at most 20 characters", "member-phone-too-long")
	}
	return nil
}

func parseHiredDate(ctx context.Context, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := time.Parse(hiredDateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalid(ctx, "hired_date must be YYYY-MM-DD", "member-hired-date-invalid")
	}
	return &d, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
