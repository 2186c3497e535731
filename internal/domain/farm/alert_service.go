package farm

import (
	"context"
	"strings"

	"agri-api/internal/domain"
	"agri-api/internal/utils/platformerrors"
)

const maxAlertMessageLength = 2000

// ListZoneAlerts returns the alerts of a zone the caller owns.
func (s *Service) ListZoneAlerts(ctx context.Context, principal domain.Principal, zoneID string, resolved *bool) ([]*Alert, error) {
	if _, err := s.GetZone(ctx, principal, zoneID); err != nil {
		return nil, err
	}
	return s.listAlerts(ctx, AlertFilter{ZoneIDs: []string{zoneID}, Resolved: resolved})
}

// ListFarmAlerts returns the alerts of every active zone on a farm.
func (s *Service) ListFarmAlerts(ctx context.Context, principal domain.Principal, farmID string, resolved *bool) ([]*Alert, error) {
	zones, err := s.ListZones(ctx, principal, farmID)
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return []*Alert{}, nil
	}
	ids := make([]string, 0, len(zones))
	for _, z := range zones {
		ids = append(ids, z.ID)
	}
	return s.listAlerts(ctx, AlertFilter{ZoneIDs: ids, Resolved: resolved})
}

func (s *Service) listAlerts(ctx context.Context, filter AlertFilter) ([]*Alert, error) {
	alerts, err := s.repo.ListAlerts(ctx, filter)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list alerts")
	}
	return alerts, nil
}

// CreateAlert raises an alert on a zone the caller owns.
func (s *Service) CreateAlert(ctx context.Context, principal domain.Principal, zoneID string, params AlertParams) (*Alert, error) {
	message := strings.TrimSpace(params.Message)
	if err := validateAlertMessage(ctx, message); err != nil {
		return nil, err
	}
	if params.Priority == 0 {
		params.Priority = MinAlertPriority
	}
	if err := validateAlert(ctx, &params.AlertType, &params.Priority); err != nil {
		return nil, err
	}
	if _, err := s.GetZone(ctx, principal, zoneID); err != nil {
		return nil, err
	}

	a := &Alert{
		ZoneID:    zoneID,
		AlertType: params.AlertType,
		Message:   message,
		Priority:  params.Priority,
		Metadata:  params.Metadata,
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	if err := s.repo.CreateAlert(ctx, a); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create alert")
	}
	s.log.Info().Str("alert_id", a.ID).Str("zone_id", zoneID).Str("alert_type", string(a.AlertType)).Msg("alert raised")
	return a, nil
}

// GetAlert loads an alert whose zone the caller owns.
func (s *Service) GetAlert(ctx context.Context, principal domain.Principal, id string) (*Alert, error) {
	a, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	z, err := s.repo.GetZone(ctx, a.ZoneID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, principal, z.FarmID, "alert"); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAlert applies a partial update. Resolving records the caller and the
// time; reopening clears both.
func (s *Service) UpdateAlert(ctx context.Context, principal domain.Principal, id string, params AlertUpdate) (*Alert, error) {
	if params.Message != nil {
		message := strings.TrimSpace(*params.Message)
		if err := validateAlertMessage(ctx, message); err != nil {
			return nil, err
		}
		params.Message = &message
	}
	if err := validateAlert(ctx, params.AlertType, params.Priority); err != nil {
		return nil, err
	}

	a, err := s.GetAlert(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if params.AlertType != nil {
		a.AlertType = *params.AlertType
	}
	if params.Message != nil {
		a.Message = *params.Message
	}
	if params.Priority != nil {
		a.Priority = *params.Priority
	}
	if params.Metadata != nil {
		a.Metadata = params.Metadata
	}
	if params.IsResolved != nil && *params.IsResolved != a.IsResolved {
		a.IsResolved = *params.IsResolved
		if a.IsResolved {
			now := s.now().UTC()
			by := principal.ID
			a.ResolvedAt, a.ResolvedBy = &now, &by
		} else {
			a.ResolvedAt, a.ResolvedBy = nil, nil
		}
	}

	if err := s.repo.UpdateAlert(ctx, a); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update alert")
	}
	return a, nil
}

// DeleteAlert removes an alert for good.
func (s *Service) DeleteAlert(ctx context.Context, principal domain.Principal, id string) error {
	if _, err := s.GetAlert(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.DeleteAlert(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete alert")
	}
	return nil
}

func validateAlertMessage(ctx context.Context, message string) error {
	if message == "" {
		return invalid(ctx, "alert message is required", "alert-message-required")
	}
	if len(message) > maxAlertMessageLength {
		return invalid(ctx, "alert message must be at most 2000 characters", "alert-message-too-long")
	}
	return nil
}

func validateAlert(ctx context.Context, alertType *AlertType, priority *int) error {
	if alertType != nil && !alertType.IsValid() {
		return invalid(ctx, "alert_type must be one of info, warning, critical", "alert-type-invalid")
	}
	if priority != nil && (*priority < MinAlertPriority || *priority > MaxAlertPriority) {
		return invalid(ctx, "priority must be between 1 and 10", "alert-priority-invalid")
	}
	return nil
}
