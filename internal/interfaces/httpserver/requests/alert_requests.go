package requests

import "agri-api/internal/domain/farm"

// CreateAlertRequest raises an alert on a zone. Priority 1 is the most urgent.
type CreateAlertRequest struct {
	AlertType farm.AlertType `json:"alert_type" binding:"required" enums:"info,warning,critical"`
	Message   string         `json:"message" binding:"required"`
	Priority  int            `json:"priority,omitempty" minimum:"1" maximum:"10"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (r CreateAlertRequest) Params() farm.AlertParams {
	return farm.AlertParams{
		AlertType: r.AlertType,
		Message:   r.Message,
		Priority:  r.Priority,
		Metadata:  r.Metadata,
	}
}

// UpdateAlertRequest is a partial alert update; is_resolved toggles resolution.
type UpdateAlertRequest struct {
	AlertType  *farm.AlertType `json:"alert_type,omitempty"`
	Message    *string         `json:"message,omitempty"`
	Priority   *int            `json:"priority,omitempty"`
	IsResolved *bool           `json:"is_resolved,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
}

func (r UpdateAlertRequest) Params() farm.AlertUpdate {
	return farm.AlertUpdate{
		AlertType:  r.AlertType,
		Message:    r.Message,
		Priority:   r.Priority,
		IsResolved: r.IsResolved,
		Metadata:   r.Metadata,
	}
}
