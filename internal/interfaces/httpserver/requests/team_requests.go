package requests

import "agri-api/internal/domain/farm"

// CreateMemberRequest adds a worker to a farm. hired_date is YYYY-MM-DD.
type CreateMemberRequest struct {
	Name          string            `json:"name" binding:"required"`
	Role          string            `json:"role" binding:"required"`
	Status        farm.MemberStatus `json:"status,omitempty" enums:"active,break,off-duty,vacation"`
	UserID        *string           `json:"user_id,omitempty"`
	CurrentZoneID *string           `json:"current_zone_id,omitempty"`
	Phone         *string           `json:"phone,omitempty"`
	Email         *string           `json:"email,omitempty" binding:"omitempty,email"`
	HiredDate     *string           `json:"hired_date,omitempty" example:"2024-03-01"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

func (r CreateMemberRequest) Params() farm.MemberParams {
	return farm.MemberParams{
		Name:          r.Name,
		Role:          r.Role,
		Status:        r.Status,
		UserID:        r.UserID,
		CurrentZoneID: r.CurrentZoneID,
		Phone:         r.Phone,
		Email:         r.Email,
		HiredDate:     r.HiredDate,
		Metadata:      r.Metadata,
	}
}

// UpdateMemberRequest is a partial team member update.
type UpdateMemberRequest struct {
	Name          *string            `json:"name,omitempty"`
	Role          *string            `json:"role,omitempty"`
	Status        *farm.MemberStatus `json:"status,omitempty"`
	CurrentZoneID *string            `json:"current_zone_id,omitempty"`
	Phone         *string            `json:"phone,omitempty"`
	Email         *string            `json:"email,omitempty" binding:"omitempty,email"`
	HiredDate     *string            `json:"hired_date,omitempty"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	IsActive      *bool              `json:"is_active,omitempty"`
}

func (r UpdateMemberRequest) Params() farm.MemberUpdate {
	return farm.MemberUpdate{
		Name:          r.Name,
		Role:          r.Role,
		Status:        r.Status,
		CurrentZoneID: r.CurrentZoneID,
		Phone:         r.Phone,
		Email:         r.Email,
		HiredDate:     r.HiredDate,
		Metadata:      r.Metadata,
		IsActive:      r.IsActive,
	}
}
