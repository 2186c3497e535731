package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agri-api/internal/domain/farm"
)

// ZoneAlert is an alert raised on a zone.
type ZoneAlert struct {
	ID         string            `gorm:"type:uuid;primaryKey"`
	ZoneID     string            `gorm:"type:uuid;not null;index:idx_alert_zone_resolved,priority:1"`
	AlertType  string            `gorm:"type:varchar(50);not null"`
	Message    string            `gorm:"type:text;not null"`
	Priority   int               `gorm:"not null;default:1"`
	IsResolved bool              `gorm:"not null;default:false;index:idx_alert_zone_resolved,priority:2"`
	ResolvedAt *time.Time
	ResolvedBy *string           `gorm:"type:varchar(128)"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ZoneAlert.
func (ZoneAlert) TableName() string {
	return "zone_alerts"
}

// BeforeCreate assigns the public id.
func (a *ZoneAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// NewSchemaZoneAlert maps a domain alert to its row.
func NewSchemaZoneAlert(a *farm.Alert) *ZoneAlert {
	return &ZoneAlert{
		ID:         a.ID,
		ZoneID:     a.ZoneID,
		AlertType:  string(a.AlertType),
		Message:    a.Message,
		Priority:   a.Priority,
		IsResolved: a.IsResolved,
		ResolvedAt: a.ResolvedAt,
		ResolvedBy: a.ResolvedBy,
		Metadata:   datatypes.JSONMap(a.Metadata),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// EtoD converts the row to the domain alert.
func (a *ZoneAlert) EtoD() *farm.Alert {
	return &farm.Alert{
		ID:         a.ID,
		ZoneID:     a.ZoneID,
		AlertType:  farm.AlertType(a.AlertType),
		Message:    a.Message,
		Priority:   a.Priority,
		IsResolved: a.IsResolved,
		ResolvedAt: a.ResolvedAt,
		ResolvedBy: a.ResolvedBy,
		Metadata:   jsonMap(a.Metadata),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
