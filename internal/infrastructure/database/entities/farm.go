package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agri-api/internal/domain/farm"
)

// Farm is the persisted farm. Crops is a JSON list of crop names.
type Farm struct {
	ID             string                      `gorm:"type:uuid;primaryKey"`
	OwnerID        string                      `gorm:"type:varchar(128);not null;index:idx_farm_owner_active,priority:1"`
	Name           string                      `gorm:"type:varchar(255);not null"`
	Location       *string                     `gorm:"type:varchar(500)"`
	Latitude       *float64
	Longitude      *float64
	SizeHectares   *float64
	SoilType       *string                     `gorm:"type:varchar(100)"`
	IrrigationType *string                     `gorm:"type:varchar(100)"`
	Crops          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Metadata       datatypes.JSONMap           `gorm:"type:jsonb"`
	IsActive       bool                        `gorm:"not null;default:true;index:idx_farm_owner_active,priority:2"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Farm.
func (Farm) TableName() string {
	return "farms"
}

// BeforeCreate assigns the public id.
func (f *Farm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Zone is a farm subdivision.
type Zone struct {
	ID           string            `gorm:"type:uuid;primaryKey"`
	FarmID       string            `gorm:"type:uuid;not null;index"`
	Name         string            `gorm:"type:varchar(255);not null"`
	AreaHectares *float64
	CropVariety  *string           `gorm:"type:varchar(255)"`
	GrowthStage  *string           `gorm:"type:varchar(100);index"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	IsActive     bool              `gorm:"not null;default:true;index"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Zone.
func (Zone) TableName() string {
	return "farm_zones"
}

// BeforeCreate assigns the public id.
func (z *Zone) BeforeCreate(tx *gorm.DB) error {
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	return nil
}

// SensorReading is one ingested measurement.
type SensorReading struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	ZoneID           string `gorm:"type:uuid;not null;index:idx_reading_zone_time,priority:1"`
	SoilMoisture     *float64
	Temperature      *float64
	Humidity         *float64
	SoilPH           *float64
	ReadingTimestamp time.Time `gorm:"not null;index:idx_reading_zone_time,priority:2,sort:desc"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for SensorReading.
func (SensorReading) TableName() string {
	return "sensor_readings"
}

// BeforeCreate assigns the public id.
func (r *SensorReading) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewSchemaFarm maps a domain farm to its row.
func NewSchemaFarm(f *farm.Farm) *Farm {
	return &Farm{
		ID:             f.ID,
		OwnerID:        f.OwnerID,
		Name:           f.Name,
		Location:       f.Location,
		Latitude:       f.Latitude,
		Longitude:      f.Longitude,
		SizeHectares:   f.SizeHectares,
		SoilType:       f.SoilType,
		IrrigationType: f.IrrigationType,
		Crops:          datatypes.JSONSlice[string](f.Crops),
		Metadata:       datatypes.JSONMap(f.Metadata),
		IsActive:       f.IsActive,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// EtoD converts the row to the domain farm.
func (f *Farm) EtoD() *farm.Farm {
	crops := []string(f.Crops)
	if crops == nil {
		crops = []string{}
	}
	return &farm.Farm{
		ID:             f.ID,
		OwnerID:        f.OwnerID,
		Name:           f.Name,
		Location:       f.Location,
		Latitude:       f.Latitude,
		Longitude:      f.Longitude,
		SizeHectares:   f.SizeHectares,
		SoilType:       f.SoilType,
		IrrigationType: f.IrrigationType,
		Crops:          crops,
		Metadata:       jsonMap(f.Metadata),
		IsActive:       f.IsActive,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// NewSchemaZone maps a domain zone to its row.
func NewSchemaZone(z *farm.Zone) *Zone {
	return &Zone{
		ID:           z.ID,
		FarmID:       z.FarmID,
		Name:         z.Name,
		AreaHectares: z.AreaHectares,
		CropVariety:  z.CropVariety,
		GrowthStage:  z.GrowthStage,
		Metadata:     datatypes.JSONMap(z.Metadata),
		IsActive:     z.IsActive,
		CreatedAt:    z.CreatedAt,
		UpdatedAt:    z.UpdatedAt,
	}
}

// EtoD converts the row to the domain zone.
func (z *Zone) EtoD() *farm.Zone {
	return &farm.Zone{
		ID:           z.ID,
		FarmID:       z.FarmID,
		Name:         z.Name,
		AreaHectares: z.AreaHectares,
		CropVariety:  z.CropVariety,
		GrowthStage:  z.GrowthStage,
		Metadata:     jsonMap(z.Metadata),
		IsActive:     z.IsActive,
		CreatedAt:    z.CreatedAt,
		UpdatedAt:    z.UpdatedAt,
	}
}

// NewSchemaSensorReading maps a domain reading to its row.
func NewSchemaSensorReading(r *farm.SensorReading) *SensorReading {
	return &SensorReading{
		ID:               r.ID,
		ZoneID:           r.ZoneID,
		SoilMoisture:     r.SoilMoisture,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		SoilPH:           r.SoilPH,
		ReadingTimestamp: r.ReadingTimestamp,
		CreatedAt:        r.CreatedAt,
	}
}

// EtoD converts the row to the domain reading.
func (r *SensorReading) EtoD() *farm.SensorReading {
	return &farm.SensorReading{
		ID:               r.ID,
		ZoneID:           r.ZoneID,
		SoilMoisture:     r.SoilMoisture,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		SoilPH:           r.SoilPH,
		ReadingTimestamp: r.ReadingTimestamp,
		CreatedAt:        r.CreatedAt,
	}
}
