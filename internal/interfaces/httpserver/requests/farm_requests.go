package requests

import (
	"time"

	"agri-api/internal/domain/farm"
)

// CreateFarmRequest registers a farm for the caller.
type CreateFarmRequest struct {
	Name           string         `json:"name" binding:"required"`
	Location       *string        `json:"location,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	SizeHectares   *float64       `json:"size_hectares,omitempty"`
	SoilType       *string        `json:"soil_type,omitempty"`
	IrrigationType *string        `json:"irrigation_type,omitempty"`
	Crops          []string       `json:"crops,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func (r CreateFarmRequest) Params() farm.CreateParams {
	return farm.CreateParams{
		Name:           r.Name,
		Location:       r.Location,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		SizeHectares:   r.SizeHectares,
		SoilType:       r.SoilType,
		IrrigationType: r.IrrigationType,
		Crops:          r.Crops,
		Metadata:       r.Metadata,
	}
}

// UpdateFarmRequest is a partial farm update.
type UpdateFarmRequest struct {
	Name           *string        `json:"name,omitempty"`
	Location       *string        `json:"location,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	SizeHectares   *float64       `json:"size_hectares,omitempty"`
	SoilType       *string        `json:"soil_type,omitempty"`
	IrrigationType *string        `json:"irrigation_type,omitempty"`
	Crops          []string       `json:"crops,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	IsActive       *bool          `json:"is_active,omitempty"`
}

func (r UpdateFarmRequest) Params() farm.UpdateParams {
	return farm.UpdateParams{
		Name:           r.Name,
		Location:       r.Location,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		SizeHectares:   r.SizeHectares,
		SoilType:       r.SoilType,
		IrrigationType: r.IrrigationType,
		Crops:          r.Crops,
		Metadata:       r.Metadata,
		IsActive:       r.IsActive,
	}
}

// CreateZoneRequest adds a zone to a farm.
type CreateZoneRequest struct {
	Name         string         `json:"name" binding:"required"`
	AreaHectares *float64       `json:"area_hectares,omitempty"`
	CropVariety  *string        `json:"crop_variety,omitempty"`
	GrowthStage  *string        `json:"growth_stage,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (r CreateZoneRequest) Params() farm.ZoneParams {
	return farm.ZoneParams{
		Name:         r.Name,
		AreaHectares: r.AreaHectares,
		CropVariety:  r.CropVariety,
		GrowthStage:  r.GrowthStage,
		Metadata:     r.Metadata,
	}
}

// CreateReadingRequest ingests one sensor reading.
type CreateReadingRequest struct {
	ZoneID           string     `json:"zone_id" binding:"required"`
	SoilMoisture     *float64   `json:"soil_moisture,omitempty"`
	Temperature      *float64   `json:"temperature,omitempty"`
	Humidity         *float64   `json:"humidity,omitempty"`
	SoilPH           *float64   `json:"soil_ph,omitempty"`
	ReadingTimestamp *time.Time `json:"reading_timestamp,omitempty"`
}

func (r CreateReadingRequest) Params() farm.ReadingParams {
	return farm.ReadingParams{
		ZoneID:           r.ZoneID,
		SoilMoisture:     r.SoilMoisture,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		SoilPH:           r.SoilPH,
		ReadingTimestamp: r.ReadingTimestamp,
	}
}
