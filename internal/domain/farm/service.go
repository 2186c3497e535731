package farm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agri-api/internal/domain"
	"agri-api/internal/domain/tool"
	"agri-api/internal/utils/platformerrors"
)

const (
	DefaultReadingLimit = 10
	MaxReadingLimit     = 100
	maxNameLength       = 255
)

// Service implements farm, zone, sensor, task and team operations for a
// verified principal.
type Service struct {
	repo Repository
	now  func() time.Time
	log  zerolog.Logger
}

// NewService wires dependencies.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "farm-service").Logger(),
	}
}

// ListFarms returns the caller's active farms.
func (s *Service) ListFarms(ctx context.Context, principal domain.Principal) ([]*Farm, error) {
	farms, err := s.repo.ListFarms(ctx, principal.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list farms")
	}
	return farms, nil
}

// CreateFarm registers a farm owned by the caller.
func (s *Service) CreateFarm(ctx context.Context, principal domain.Principal, params CreateParams) (*Farm, error) {
	name := strings.TrimSpace(params.Name)
	if err := validateName(ctx, &name, "farm"); err != nil {
		return nil, err
	}
	if err := validateSite(ctx, params.Latitude, params.Longitude, params.SizeHectares); err != nil {
		return nil, err
	}

	f := &Farm{
		OwnerID:        principal.ID,
		Name:           name,
		Location:       params.Location,
		Latitude:       params.Latitude,
		Longitude:      params.Longitude,
		SizeHectares:   params.SizeHectares,
		SoilType:       params.SoilType,
		IrrigationType: params.IrrigationType,
		Crops:          params.Crops,
		Metadata:       params.Metadata,
		IsActive:       true,
	}
	if f.Crops == nil {
		f.Crops = []string{}
	}
	if f.Metadata == nil {
		f.Metadata = map[string]any{}
	}
	if err := s.repo.CreateFarm(ctx, f); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create farm")
	}
	s.log.Info().Str("farm_id", f.ID).Str("owner_id", principal.ID).Msg("farm created")
	return f, nil
}

// GetFarm loads a farm and checks that the caller owns it.
func (s *Service) GetFarm(ctx context.Context, principal domain.Principal, id string) (*Farm, error) {
	f, err := s.repo.GetFarm(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != principal.ID {
		return nil, forbidden(ctx, "not authorized to access this farm", "farm-forbidden")
	}
	return f, nil
}

// UpdateFarm applies a partial update.
func (s *Service) UpdateFarm(ctx context.Context, principal domain.Principal, id string, params UpdateParams) (*Farm, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if err := validateName(ctx, &name, "farm"); err != nil {
			return nil, err
		}
		params.Name = &name
	}
	if err := validateSite(ctx, params.Latitude, params.Longitude, params.SizeHectares); err != nil {
		return nil, err
	}

	f, err := s.GetFarm(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		f.Name = *params.Name
	}
	if params.Location != nil {
		f.Location = params.Location
	}
	if params.Latitude != nil {
		f.Latitude = params.Latitude
	}
	if params.Longitude != nil {
		f.Longitude = params.Longitude
	}
	if params.SizeHectares != nil {
		f.SizeHectares = params.SizeHectares
	}
	if params.SoilType != nil {
		f.SoilType = params.SoilType
	}
	if params.IrrigationType != nil {
		f.IrrigationType = params.IrrigationType
	}
	if params.Crops != nil {
		f.Crops = params.Crops
	}
	if params.Metadata != nil {
		f.Metadata = params.Metadata
	}
	if params.IsActive != nil {
		f.IsActive = *params.IsActive
	}
	if err := s.repo.UpdateFarm(ctx, f); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update farm")
	}
	return f, nil
}

// DeleteFarm deactivates a farm; its zones and readings are kept.
func (s *Service) DeleteFarm(ctx context.Context, principal domain.Principal, id string) error {
	inactive := false
	_, err := s.UpdateFarm(ctx, principal, id, UpdateParams{IsActive: &inactive})
	return err
}

// CreateZone adds a zone to one of the caller's farms.
func (s *Service) CreateZone(ctx context.Context, principal domain.Principal, farmID string, params ZoneParams) (*Zone, error) {
	name := strings.TrimSpace(params.Name)
	if err := validateName(ctx, &name, "zone"); err != nil {
		return nil, err
	}
	if params.AreaHectares != nil && *params.AreaHectares <= 0 {
		return nil, invalid(ctx, "area_hectares must be greater than 0", "zone-area-invalid")
	}
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}

	z := &Zone{
		FarmID:       farmID,
		Name:         name,
		AreaHectares: params.AreaHectares,
		CropVariety:  params.CropVariety,
		GrowthStage:  params.GrowthStage,
		Metadata:     params.Metadata,
		IsActive:     true,
	}
	if z.Metadata == nil {
		z.Metadata = map[string]any{}
	}
	if err := s.repo.CreateZone(ctx, z); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create zone")
	}
	return z, nil
}

// ListZones returns the zones of one of the caller's farms.
func (s *Service) ListZones(ctx context.Context, principal domain.Principal, farmID string) ([]*Zone, error) {
	if _, err := s.GetFarm(ctx, principal, farmID); err != nil {
		return nil, err
	}
	zones, err := s.repo.ListZones(ctx, farmID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list zones")
	}
	return zones, nil
}

// GetZone loads a zone whose farm the caller owns.
func (s *Service) GetZone(ctx context.Context, principal domain.Principal, zoneID string) (*Zone, error) {
	z, err := s.repo.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, principal, z.FarmID, "zone"); err != nil {
		return nil, err
	}
	return z, nil
}

// checkOwner guards resources that hang off a farm. A missing farm reads as
// forbidden so ids of other owners' farms are not confirmed.
func (s *Service) checkOwner(ctx context.Context, principal domain.Principal, farmID, kind string) error {
	f, err := s.repo.GetFarm(ctx, farmID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return forbidden(ctx, "not authorized to access this "+kind, kind+"-forbidden")
		}
		return err
	}
	if f.OwnerID != principal.ID {
		return forbidden(ctx, "not authorized to access this "+kind, kind+"-forbidden")
	}
	return nil
}

// ListReadings returns a zone's newest readings. A zero limit uses the default.
func (s *Service) ListReadings(ctx context.Context, principal domain.Principal, zoneID string, limit int) ([]*SensorReading, error) {
	if limit == 0 {
		limit = DefaultReadingLimit
	}
	if limit < 1 || limit > MaxReadingLimit {
		return nil, invalid(ctx, "limit must be between 1 and 100", "reading-limit-invalid")
	}
	if _, err := s.GetZone(ctx, principal, zoneID); err != nil {
		return nil, err
	}
	readings, err := s.repo.ListReadings(ctx, zoneID, limit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list readings")
	}
	return readings, nil
}

// LatestReading returns the newest reading of a zone.
func (s *Service) LatestReading(ctx context.Context, principal domain.Principal, zoneID string) (*SensorReading, error) {
	if _, err := s.GetZone(ctx, principal, zoneID); err != nil {
		return nil, err
	}
	return s.repo.LatestReading(ctx, zoneID)
}

// RecordReading ingests a sensor reading for a zone the caller owns.
func (s *Service) RecordReading(ctx context.Context, principal domain.Principal, params ReadingParams) (*SensorReading, error) {
	if err := validateReading(ctx, params); err != nil {
		return nil, err
	}
	if _, err := s.GetZone(ctx, principal, params.ZoneID); err != nil {
		return nil, err
	}

	ts := s.now().UTC()
	if params.ReadingTimestamp != nil && !params.ReadingTimestamp.IsZero() {
		ts = params.ReadingTimestamp.UTC()
	}
	r := &SensorReading{
		ZoneID:           params.ZoneID,
		SoilMoisture:     params.SoilMoisture,
		Temperature:      params.Temperature,
		Humidity:         params.Humidity,
		SoilPH:           params.SoilPH,
		ReadingTimestamp: ts,
	}
	if err := s.repo.CreateReading(ctx, r); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "record reading")
	}
	return r, nil
}

// SensorSource exposes stored readings to the soil tool. The caller is read
// from the context, so zones outside the caller's farms look empty.
func (s *Service) SensorSource() tool.SensorSource {
	return sensorSource{svc: s}
}

type sensorSource struct {
	svc *Service
}

func (a sensorSource) LatestReading(ctx context.Context, zoneID string) (*tool.SensorReading, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, nil
	}
	r, err := a.svc.LatestReading(ctx, principal, zoneID)
	if err != nil {
		if errors.Is(err, ErrNotFound) ||
			platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) ||
			platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tool.SensorReading{
		ZoneID:           r.ZoneID,
		SoilMoisture:     r.SoilMoisture,
		SoilPH:           r.SoilPH,
		Temperature:      r.Temperature,
		Humidity:         r.Humidity,
		ReadingTimestamp: r.ReadingTimestamp,
	}, nil
}

func validateName(ctx context.Context, name *string, kind string) error {
	if *name == "" {
		return invalid(ctx, kind+" name is required", kind+"-name-required")
	}
	if len(*name) > maxNameLength {
		return invalid(ctx, kind+" name must be at most 255 characters", kind+"-name-too-long")
	}
	return nil
}

func validateSite(ctx context.Context, lat, lon, size *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return invalid(ctx, "latitude must be between -90 and 90", "farm-latitude-invalid")
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return invalid(ctx, "longitude must be between -180 and 180", "farm-longitude-invalid")
	}
	if size != nil && *size <= 0 {
		return invalid(ctx, "size_hectares must be greater than 0", "farm-size-invalid")
	}
	return nil
}

func validateReading(ctx context.Context, p ReadingParams) error {
	if strings.TrimSpace(p.ZoneID) == "" {
		return invalid(ctx, "zone_id is required", "reading-zone-required")
	}
	if p.SoilMoisture != nil && (*p.SoilMoisture < 0 || *p.SoilMoisture > 100) {
		return invalid(ctx, "soil_moisture must be between 0 and 100", "reading-moisture-invalid")
	}
	if p.Humidity != nil && (*p.Humidity < 0 || *p.Humidity > 100) {
		return invalid(ctx, "humidity must be between 0 and 100", "reading-humidity-invalid")
	}
	if p.SoilPH != nil && (*p.SoilPH < 0 || *p.SoilPH > 14) {
		return invalid(ctx, "soil_ph must be between 0 and 14", "reading-ph-invalid")
	}
	return nil
}

func invalid(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, code)
}

func forbidden(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, message, nil, code)
}
