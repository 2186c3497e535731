package tool

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// DailyForecast is one day of weather data.
type DailyForecast struct {
	Date            string  `json:"date"`
	TempMaxC        float64 `json:"temp_max_c"`
	TempMinC        float64 `json:"temp_min_c"`
	RainfallMM      float64 `json:"rainfall_mm"`
	HumidityPercent float64 `json:"humidity_percent"`
	ET0MM           float64 `json:"et0_mm"`
}

// Forecast is a multi-day forecast for a location.
type Forecast struct {
	Location string          `json:"location"`
	Source   string          `json:"source"`
	Days     []DailyForecast `json:"days"`
}

// WeatherSource provides real forecasts.
type WeatherSource interface {
	Forecast(ctx context.Context, location string, days int) (*Forecast, error)
}

// SensorReading is the latest field measurement for a zone.
type SensorReading struct {
	ZoneID           string    `json:"zone_id"`
	SoilMoisture     *float64  `json:"soil_moisture,omitempty"`
	SoilPH           *float64  `json:"soil_ph,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	Humidity         *float64  `json:"humidity,omitempty"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
}

// SensorSource provides stored sensor readings. Implementations return
// (nil, nil) when the zone has no readings or is not visible to the caller.
type SensorSource interface {
	LatestReading(ctx context.Context, zoneID string) (*SensorReading, error)
}

type randSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newRandSource(seed uint64) *randSource {
	return &randSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *randSource) uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.Float64()*(hi-lo)
}

func (s *randSource) chance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *randSource) pick(options []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return options[s.r.IntN(len(options))]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
