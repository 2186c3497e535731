package weather

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/tool"
	"agri-api/internal/infrastructure/cache"
	"agri-api/internal/infrastructure/metrics"
)

const dailyFields = "temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_mean,et0_fao_evapotranspiration"

// Client fetches daily forecasts from an Open-Meteo compatible API.
type Client struct {
	httpClient *resty.Client
	cache      cache.Store
	ttl        time.Duration
	log        zerolog.Logger
}

var _ tool.WeatherSource = (*Client)(nil)

type forecastResponse struct {
	Daily struct {
		Time        []string   `json:"time"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		Precip      []*float64 `json:"precipitation_sum"`
		HumidityAvg []*float64 `json:"relative_humidity_2m_mean"`
		ET0         []*float64 `json:"et0_fao_evapotranspiration"`
	} `json:"daily"`
}

type errorResponse struct {
	Reason string `json:"reason"`
}

// NewClient returns nil when baseURL is empty so callers can treat the
// source as absent.
func NewClient(baseURL string, timeout time.Duration, store cache.Store, ttl time.Duration, log zerolog.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", "agri-api-weather/1.0").
			SetTimeout(timeout),
		cache: store,
		ttl:   ttl,
		log:   log.With().Str("component", "weather-client").Logger(),
	}
}

// Forecast implements tool.WeatherSource. Locations that are not "lat,lon"
// coordinates yield (nil, nil) and the caller simulates instead.
func (c *Client) Forecast(ctx context.Context, location string, days int) (*tool.Forecast, error) {
	lat, lon, ok := ParseCoordinates(location)
	if !ok {
		return nil, nil
	}

	if c.cache == nil {
		return c.fetch(ctx, location, lat, lon, days)
	}

	key := fmt.Sprintf("weather:%.3f,%.3f:%d", lat, lon, days)
	forecast, hit, err := cache.GetJSONWithFallback(ctx, c.cache, key, c.ttl, func(ctx context.Context) (*tool.Forecast, error) {
		return c.fetch(ctx, location, lat, lon, days)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordCacheLookup("weather", hit)
	return forecast, nil
}

func (c *Client) fetch(ctx context.Context, location string, lat, lon float64, days int) (*tool.Forecast, error) {
	var body forecastResponse
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      strconv.FormatFloat(lat, 'f', 4, 64),
			"longitude":     strconv.FormatFloat(lon, 'f', 4, 64),
			"daily":         dailyFields,
			"forecast_days": strconv.Itoa(days),
			"timezone":      "auto",
		}).
		SetResult(&body).
		SetError(&apiErr).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather api error (%d): %s", resp.StatusCode(), apiErr.Reason)
	}

	out := &tool.Forecast{Location: location, Source: "open-meteo"}
	d := body.Daily
	for i, date := range d.Time {
		out.Days = append(out.Days, tool.DailyForecast{
			Date:            date,
			TempMaxC:        at(d.TempMax, i),
			TempMinC:        at(d.TempMin, i),
			RainfallMM:      at(d.Precip, i),
			HumidityPercent: at(d.HumidityAvg, i),
			ET0MM:           at(d.ET0, i),
		})
	}
	if len(out.Days) == 0 {
		return nil, fmt.Errorf("weather api returned no daily data")
	}
	c.log.Debug().Str("location", location).Int("days", len(out.Days)).Msg("forecast fetched")
	return out, nil
}

// ParseCoordinates accepts "lat,lon" with optional spaces.
func ParseCoordinates(location string) (lat, lon float64, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.Abs(lat) > 90 {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.Abs(lon) > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
