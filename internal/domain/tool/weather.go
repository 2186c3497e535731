package tool

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	defaultForecastDays = 7
	maxForecastDays     = 16
	heavyRainMM         = 10.0
)

// WeatherInput is the argument of get_weather_forecast.
type WeatherInput struct {
	Location string `json:"location" jsonschema_description:"Farm location, either a region name or \"lat,lon\" coordinates"`
	Days     int    `json:"days,omitempty" jsonschema:"default=7,minimum=1,maximum=16" jsonschema_description:"Number of days to forecast"`
}

func (r *Registry) weatherForecast(ctx context.Context, in WeatherInput) Result {
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "unspecified"
	}
	days := in.Days
	switch {
	case days <= 0:
		days = defaultForecastDays
	case days > maxForecastDays:
		days = maxForecastDays
	}

	forecast := r.fetchForecast(ctx, location, days)

	var (
		rainyDays int
		totalRain float64
		alerts    = []string{}
	)
	for _, day := range forecast.Days {
		if day.RainfallMM > 0 {
			rainyDays++
			totalRain += day.RainfallMM
		}
		if day.RainfallMM >= heavyRainMM {
			alerts = append(alerts, fmt.Sprintf("Heavy rain expected on %s (%.1fmm) - reduce irrigation", day.Date, day.RainfallMM))
		}
	}

	summary := "Dry conditions expected for the whole period"
	if rainyDays > 0 {
		summary = fmt.Sprintf("Rain expected on %d of %d days (%.1fmm total)", rainyDays, len(forecast.Days), round(totalRain, 1))
	}

	return Result{
		"location":       location,
		"forecast_days":  days,
		"data_source":    forecast.Source,
		"summary":        summary,
		"daily_forecast": forecast.Days,
		"alerts":         alerts,
	}
}

func (r *Registry) fetchForecast(ctx context.Context, location string, days int) *Forecast {
	if r.weather != nil {
		forecast, err := r.weather.Forecast(ctx, location, days)
		if err == nil && forecast != nil && len(forecast.Days) > 0 {
			if len(forecast.Days) > days {
				forecast.Days = forecast.Days[:days]
			}
			return forecast
		}
		if err != nil {
			r.log.Warn().Err(err).Str("location", location).Msg("weather source failed, using simulated forecast")
		}
	}
	return r.simulatedForecast(location, days)
}

func (r *Registry) simulatedForecast(location string, days int) *Forecast {
	start := r.now().UTC()
	out := make([]DailyForecast, 0, days)
	for i := 0; i < days; i++ {
		rain := 0.0
		if r.rng.chance() > 0.6 {
			rain = round(r.rng.uniform(0, 15), 1)
		}
		out = append(out, DailyForecast{
			Date:            start.Add(time.Duration(i) * 24 * time.Hour).Format("2006-01-02"),
			TempMaxC:        round(28+r.rng.uniform(-3, 3), 1),
			TempMinC:        round(18+r.rng.uniform(-2, 2), 1),
			RainfallMM:      rain,
			HumidityPercent: round(r.rng.uniform(60, 85), 1),
			ET0MM:           round(r.rng.uniform(4, 7), 2),
		})
	}
	return &Forecast{Location: location, Source: "simulated", Days: out}
}
