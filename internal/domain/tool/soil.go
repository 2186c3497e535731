package tool

import (
	"context"
	"fmt"
	"strings"
)

// SoilInput is the argument of analyze_soil_conditions.
type SoilInput struct {
	ZoneID     string         `json:"zone_id" jsonschema_description:"Identifier of the farm zone or field"`
	SensorData map[string]any `json:"sensor_data,omitempty" jsonschema_description:"Optional readings such as moisture, ec and ph; the latest stored reading is used when omitted"`
}

const (
	sourceProvided = "sensor_data"
	sourceStored   = "sensor_reading"
	sourceSimulate = "simulated"
)

func (r *Registry) soilConditions(ctx context.Context, in SoilInput) Result {
	zoneID := strings.TrimSpace(in.ZoneID)

	moisture := round(r.rng.uniform(35, 75), 1)
	ec := round(r.rng.uniform(0.8, 2.5), 2)
	ph := round(r.rng.uniform(6.0, 7.5), 1)
	source := sourceSimulate

	if reading := r.latestReading(ctx, zoneID); reading != nil {
		if reading.SoilMoisture != nil {
			moisture = round(*reading.SoilMoisture, 1)
			source = sourceStored
		}
		if reading.SoilPH != nil {
			ph = round(*reading.SoilPH, 1)
			source = sourceStored
		}
	}

	if v, ok := numberFrom(in.SensorData, "moisture", "soil_moisture", "moisture_percent"); ok {
		moisture = v
		source = sourceProvided
	}
	if v, ok := numberFrom(in.SensorData, "ec", "ec_ds_m"); ok {
		ec = v
		source = sourceProvided
	}
	if v, ok := numberFrom(in.SensorData, "ph", "soil_ph"); ok {
		ph = v
		source = sourceProvided
	}

	moisture = clamp(moisture, 0, 100)
	ec = clamp(ec, 0, 20)
	ph = clamp(ph, 0, 14)

	return Result{
		"zone_id":          zoneID,
		"timestamp":        r.timestamp(),
		"data_source":      source,
		"moisture_percent": moisture,
		"moisture_status":  moistureStatus(moisture),
		"ec_ds_m":          ec,
		"ec_status":        ecStatus(ec),
		"ph":               ph,
		"ph_status":        phStatus(ph),
		"overall_status":   SoilStatus(moisture, ec),
		"recommendations": []string{
			fmt.Sprintf("Moisture at %.1f%% - %s", moisture, pick(moisture < 40, "Irrigation needed soon", "Adequate for now")),
			fmt.Sprintf("EC at %.2f dS/m - %s", ec, pick(ec > 2.0, "Flush with low-EC water", "Within acceptable range")),
			fmt.Sprintf("pH at %.1f - %s", ph, pick(ph < 6.0 || ph > 7.0, "Consider adjustment", "Optimal range")),
		},
	}
}

// SoilStatus rates soil conditions: critical below 20% moisture or above
// 2.5 dS/m, warning below 30% or above 2.0 dS/m, good otherwise.
func SoilStatus(moisture, ec float64) string {
	switch {
	case moisture < 20 || ec > 2.5:
		return "critical"
	case moisture < 30 || ec > 2.0:
		return "warning"
	default:
		return "good"
	}
}

func (r *Registry) latestReading(ctx context.Context, zoneID string) *SensorReading {
	if r.sensors == nil || zoneID == "" {
		return nil
	}
	reading, err := r.sensors.LatestReading(ctx, zoneID)
	if err != nil {
		r.log.Warn().Err(err).Str("zone_id", zoneID).Msg("sensor lookup failed, using simulated soil data")
		return nil
	}
	return reading
}

func moistureStatus(m float64) string {
	switch {
	case m > 40:
		return "🟢 Good"
	case m > 25:
		return "🟡 Low"
	default:
		return "🔴 Critical"
	}
}

func ecStatus(ec float64) string {
	switch {
	case ec < 1.5:
		return "🟢 Good"
	case ec < 2.5:
		return "🟡 High"
	default:
		return "🔴 Critical"
	}
}

func phStatus(ph float64) string {
	if ph >= 6.0 && ph <= 7.0 {
		return "🟢 Optimal"
	}
	return "🟡 Suboptimal"
}

func numberFrom(values map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := values[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
