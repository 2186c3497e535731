package tool

import (
	"context"
	"fmt"
	"strings"
)

// WaterInput is the argument of analyze_water_quality.
type WaterInput struct {
	SourceID string `json:"source_id" jsonschema_description:"Water source identifier, e.g. well1, ro_system or storage_tank"`
}

func (r *Registry) waterQuality(_ context.Context, in WaterInput) Result {
	ec := round(r.rng.uniform(0.3, 1.8), 2)
	ph := round(r.rng.uniform(6.5, 8.0), 1)
	blend := ROBlendPercent(ec)

	suggestion := "Use as-is"
	if ec > 1.0 {
		suggestion = fmt.Sprintf("Mix %d%% RO water with source water", blend)
	}

	return Result{
		"source_id":      strings.TrimSpace(in.SourceID),
		"timestamp":      r.timestamp(),
		"ec_ds_m":        ec,
		"ph":             ph,
		"quality_rating": waterRating(ec),
		"mixing_recommendations": map[string]any{
			"ro_blend_percent": blend,
			"suggestion":       suggestion,
		},
		"notes": []string{
			fmt.Sprintf("EC: %.2f dS/m - %s", ec, pick(ec < 1.0, "Good quality", "High salinity, consider RO blending")),
			fmt.Sprintf("pH: %.1f - %s", ph, pick(ph < 6.5 || ph > 7.0, "Adjust to 6.5-7.0 range", "Within target range")),
		},
	}
}

// ROBlendPercent is the share of RO water to blend in for a source EC,
// clamped to [0, 100].
func ROBlendPercent(ec float64) int {
	if ec <= 0.5 {
		return 0
	}
	return int(clamp(float64(int((ec-0.5)*50)), 0, 100))
}

func waterRating(ec float64) string {
	switch {
	case ec < 0.75:
		return "🟢 Excellent"
	case ec < 1.5:
		return "🟡 Acceptable"
	default:
		return "🟠 Poor"
	}
}
