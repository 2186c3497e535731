package tool

import (
	"context"
	"fmt"
	"strings"
)

const (
	baseIrrigationMinutes = 15
	flowLitresPerMinute   = 20
	defaultStageFactor    = 0.7
)

// GrowthStage is a crop development stage.
type GrowthStage string

const (
	StageSeedling   GrowthStage = "seedling"
	StageVegetative GrowthStage = "vegetative"
	StageFlowering  GrowthStage = "flowering"
	StageFruiting   GrowthStage = "fruiting"
	StageRipening   GrowthStage = "ripening"
)

var stageWaterFactor = map[GrowthStage]float64{
	StageSeedling:   0.3,
	StageVegetative: 0.6,
	StageFlowering:  0.8,
	StageFruiting:   1.0,
	StageRipening:   0.7,
}

type npk struct{ n, p, k int }

func (v npk) String() string { return fmt.Sprintf("%d-%d-%d", v.n, v.p, v.k) }

var stageNPK = map[GrowthStage]npk{
	StageSeedling:   {5, 5, 5},
	StageVegetative: {10, 5, 8},
	StageFlowering:  {5, 10, 15},
	StageFruiting:   {8, 12, 18},
	StageRipening:   {3, 8, 12},
}

func parseStage(s string) GrowthStage {
	return GrowthStage(strings.ToLower(strings.TrimSpace(s)))
}

// peak reports whether the stage needs water and nutrients every cycle.
func (g GrowthStage) peak() bool {
	return g == StageFlowering || g == StageFruiting
}

// IrrigationInput is the argument of calculate_irrigation_schedule.
type IrrigationInput struct {
	ZoneID      string         `json:"zone_id" jsonschema_description:"Identifier of the farm zone"`
	CropType    string         `json:"crop_type" jsonschema_description:"Crop grown in the zone, e.g. tomatoes, lettuce or date palms"`
	GrowthStage string         `json:"growth_stage" jsonschema_description:"seedling, vegetative, flowering, fruiting or ripening"`
	SoilData    map[string]any `json:"soil_data,omitempty" jsonschema_description:"Optional current soil moisture data"`
}

// IrrigationMinutes is the run time for a growth stage; unknown stages use
// the default factor.
func IrrigationMinutes(stage string) int {
	return int(baseIrrigationMinutes * waterFactor(parseStage(stage)))
}

func waterFactor(stage GrowthStage) float64 {
	if factor, ok := stageWaterFactor[stage]; ok {
		return factor
	}
	return defaultStageFactor
}

func (r *Registry) irrigationSchedule(_ context.Context, in IrrigationInput) Result {
	stage := parseStage(in.GrowthStage)
	factor := waterFactor(stage)
	duration := int(baseIrrigationMinutes * factor)
	zoneID := strings.TrimSpace(in.ZoneID)

	frequency := "Every 2 days"
	if stage.peak() {
		frequency = "Daily"
	}

	recs := []string{
		fmt.Sprintf("Run Zone %s: %d minutes at 6:00 AM", zoneID, duration),
		fmt.Sprintf("Current %s stage requires %s water", in.GrowthStage, pick(factor > 0.7, "high", "moderate")),
		"Reduce by 30% if rain forecasted (>5mm within 24h)",
		pick(stage == StageFruiting, "Monitor soil moisture daily during fruiting stage", "Check soil moisture every 2-3 days"),
	}
	if moisture, ok := numberFrom(in.SoilData, "moisture", "soil_moisture", "moisture_percent"); ok && moisture > 70 {
		recs = append(recs, fmt.Sprintf("Soil moisture already at %.1f%% - consider skipping the next cycle", moisture))
	}

	return Result{
		"zone_id":      zoneID,
		"crop_type":    in.CropType,
		"growth_stage": in.GrowthStage,
		"timestamp":    r.timestamp(),
		"schedule": map[string]any{
			"next_irrigation":     "06:00 AM",
			"duration_minutes":    duration,
			"frequency":           frequency,
			"water_amount_liters": duration * flowLitresPerMinute,
		},
		"recommendations": recs,
	}
}

// FertigationInput is the argument of recommend_fertigation.
type FertigationInput struct {
	CropType      string             `json:"crop_type" jsonschema_description:"Crop being fertigated"`
	GrowthStage   string             `json:"growth_stage" jsonschema_description:"seedling, vegetative, flowering, fruiting or ripening"`
	SoilNutrients map[string]float64 `json:"soil_nutrients,omitempty" jsonschema_description:"Optional soil test results keyed by nutrient (N, P, K, Ca, Mg)"`
}

// ECTarget is the fertigation solution EC for a potassium rating.
func ECTarget(k int) float64 {
	return round(1.2+float64(k)/20, 2)
}

func (r *Registry) fertigation(_ context.Context, in FertigationInput) Result {
	stage := parseStage(in.GrowthStage)
	ratio, ok := stageNPK[stage]
	if !ok {
		ratio = stageNPK[StageSeedling]
	}
	ec := ECTarget(ratio.k)

	frequency := "Every other irrigation"
	applyWhen := "every other irrigation"
	if stage.peak() {
		frequency = "Every irrigation"
		applyWhen = "with each irrigation"
	}
	concentration := 0.15
	if stage == StageSeedling {
		concentration = 0.1
	}

	recs := []string{
		fmt.Sprintf("Use %s fertilizer for %s stage", ratio, in.GrowthStage),
		fmt.Sprintf("Target EC: %.2f dS/m in fertigation solution", ec),
		"Apply " + applyWhen,
		"Flush with pure water every 2 weeks to prevent salt buildup",
		"Monitor leaf color and adjust N if yellowing occurs",
	}
	if n, ok := in.SoilNutrients["N"]; ok && n >= 40 {
		recs = append(recs, fmt.Sprintf("Soil N already at %.0f ppm - consider halving nitrogen", n))
	}

	return Result{
		"crop_type":    in.CropType,
		"growth_stage": in.GrowthStage,
		"timestamp":    r.timestamp(),
		"npk_ratio":    ratio.String(),
		"mixing_instructions": map[string]any{
			"nitrogen_g_per_L":   float64(ratio.n) / 10,
			"phosphorus_g_per_L": float64(ratio.p) / 10,
			"potassium_g_per_L":  float64(ratio.k) / 10,
			"ec_target_ds_m":     ec,
		},
		"application": map[string]any{
			"frequency":             frequency,
			"concentration_percent": concentration,
		},
		"recommendations": recs,
	}
}
