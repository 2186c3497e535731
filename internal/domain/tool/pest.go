package tool

import (
	"context"
	"fmt"
	"strings"
)

var (
	pestSpecies    = []string{"Locust", "Stem Borer", "Aphids", "Whitefly"}
	pestSeverities = []string{"low", "moderate", "high"}
)

// PestInput is the argument of detect_pest_activity.
type PestInput struct {
	ZoneID       string `json:"zone_id" jsonschema_description:"Identifier of the farm zone"`
	AcousticData string `json:"acoustic_data,omitempty" jsonschema_description:"Optional acoustic recording path or sensor id"`
}

func (r *Registry) pestActivity(_ context.Context, in PestInput) Result {
	zoneID := strings.TrimSpace(in.ZoneID)
	out := Result{
		"zone_id":   zoneID,
		"timestamp": r.timestamp(),
	}
	if signal := strings.TrimSpace(in.AcousticData); signal != "" {
		out["signal_source"] = signal
	}

	if r.rng.chance() <= 0.7 {
		out["pest_detected"] = false
		out["status"] = "🟢 No significant pest activity detected"
		out["confidence"] = 0.92
		out["recommendations"] = []string{"Continue regular monitoring", "Maintain preventive measures"}
		return out
	}

	species := r.rng.pick(pestSpecies)
	severity := r.rng.pick(pestSeverities)

	indicator := "🔴"
	switch severity {
	case "low":
		indicator = "🟡"
	case "moderate":
		indicator = "🟠"
	}

	out["pest_detected"] = true
	out["pest_species"] = species
	out["severity"] = severity
	out["status"] = fmt.Sprintf("%s %s detected - %s severity", indicator, species, severity)
	out["confidence"] = 0.85
	out["recommendations"] = []string{
		pick(severity == "high", "Immediate action needed for "+species+" infestation", "Monitor "+species+" activity closely"),
		pick(severity != "low", "Apply targeted treatment within 24-48 hours", "Consider preventive treatment"),
		"Increase monitoring frequency to daily",
		fmt.Sprintf("Check adjacent zones for spread (Zone %s)", zoneID),
	}
	return out
}
