package tool

import (
	"context"
	"strings"
)

// ReasonStepInput is the argument of reason_step.
type ReasonStepInput struct {
	Title  string `json:"title" jsonschema_description:"Short name of the step, e.g. Check soil moisture"`
	Detail string `json:"detail" jsonschema_description:"What will be checked and why"`
}

func (r *Registry) reasonStep(_ context.Context, in ReasonStepInput) Result {
	return Result{
		"status":    "recorded",
		"title":     strings.TrimSpace(in.Title),
		"detail":    strings.TrimSpace(in.Detail),
		"timestamp": r.timestamp(),
	}
}
