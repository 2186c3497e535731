package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownTool is returned when a tool name is not part of the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when tool arguments are not valid JSON for the tool input.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Kind enumerates the advisory tools the agent may call.
type Kind string

const (
	KindWeatherForecast    Kind = "get_weather_forecast"
	KindSoilConditions     Kind = "analyze_soil_conditions"
	KindWaterQuality       Kind = "analyze_water_quality"
	KindPestActivity       Kind = "detect_pest_activity"
	KindIrrigationSchedule Kind = "calculate_irrigation_schedule"
	KindFertigation        Kind = "recommend_fertigation"
	// KindReasonStep marks a planning step; it produces no domain data.
	KindReasonStep Kind = "reason_step"
)

// Kinds lists every tool kind in registration order.
var Kinds = []Kind{
	KindReasonStep,
	KindWeatherForecast,
	KindSoilConditions,
	KindWaterQuality,
	KindPestActivity,
	KindIrrigationSchedule,
	KindFertigation,
}

// ParseKind maps a tool name to its kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// IsReasoning reports whether the kind is the reasoning marker.
func (k Kind) IsReasoning() bool {
	return k == KindReasonStep
}

// Spec describes a tool to the orchestrator and API clients.
type Spec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Result is the JSON-serializable output of a tool.
type Result map[string]any

type handler func(ctx context.Context, raw json.RawMessage) (Result, error)

type definition struct {
	description string
	input       any
	invoke      handler
}

// Registry is the fixed table of advisory tools.
type Registry struct {
	defs    map[Kind]definition
	specs   []Spec
	weather WeatherSource
	sensors SensorSource
	rng     *randSource
	now     func() time.Time
	log     zerolog.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithWeatherSource sets where forecasts come from; without it forecasts are simulated.
func WithWeatherSource(source WeatherSource) Option {
	return func(r *Registry) { r.weather = source }
}

// WithSensorSource sets where soil readings come from; without it readings are simulated.
func WithSensorSource(source SensorSource) Option {
	return func(r *Registry) { r.sensors = source }
}

// WithSeed makes simulated values reproducible.
func WithSeed(seed uint64) Option {
	return func(r *Registry) { r.rng = newRandSource(seed) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger attaches a logger used for source fallbacks.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log.With().Str("component", "tool-registry").Logger() }
}

// NewRegistry builds the registry with every advisory tool.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rng: newRandSource(uint64(time.Now().UnixNano())),
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.defs = map[Kind]definition{
		KindReasonStep: {
			description: "Record one planning step before acting. Call this first to outline what you will check and why.",
			input:       ReasonStepInput{},
			invoke:      bind(r.reasonStep),
		},
		KindWeatherForecast: {
			description: "Get the weather forecast for a farm location: daily rainfall, temperature, humidity and reference evapotranspiration (ET0).",
			input:       WeatherInput{},
			invoke:      bind(r.weatherForecast),
		},
		KindSoilConditions: {
			description: "Analyze current soil or substrate conditions for a zone: moisture, EC (salinity) and pH with recommendations.",
			input:       SoilInput{},
			invoke:      bind(r.soilConditions),
		},
		KindWaterQuality: {
			description: "Analyze a water source (well, RO system, storage tank) for EC and pH and suggest RO blending.",
			input:       WaterInput{},
			invoke:      bind(r.waterQuality),
		},
		KindPestActivity: {
			description: "Detect pest activity in a zone from acoustic monitoring or field reports and rate its severity.",
			input:       PestInput{},
			invoke:      bind(r.pestActivity),
		},
		KindIrrigationSchedule: {
			description: "Calculate an irrigation schedule (start time, duration, frequency, volume) from crop type and growth stage.",
			input:       IrrigationInput{},
			invoke:      bind(r.irrigationSchedule),
		},
		KindFertigation: {
			description: "Recommend fertigation NPK ratio, mixing rates and EC target for a crop at a growth stage.",
			input:       FertigationInput{},
			invoke:      bind(r.fertigation),
		},
	}

	reflector := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	for _, k := range Kinds {
		def := r.defs[k]
		schema := reflector.Reflect(def.input)
		schema.Version = ""
		schema.ID = ""
		r.specs = append(r.specs, Spec{
			Name:        string(k),
			Description: def.description,
			Parameters:  schema,
		})
	}
	return r
}

// ListTools returns the spec of every tool in registration order.
func (r *Registry) ListTools() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Lookup resolves a tool name.
func (r *Registry) Lookup(name string) (Kind, error) {
	return ParseKind(name)
}

// Invoke runs the named tool with raw JSON arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.defs[kind].invoke(ctx, args)
}

func bind[In any](fn func(ctx context.Context, in In) Result) handler {
	return func(ctx context.Context, raw json.RawMessage) (Result, error) {
		var in In
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
		}
		return fn(ctx, in), nil
	}
}

func (r *Registry) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}
