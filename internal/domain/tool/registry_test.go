package tool

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestRegistry(opts ...Option) *Registry {
	base := []Option{WithSeed(42), WithClock(func() time.Time { return fixedNow })}
	return NewRegistry(append(base, opts...)...)
}

func TestRegistry_ListTools(t *testing.T) {
	r := newTestRegistry()
	specs := r.ListTools()
	require.Len(t, specs, len(Kinds))

	for i, spec := range specs {
		assert.Equal(t, string(Kinds[i]), spec.Name)
		assert.NotEmpty(t, spec.Description)
		require.NotNil(t, spec.Parameters)
		assert.Equal(t, "object", spec.Parameters.Type)
	}
	assert.Equal(t, "reason_step", specs[0].Name)
}

func TestRegistry_ListToolsReturnsCopy(t *testing.T) {
	r := newTestRegistry()
	specs := r.ListTools()
	specs[0].Name = "mutated"
	assert.Equal(t, "reason_step", r.ListTools()[0].Name)
}

func TestRegistry_SchemaRequiredFields(t *testing.T) {
	r := newTestRegistry()
	byName := map[string]Spec{}
	for _, s := range r.ListTools() {
		byName[s.Name] = s
	}

	weather := byName[string(KindWeatherForecast)].Parameters
	assert.Contains(t, weather.Required, "location")
	assert.NotContains(t, weather.Required, "days")
	_, ok := weather.Properties.Get("days")
	assert.True(t, ok)

	irrigation := byName[string(KindIrrigationSchedule)].Parameters
	assert.ElementsMatch(t, []string{"zone_id", "crop_type", "growth_stage"}, irrigation.Required)
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry()

	kind, err := r.Lookup("analyze_soil_conditions")
	require.NoError(t, err)
	assert.Equal(t, KindSoilConditions, kind)

	_, err = r.Lookup("launch_rockets")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Invoke(context.Background(), "does_not_exist", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_InvokeInvalidArguments(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Invoke(context.Background(), string(KindWaterQuality), json.RawMessage(`{"source_id": 12`))
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = r.Invoke(context.Background(), string(KindWaterQuality), json.RawMessage(`{"source_id": 12}`))
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestRegistry_InvokeEmptyArguments(t *testing.T) {
	r := newTestRegistry()
	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`), json.RawMessage(`  `)} {
		out, err := r.Invoke(context.Background(), string(KindReasonStep), raw)
		require.NoError(t, err)
		assert.Equal(t, "recorded", out["status"])
	}
}

func TestRegistry_InvokeCancelledContext(t *testing.T) {
	r := newTestRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Invoke(ctx, string(KindWaterQuality), json.RawMessage(`{"source_id":"well1"}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_ResultsAreJSONSerializable(t *testing.T) {
	r := newTestRegistry()
	args := map[Kind]string{
		KindReasonStep:         `{"title":"Plan","detail":"check soil"}`,
		KindWeatherForecast:    `{"location":"Riyadh","days":3}`,
		KindSoilConditions:     `{"zone_id":"Z1"}`,
		KindWaterQuality:       `{"source_id":"well1"}`,
		KindPestActivity:       `{"zone_id":"Z1"}`,
		KindIrrigationSchedule: `{"zone_id":"Z1","crop_type":"tomatoes","growth_stage":"fruiting"}`,
		KindFertigation:        `{"crop_type":"tomatoes","growth_stage":"flowering"}`,
	}
	for _, k := range Kinds {
		out, err := r.Invoke(context.Background(), string(k), json.RawMessage(args[k]))
		require.NoError(t, err, k)
		_, err = json.Marshal(out)
		require.NoError(t, err, k)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	assert.True(t, KindReasonStep.IsReasoning())
	assert.False(t, KindFertigation.IsReasoning())
}
