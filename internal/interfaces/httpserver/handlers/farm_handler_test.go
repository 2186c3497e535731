package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/farm"
	"agri-api/internal/interfaces/httpserver/responses"
)

func createZone(t *testing.T, f *fixture) (*farm.Farm, *farm.Zone) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/farms", "alice", map[string]any{
		"name":      "Oasis Farm",
		"latitude":  24.47,
		"longitude": 39.61,
		"crops":     []string{"dates", "tomato"},
	})
	assertStatus(t, w, http.StatusCreated)
	fm := decode[farm.Farm](t, w)

	w = f.do(t, http.MethodPost, "/api/v1/farms/"+fm.ID+"/zones", "alice", map[string]any{"name": "Greenhouse 1", "growth_stage": "flowering"})
	assertStatus(t, w, http.StatusCreated)
	z := decode[farm.Zone](t, w)
	return &fm, &z
}

func TestFarmHandler_FarmsAndZones(t *testing.T) {
	f := newFixture(t, nil)
	fm, z := createZone(t, f)
	assert.Equal(t, "alice", fm.OwnerID)
	assert.Equal(t, fm.ID, z.FarmID)

	w := f.do(t, http.MethodGet, "/api/v1/farms/"+fm.ID+"/zones", "alice", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, decode[responses.ListResponse[farm.Zone]](t, w).Total)

	w = f.do(t, http.MethodPatch, "/api/v1/farms/"+fm.ID, "alice", map[string]any{"soil_type": "sandy loam"})
	assertStatus(t, w, http.StatusOK)
	require.NotNil(t, decode[farm.Farm](t, w).SoilType)

	w = f.do(t, http.MethodGet, "/api/v1/farms/"+fm.ID, "bob", nil)
	assertStatus(t, w, http.StatusForbidden)

	w = f.do(t, http.MethodGet, "/api/v1/farms/missing", "alice", nil)
	assertStatus(t, w, http.StatusNotFound)

	w = f.do(t, http.MethodDelete, "/api/v1/farms/"+fm.ID, "alice", nil)
	assertStatus(t, w, http.StatusNoContent)

	w = f.do(t, http.MethodGet, "/api/v1/farms", "alice", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, decode[responses.ListResponse[farm.Farm]](t, w).Total)
}

func TestFarmHandler_CreateFarmValidation(t *testing.T) {
	f := newFixture(t, nil)

	tests := map[string]map[string]any{
		"missing name": {"latitude": 10},
		"latitude":     {"name": "x", "latitude": 95},
		"size":         {"name": "x", "size_hectares": -2},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/farms", "alice", body)
			assertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestFarmHandler_SensorReadings(t *testing.T) {
	f := newFixture(t, nil)
	_, z := createZone(t, f)

	w := f.do(t, http.MethodGet, "/api/v1/zones/"+z.ID+"/sensors/latest", "alice", nil)
	assertStatus(t, w, http.StatusNotFound)

	w = f.do(t, http.MethodPost, "/api/v1/sensors", "alice", map[string]any{
		"zone_id":           z.ID,
		"soil_moisture":     27.5,
		"soil_ph":           7.1,
		"reading_timestamp": "2025-06-01T05:30:00Z",
	})
	assertStatus(t, w, http.StatusCreated)

	w = f.do(t, http.MethodPost, "/api/v1/sensors", "alice", map[string]any{"zone_id": z.ID, "humidity": 120})
	assertStatus(t, w, http.StatusBadRequest)

	w = f.do(t, http.MethodPost, "/api/v1/sensors", "bob", map[string]any{"zone_id": z.ID, "soil_moisture": 10})
	assertStatus(t, w, http.StatusForbidden)

	w = f.do(t, http.MethodGet, "/api/v1/zones/"+z.ID+"/sensors/latest", "alice", nil)
	assertStatus(t, w, http.StatusOK)
	latest := decode[farm.SensorReading](t, w)
	require.NotNil(t, latest.SoilMoisture)
	assert.Equal(t, 27.5, *latest.SoilMoisture)

	w = f.do(t, http.MethodGet, "/api/v1/zones/"+z.ID+"/sensors", "alice", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, decode[responses.ListResponse[farm.SensorReading]](t, w).Total)

	for _, limit := range []string{"101", "-1", "ten"} {
		w = f.do(t, http.MethodGet, "/api/v1/zones/"+z.ID+"/sensors?limit="+limit, "alice", nil)
		assertStatus(t, w, http.StatusBadRequest)
	}

	w = f.do(t, http.MethodGet, "/api/v1/zones/"+z.ID+"/sensors", "bob", nil)
	assertStatus(t, w, http.StatusForbidden)
}
