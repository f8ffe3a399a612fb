package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
store:
  driver: sqlite
  path: ":memory:"
log:
  level: debug
scenario:
  hub: 4001 South 700 East
  service_date: "2026-01-01"
  fleet:
    deferred_departure_floor: 12:00 PM
    vehicles:
      - id: 1
        depart_at: 8:00 AM
      - id: 2
        depart_at: 9:05 AM
      - id: 3
  constraints:
    groups:
      - vehicle_id: 1
        parcel_ids: [13, 14, 15, 16, 19, 20]
    delayed:
      - parcel_ids: [6, 25, 28, 32]
        arrives_at: 9:05 AM
    correction:
      parcel_id: 9
      address: 410 S State St
      effective_at: 10:20 AM
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadScenario(t *testing.T) {
	cfg, err := Load(writeConfig(t, scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 18.0, cfg.Scenario.Fleet.SpeedMPH)
	assert.Equal(t, 16, cfg.Scenario.Fleet.Capacity)
	assert.Equal(t, 2, cfg.Scenario.Fleet.Drivers)
	assert.Equal(t, "debug", cfg.Log.Level)

	day, err := cfg.Scenario.Day()
	require.NoError(t, err)

	vehicles, err := cfg.Scenario.Vehicles(day)
	require.NoError(t, err)
	require.Len(t, vehicles, 3)
	require.NotNil(t, vehicles[1].DepartAt)
	assert.Equal(t, 9, vehicles[1].DepartAt.Hour())
	assert.Equal(t, 5, vehicles[1].DepartAt.Minute())
	assert.Nil(t, vehicles[2].DepartAt)
	assert.Equal(t, 16, vehicles[0].Capacity)

	c, err := cfg.Scenario.BuildConstraints(day)
	require.NoError(t, err)
	require.Len(t, c.Groups, 1)
	assert.Equal(t, 1, c.Groups[0].VehicleID)
	assert.Equal(t, []int{13, 14, 15, 16, 19, 20}, c.Groups[0].ParcelIDs)
	require.Len(t, c.Arrivals, 1)
	require.NotNil(t, c.Correction)
	assert.Equal(t, "410 S State St", c.Correction.Address)
	assert.Equal(t, 10, c.Correction.EffectiveAt.Hour())

	floor, err := cfg.Scenario.DeferredFloor(day)
	require.NoError(t, err)
	require.NotNil(t, floor)
	assert.Equal(t, 12, floor.Hour())

	shift, err := cfg.Scenario.Shift(day)
	require.NoError(t, err)
	assert.Equal(t, 8, shift.Hour())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DISPATCH_SERVER_PORT", "9090")
	t.Setenv("DISPATCH_REDIS_TTL", "2m")

	cfg, err := Load(writeConfig(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad driver": `
store:
  driver: mysql
scenario:
  hub: hub
  service_date: "2026-01-01"
  fleet:
    vehicles: [{id: 1}]
`,
		"bad clock": `
scenario:
  hub: hub
  service_date: "2026-01-01"
  fleet:
    vehicles: [{id: 1, depart_at: "25:00"}]
`,
		"no vehicles": `
scenario:
  hub: hub
  service_date: "2026-01-01"
`,
		"duplicate vehicle": `
scenario:
  hub: hub
  service_date: "2026-01-01"
  fleet:
    vehicles: [{id: 1}, {id: 1}]
`,
		"unknown key": `
scenario:
  hub: hub
  service_date: "2026-01-01"
  colour: blue
  fleet:
    vehicles: [{id: 1}]
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "set")
	assert.Equal(t, "set", Get("DISPATCH_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", Get("DISPATCH_TEST_MISSING", "fallback"))
}
