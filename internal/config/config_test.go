package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault_FlightModel(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 12.0, cfg.Vehicle.ThrustAccel)
	assert.Equal(t, 2.5, cfg.Vehicle.BoostMultiplier)
	assert.Equal(t, 0.97, cfg.Vehicle.Drag)
	assert.Equal(t, 1.8, cfg.Vehicle.TurnSpeed)
	assert.Equal(t, 0.92, cfg.Vehicle.TurnDamping)
	assert.Equal(t, 40.0, cfg.Vehicle.MaxSpeed)
	assert.Equal(t, 4.0, cfg.Vehicle.BaseSpeed)
	assert.Equal(t, 35, cfg.Pools.Rocks)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starhero.yaml")
	body := "vehicle:\n  max_speed: 55\npools:\n  rocks: 20\nstore:\n  driver: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 55.0, cfg.Vehicle.MaxSpeed)
	assert.Equal(t, 20, cfg.Pools.Rocks)
	assert.Equal(t, "memory", cfg.Store.Driver)
	// untouched keys keep their defaults
	assert.Equal(t, 0.97, cfg.Vehicle.Drag)
	assert.Equal(t, 64, cfg.Pools.Projectiles)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STARHERO_AUDIO_BASE_BPM", "120")
	t.Setenv("STARHERO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 120.0, cfg.Audio.BaseBPM)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicle:\n  drag: 1.5\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "vehicle.drag")
}

func TestValidate_RejectsDegenerateTimings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero spawn interval", func(c *Config) { c.Hazard.SpawnMin, c.Hazard.SpawnMax = 0, 0 }, "spawn interval"},
		{"inverted spawn interval", func(c *Config) { c.Hazard.SpawnMin, c.Hazard.SpawnMax = 2, 1 }, "spawn interval"},
		{"zero ftl charge", func(c *Config) { c.Abilities.FTLCharge = 0 }, "ftl_charge"},
		{"zero ftl cooldown", func(c *Config) { c.Abilities.FTLCooldown = 0 }, "ftl_cooldown"},
		{"zero nova charge", func(c *Config) { c.Abilities.NovaCharge = 0 }, "nova_charge"},
		{"negative nova cooldown", func(c *Config) { c.Abilities.NovaCooldown = -1 }, "nova_cooldown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestWriteYAML_RoundTripsDefaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteYAML(&buf))

	var back Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, Default(), back)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("STARHERO_TEST_HOST", "example")
	assert.Equal(t, "example", GetEnv("STARHERO_TEST_HOST", "fallback"))
	assert.Equal(t, "fallback", GetEnv("STARHERO_TEST_UNSET", "fallback"))
}
