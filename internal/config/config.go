package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix is prepended to environment overrides, e.g. STARHERO_VEHICLE_MAX_SPEED.
const EnvPrefix = "STARHERO"

// Config holds every tunable of the simulation core and its hosts.
type Config struct {
	Vehicle   VehicleConfig   `yaml:"vehicle" mapstructure:"vehicle"`
	Pools     PoolsConfig     `yaml:"pools" mapstructure:"pools"`
	Weapon    WeaponConfig    `yaml:"weapon" mapstructure:"weapon"`
	Rocks     RocksConfig     `yaml:"rocks" mapstructure:"rocks"`
	Collision CollisionConfig `yaml:"collision" mapstructure:"collision"`
	Abilities AbilityConfig   `yaml:"abilities" mapstructure:"abilities"`
	Hazard    HazardConfig    `yaml:"hazard" mapstructure:"hazard"`
	Audio     AudioConfig     `yaml:"audio" mapstructure:"audio"`
	Ghost     GhostConfig     `yaml:"ghost" mapstructure:"ghost"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Sim       SimConfig       `yaml:"sim" mapstructure:"sim"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// VehicleConfig is the flight model. Drag and TurnDamping are per-frame factors.
type VehicleConfig struct {
	ThrustAccel     float64 `yaml:"thrust_accel" mapstructure:"thrust_accel"`
	BoostMultiplier float64 `yaml:"boost_multiplier" mapstructure:"boost_multiplier"`
	Drag            float64 `yaml:"drag" mapstructure:"drag"`
	TurnSpeed       float64 `yaml:"turn_speed" mapstructure:"turn_speed"`
	TurnDamping     float64 `yaml:"turn_damping" mapstructure:"turn_damping"`
	MaxSpeed        float64 `yaml:"max_speed" mapstructure:"max_speed"`
	BaseSpeed       float64 `yaml:"base_speed" mapstructure:"base_speed"`   // thrust with no directional intent
	PitchLimit      float64 `yaml:"pitch_limit" mapstructure:"pitch_limit"` // radians, symmetric
	BankFactor      float64 `yaml:"bank_factor" mapstructure:"bank_factor"`
	BankEase        float64 `yaml:"bank_ease" mapstructure:"bank_ease"`
	Radius          float64 `yaml:"radius" mapstructure:"radius"`
	StartHeight     float64 `yaml:"start_height" mapstructure:"start_height"`
	MaxHitPoints    int     `yaml:"max_hit_points" mapstructure:"max_hit_points"`
	MaxShield       float64 `yaml:"max_shield" mapstructure:"max_shield"`
}

// PoolsConfig holds the fixed capacity of each entity family.
type PoolsConfig struct {
	Projectiles int `yaml:"projectiles" mapstructure:"projectiles"`
	Explosions  int `yaml:"explosions" mapstructure:"explosions"`
	Hazards     int `yaml:"hazards" mapstructure:"hazards"`
	Pickups     int `yaml:"pickups" mapstructure:"pickups"`
	Rocks       int `yaml:"rocks" mapstructure:"rocks"`
}

// WeaponConfig tunes the primary gun and projectile homing.
type WeaponConfig struct {
	FireRate         float64 `yaml:"fire_rate" mapstructure:"fire_rate"` // seconds between shots
	ProjectileSpeed  float64 `yaml:"projectile_speed" mapstructure:"projectile_speed"`
	ProjectileLife   float64 `yaml:"projectile_life" mapstructure:"projectile_life"`
	ProjectileRadius float64 `yaml:"projectile_radius" mapstructure:"projectile_radius"`
	HomingTurn       float64 `yaml:"homing_turn" mapstructure:"homing_turn"` // rad/s
	HomingRange      float64 `yaml:"homing_range" mapstructure:"homing_range"`
	HomingCone       float64 `yaml:"homing_cone" mapstructure:"homing_cone"` // cosine of the acquisition half-angle
}

// RocksConfig describes the rock field kept around the vehicle.
type RocksConfig struct {
	SeedMin      float64 `yaml:"seed_min" mapstructure:"seed_min"`
	SeedMax      float64 `yaml:"seed_max" mapstructure:"seed_max"`
	WrapDistance float64 `yaml:"wrap_distance" mapstructure:"wrap_distance"`
	RelocateMin  float64 `yaml:"relocate_min" mapstructure:"relocate_min"`
	RelocateMax  float64 `yaml:"relocate_max" mapstructure:"relocate_max"`
	Proximity    float64 `yaml:"proximity" mapstructure:"proximity"`
}

// CollisionConfig tunes damage, shield absorption and drops.
type CollisionConfig struct {
	AbsorbThreshold   float64 `yaml:"absorb_threshold" mapstructure:"absorb_threshold"`
	ShieldCostPerSize float64 `yaml:"shield_cost_per_size" mapstructure:"shield_cost_per_size"`
	DamagePerSize     float64 `yaml:"damage_per_size" mapstructure:"damage_per_size"`
	HitGrace          float64 `yaml:"hit_grace" mapstructure:"hit_grace"`
	PickupChance      float64 `yaml:"pickup_chance" mapstructure:"pickup_chance"`
	PickupRadius      float64 `yaml:"pickup_radius" mapstructure:"pickup_radius"`
	PickupLife        float64 `yaml:"pickup_life" mapstructure:"pickup_life"`
	GridCell          float64 `yaml:"grid_cell" mapstructure:"grid_cell"`
}

// AbilityConfig holds timings for the maneuver and charge abilities.
type AbilityConfig struct {
	DoubleTap        float64 `yaml:"double_tap" mapstructure:"double_tap"`
	RollDuration     float64 `yaml:"roll_duration" mapstructure:"roll_duration"`
	ComboWindow      float64 `yaml:"combo_window" mapstructure:"combo_window"`
	RollKickRatio    float64 `yaml:"roll_kick_ratio" mapstructure:"roll_kick_ratio"`
	RollKickMin      float64 `yaml:"roll_kick_min" mapstructure:"roll_kick_min"`
	FlipDuration     float64 `yaml:"flip_duration" mapstructure:"flip_duration"`
	FlipPullback     float64 `yaml:"flip_pullback" mapstructure:"flip_pullback"`
	FTLCharge        float64 `yaml:"ftl_charge" mapstructure:"ftl_charge"`
	FTLCooldown      float64 `yaml:"ftl_cooldown" mapstructure:"ftl_cooldown"`
	FTLMinDistance   float64 `yaml:"ftl_min_distance" mapstructure:"ftl_min_distance"`
	FTLMaxDistance   float64 `yaml:"ftl_max_distance" mapstructure:"ftl_max_distance"`
	NovaCharge       float64 `yaml:"nova_charge" mapstructure:"nova_charge"`
	NovaCooldown     float64 `yaml:"nova_cooldown" mapstructure:"nova_cooldown"`
	NovaMinRadius    float64 `yaml:"nova_min_radius" mapstructure:"nova_min_radius"`
	NovaMaxRadius    float64 `yaml:"nova_max_radius" mapstructure:"nova_max_radius"`
	ShieldRegen      float64 `yaml:"shield_regen" mapstructure:"shield_regen"` // energy per second
	ShieldRegenDelay float64 `yaml:"shield_regen_delay" mapstructure:"shield_regen_delay"`
}

// HazardConfig schedules meteor-storm episodes.
type HazardConfig struct {
	FirstDelay    float64 `yaml:"first_delay" mapstructure:"first_delay"`
	IntervalMin   float64 `yaml:"interval_min" mapstructure:"interval_min"`
	IntervalMax   float64 `yaml:"interval_max" mapstructure:"interval_max"`
	DurationMin   float64 `yaml:"duration_min" mapstructure:"duration_min"`
	DurationMax   float64 `yaml:"duration_max" mapstructure:"duration_max"`
	SpawnMin      float64 `yaml:"spawn_min" mapstructure:"spawn_min"`
	SpawnMax      float64 `yaml:"spawn_max" mapstructure:"spawn_max"`
	DistanceMin   float64 `yaml:"distance_min" mapstructure:"distance_min"`
	DistanceMax   float64 `yaml:"distance_max" mapstructure:"distance_max"`
	SpeedMin      float64 `yaml:"speed_min" mapstructure:"speed_min"`
	SpeedMax      float64 `yaml:"speed_max" mapstructure:"speed_max"`
	RadiusMin     float64 `yaml:"radius_min" mapstructure:"radius_min"`
	RadiusMax     float64 `yaml:"radius_max" mapstructure:"radius_max"`
	Life          float64 `yaml:"life" mapstructure:"life"`
	BossEvery     int     `yaml:"boss_every" mapstructure:"boss_every"` // 0 disables bosses
	BossRadius    float64 `yaml:"boss_radius" mapstructure:"boss_radius"`
	BossHitPoints int     `yaml:"boss_hit_points" mapstructure:"boss_hit_points"`
	BossSpeed     float64 `yaml:"boss_speed" mapstructure:"boss_speed"`
	DangerRange   float64 `yaml:"danger_range" mapstructure:"danger_range"`
}

// AudioConfig tunes the adaptive soundtrack.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	SampleRate int     `yaml:"sample_rate" mapstructure:"sample_rate"`
	BaseBPM    float64 `yaml:"base_bpm" mapstructure:"base_bpm"`
	SpeedBPM   float64 `yaml:"speed_bpm" mapstructure:"speed_bpm"`
	DangerBPM  float64 `yaml:"danger_bpm" mapstructure:"danger_bpm"`
	MinBPM     float64 `yaml:"min_bpm" mapstructure:"min_bpm"`
	MaxBPM     float64 `yaml:"max_bpm" mapstructure:"max_bpm"`
	Lookahead  float64 `yaml:"lookahead" mapstructure:"lookahead"`
	Epsilon    float64 `yaml:"epsilon" mapstructure:"epsilon"`
	GainTau    float64 `yaml:"gain_tau" mapstructure:"gain_tau"`
}

// GhostConfig controls pose broadcasting between pilots.
type GhostConfig struct {
	PublishInterval float64  `yaml:"publish_interval" mapstructure:"publish_interval"`
	StaleAfter      float64  `yaml:"stale_after" mapstructure:"stale_after"`
	Listen          string   `yaml:"listen" mapstructure:"listen"` // UDP address, empty disables
	Peers           []string `yaml:"peers,omitempty" mapstructure:"peers"`
}

// StoreConfig selects the persistence backend ("sqlite" or "memory").
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// SimConfig holds frame orchestration settings.
type SimConfig struct {
	FPS                    int     `yaml:"fps" mapstructure:"fps"`
	MaxDelta               float64 `yaml:"max_delta" mapstructure:"max_delta"`
	RespawnDelay           float64 `yaml:"respawn_delay" mapstructure:"respawn_delay"`
	RespawnInvulnerability float64 `yaml:"respawn_invulnerability" mapstructure:"respawn_invulnerability"`
	Seed                   int64   `yaml:"seed" mapstructure:"seed"` // 0 seeds from the clock
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Console bool   `yaml:"console" mapstructure:"console"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the embedded defaults, merges the optional file at path on top
// and applies STARHERO_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the core cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Sim.FPS <= 0:
		return fmt.Errorf("sim.fps must be positive, got %d", c.Sim.FPS)
	case c.Vehicle.MaxSpeed <= 0:
		return fmt.Errorf("vehicle.max_speed must be positive, got %g", c.Vehicle.MaxSpeed)
	case c.Vehicle.Drag <= 0 || c.Vehicle.Drag > 1:
		return fmt.Errorf("vehicle.drag must be in (0, 1], got %g", c.Vehicle.Drag)
	case c.Pools.Projectiles < 0 || c.Pools.Explosions < 0 || c.Pools.Hazards < 0 ||
		c.Pools.Pickups < 0 || c.Pools.Rocks < 0:
		return fmt.Errorf("pool capacities must not be negative")
	case c.Audio.MinBPM <= 0 || c.Audio.MaxBPM < c.Audio.MinBPM:
		return fmt.Errorf("audio bpm range [%g, %g] is invalid", c.Audio.MinBPM, c.Audio.MaxBPM)
	case c.Collision.GridCell <= 0:
		return fmt.Errorf("collision.grid_cell must be positive, got %g", c.Collision.GridCell)
	case c.Hazard.SpawnMin <= 0 || c.Hazard.SpawnMax < c.Hazard.SpawnMin:
		return fmt.Errorf("hazard spawn interval [%g, %g] is invalid", c.Hazard.SpawnMin, c.Hazard.SpawnMax)
	case c.Abilities.FTLCharge <= 0 || c.Abilities.FTLCooldown <= 0:
		return fmt.Errorf("abilities.ftl_charge and ftl_cooldown must be positive")
	case c.Abilities.NovaCharge <= 0 || c.Abilities.NovaCooldown <= 0:
		return fmt.Errorf("abilities.nova_charge and nova_cooldown must be positive")
	}
	return nil
}

// WriteYAML dumps the effective configuration.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
