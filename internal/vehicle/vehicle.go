// Package vehicle integrates the pilot's ship: orientation, thrust, drag and
// the speed limit, plus the hull and shield it carries into combat.
package vehicle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/input"
)

// Vehicle is the pilot-controlled ship. Orientation is Euler XYZ: Pitch
// about X, Yaw about Y, Bank about Z. Forward is -Z rotated by orientation.
type Vehicle struct {
	Position r3.Vec
	Velocity r3.Vec
	Speed    float64 // |Velocity|, refreshed by Advance

	Pitch, Yaw, Bank   float64
	PitchRate, YawRate float64

	HitPoints    int
	MaxHitPoints int
	Shield       float64
	MaxShield    float64
	Invulnerable float64 // seconds of immunity left
	Downed       bool

	Radius  float64
	Profile Profile
}

// New places a fresh ship slightly above the origin, facing -Z.
func New(cfg config.VehicleConfig, profile Profile) Vehicle {
	return Vehicle{
		Position:     r3.Vec{Y: cfg.StartHeight},
		HitPoints:    cfg.MaxHitPoints,
		MaxHitPoints: cfg.MaxHitPoints,
		Shield:       cfg.MaxShield,
		MaxShield:    cfg.MaxShield,
		Radius:       cfg.Radius,
		Profile:      profile.Normalize(),
	}
}

// Rotate applies the ship's orientation to a body-space vector.
func (v Vehicle) Rotate(u r3.Vec) r3.Vec {
	// Z (bank)
	sb, cb := math.Sincos(v.Bank)
	u = r3.Vec{X: u.X*cb - u.Y*sb, Y: u.X*sb + u.Y*cb, Z: u.Z}
	// Y (yaw)
	sy, cy := math.Sincos(v.Yaw)
	u = r3.Vec{X: u.X*cy + u.Z*sy, Y: u.Y, Z: -u.X*sy + u.Z*cy}
	// X (pitch)
	sp, cp := math.Sincos(v.Pitch)
	return r3.Vec{X: u.X, Y: u.Y*cp - u.Z*sp, Z: u.Y*sp + u.Z*cp}
}

// Forward is the unit vector the nose points along.
func (v Vehicle) Forward() r3.Vec {
	return v.Rotate(r3.Vec{Z: -1})
}

// Up is the unit vector through the canopy, including bank.
func (v Vehicle) Up() r3.Vec {
	return v.Rotate(r3.Vec{Y: 1})
}

// Alive reports whether the ship can take input and damage.
func (v Vehicle) Alive() bool {
	return !v.Downed && v.HitPoints > 0
}

// Advance integrates one frame. It is a pure function of its inputs;
// callers that override orientation (roll, flip) do so afterwards.
func Advance(v Vehicle, in input.Intent, cfg config.VehicleConfig, dt float64) Vehicle {
	// Turn intent accumulates into angular velocity
	if in.Left {
		v.YawRate += cfg.TurnSpeed * dt
	}
	if in.Right {
		v.YawRate -= cfg.TurnSpeed * dt
	}
	if in.Forward {
		v.PitchRate += cfg.TurnSpeed * dt
	}
	if in.Backward {
		v.PitchRate -= cfg.TurnSpeed * dt
	}
	v.YawRate *= cfg.TurnDamping
	v.PitchRate *= cfg.TurnDamping

	v.Yaw += v.YawRate * dt
	v.Pitch = clamp(v.Pitch+v.PitchRate*dt, -cfg.PitchLimit, cfg.PitchLimit)

	// Visual bank eases toward the turn rate
	targetBank := -v.YawRate * cfg.BankFactor
	v.Bank += (targetBank - v.Bank) * cfg.BankEase

	thrust := cfg.BaseSpeed
	if in.Directional() {
		thrust = cfg.ThrustAccel
	}
	if in.Boost {
		thrust *= cfg.BoostMultiplier
	}

	v.Velocity = r3.Add(v.Velocity, r3.Scale(thrust*dt, v.Forward()))
	v.Velocity = r3.Scale(cfg.Drag, v.Velocity)
	v.Velocity, v.Speed = LimitSpeed(v.Velocity, cfg.MaxSpeed)

	v.Position = r3.Add(v.Position, r3.Scale(dt, v.Velocity))

	if v.Invulnerable > 0 {
		v.Invulnerable = math.Max(0, v.Invulnerable-dt)
	}
	return v
}

// LimitSpeed rescales vel so its magnitude does not exceed max and returns
// the resulting speed.
func LimitSpeed(vel r3.Vec, max float64) (r3.Vec, float64) {
	speed := r3.Norm(vel)
	if speed > max {
		vel = r3.Scale(max/speed, vel)
		speed = max
	}
	return vel, speed
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
