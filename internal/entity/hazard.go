package entity

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/pool"
)

// HazardKind distinguishes storm meteors from bosses.
type HazardKind int

const (
	HazardMeteor HazardKind = iota
	HazardBoss
)

func (k HazardKind) String() string {
	if k == HazardBoss {
		return "boss"
	}
	return "meteor"
}

// Hazard is a hostile body flying at the vehicle.
type Hazard struct {
	Kind      HazardKind
	Radius    float64
	HitPoints int
}

// SpawnHazard launches a hazard from at with velocity vel.
func (w *World) SpawnHazard(kind HazardKind, at, vel r3.Vec, radius float64, hp int, life float64) (pool.Handle, bool) {
	if hp < 1 {
		hp = 1
	}
	return w.Hazards.Spawn(pool.Spawn[Hazard]{
		Position: at,
		Velocity: vel,
		Life:     life,
		Payload:  Hazard{Kind: kind, Radius: radius, HitPoints: hp},
	})
}
