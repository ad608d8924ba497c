package entity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/pool"
)

// Resource is what a pickup restores or awards.
type Resource int

const (
	ResourceShield Resource = iota
	ResourceHull
	ResourceCrystal
	numResources
)

func (r Resource) String() string {
	switch r {
	case ResourceShield:
		return "shield"
	case ResourceHull:
		return "hull"
	default:
		return "crystal"
	}
}

// Pickup is a collectible floating where a rock broke.
type Pickup struct {
	Resource Resource
	Amount   float64
}

// Drop places a pickup with a small outward drift.
func (w *World) Drop(res Resource, amount float64, at, drift r3.Vec, life float64) (pool.Handle, bool) {
	return w.Pickups.Spawn(pool.Spawn[Pickup]{
		Position: at,
		Velocity: drift,
		Life:     life,
		Payload:  Pickup{Resource: res, Amount: amount},
	})
}

// RandomResource picks a resource kind from a uniform roll in [0, 1).
func RandomResource(roll float64) Resource {
	return Resource(int(roll * float64(numResources)))
}

func dampPickup(s *pool.Slot[Pickup], dt float64) {
	s.Velocity = r3.Scale(math.Pow(0.9, dt*60), s.Velocity)
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
}
