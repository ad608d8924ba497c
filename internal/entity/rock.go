package entity

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
)

// Material is the surface look of a rock.
type Material int

const (
	MaterialRocky Material = iota
	MaterialMetallic
	MaterialCrystal
)

// RockVertices is the number of outline points of a rock.
const RockVertices = 10

// Rock is an obstacle of the field. Rocks are never destroyed: hits move
// them elsewhere so the field population stays constant.
type Rock struct {
	Size     float64
	Material Material
	Spin     r3.Vec // rad/s about each axis
	Angle    r3.Vec
	Outline  [RockVertices]float64 // radius factor per outline vertex
}

// RockSize rolls the field's size distribution: 60% small (0.3-1),
// 30% medium (1-4), 10% large (4-8).
func RockSize(rng *rand.Rand) float64 {
	roll := rng.Float64()
	switch {
	case roll < 0.6:
		return physics.Between(rng, 0.3, 1)
	case roll < 0.9:
		return physics.Between(rng, 1, 4)
	default:
		return physics.Between(rng, 4, 8)
	}
}

// NewRock rolls a rock of the given size.
func NewRock(rng *rand.Rand, size float64) Rock {
	r := Rock{Size: size, Material: Material(rng.Intn(3))}
	// Big rocks spin slower
	scale := 1 / math.Max(size, 1)
	r.Spin = r3.Vec{
		X: physics.Between(rng, 0.1, 1.5) * scale,
		Y: physics.Between(rng, 0.1, 1.5) * scale,
		Z: physics.Between(rng, 0.1, 1.5) * scale,
	}
	// Vary radius by ±20% for an irregular outline
	for i := range r.Outline {
		r.Outline[i] = physics.Between(rng, 0.8, 1.2)
	}
	return r
}

// SeedRocks fills the rock pool around center.
func (w *World) SeedRocks(rng *rand.Rand, center r3.Vec, cfg config.RocksConfig) {
	for w.Rocks.Len() < w.Rocks.Cap() {
		w.Rocks.Spawn(pool.Spawn[Rock]{
			Position: physics.InShell(rng, center, cfg.SeedMin, cfg.SeedMax),
			Life:     pool.Forever,
			Payload:  NewRock(rng, RockSize(rng)),
		})
	}
}

// RelocateRock moves a rock to a random point of the relocation shell
// around center, keeping its identity and size.
func RelocateRock(rng *rand.Rand, s *pool.Slot[Rock], center r3.Vec, cfg config.RocksConfig) {
	s.Position = physics.InShell(rng, center, cfg.RelocateMin, cfg.RelocateMax)
	s.Velocity = r3.Vec{}
}

// WrapRocks relocates rocks that fell behind the wrap distance. Returns
// how many moved.
func (w *World) WrapRocks(rng *rand.Rand, center r3.Vec, cfg config.RocksConfig) int {
	moved := 0
	limit := cfg.WrapDistance * cfg.WrapDistance
	w.Rocks.ForEachActive(func(_ pool.Handle, s *pool.Slot[Rock]) bool {
		if physics.DistanceSquared(s.Position, center) > limit {
			RelocateRock(rng, s, center, cfg)
			moved++
		}
		return true
	})
	return moved
}

// Proximity returns how close the nearest large rock (size >= 3) is, as
// 0 (outside range) to 1 (touching).
func (w *World) Proximity(at r3.Vec, radius float64) float64 {
	closest := math.Inf(1)
	w.Rocks.ForEachActive(func(_ pool.Handle, s *pool.Slot[Rock]) bool {
		if s.Payload.Size < 3 {
			return true
		}
		closest = math.Min(closest, physics.Distance(s.Position, at))
		return true
	})
	if radius <= 0 || closest >= radius {
		return 0
	}
	return 1 - closest/radius
}

func spinRock(s *pool.Slot[Rock], dt float64) {
	s.Payload.Angle = r3.Add(s.Payload.Angle, r3.Scale(dt, s.Payload.Spin))
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
}
