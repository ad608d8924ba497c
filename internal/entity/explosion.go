package entity

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
)

// ExplosionKind tells the renderer and audio which effect an entry is.
type ExplosionKind int

const (
	ExplosionRock ExplosionKind = iota
	ExplosionHazard
	ExplosionShip
	ExplosionNova
	ExplosionFlip
	ExplosionRipple
)

// Explosion is a visual effect: an expanding core or a drifting spark.
type Explosion struct {
	Kind    ExplosionKind
	Radius  float64
	MaxLife float64
	Spark   bool
}

// Fraction is the elapsed share of the effect's lifetime in [0, 1].
func Fraction(s *pool.Slot[Explosion]) float64 {
	if s.Payload.MaxLife <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, 1-s.Life/s.Payload.MaxLife))
}

// Burst spawns an expanding core plus sparks flying outward. Returns the
// number of entries that fit in the pool.
func (w *World) Burst(rng *rand.Rand, kind ExplosionKind, at r3.Vec, radius float64, sparks int) int {
	life := 0.4 + radius*0.1
	n := 0
	if _, ok := w.Explosions.Spawn(pool.Spawn[Explosion]{
		Position: at,
		Life:     life,
		Payload:  Explosion{Kind: kind, Radius: radius, MaxLife: life},
	}); ok {
		n++
	}
	for i := 0; i < sparks; i++ {
		// Random direction, speed 5-20, lifetime 0.3-0.7s
		speed := physics.Between(rng, 5, 20)
		sparkLife := physics.Between(rng, 0.3, 0.7)
		if _, ok := w.Explosions.Spawn(pool.Spawn[Explosion]{
			Position: at,
			Velocity: physics.OnSphere(rng, r3.Vec{}, speed),
			Life:     sparkLife,
			Payload:  Explosion{Kind: kind, MaxLife: sparkLife, Spark: true},
		}); !ok {
			break
		}
		n++
	}
	return n
}

// Sparks slow down like the old terminal particles: drag normalized to 60fps.
func dampExplosion(s *pool.Slot[Explosion], dt float64) {
	if s.Payload.Spark {
		s.Velocity = r3.Scale(math.Pow(0.95, dt*60), s.Velocity)
	}
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
}
