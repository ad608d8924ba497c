package collision

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
)

// bounceHazards makes overlapping hazards collide elastically. The hazard
// pool is small, so pairs are checked directly.
func bounceHazards(w *entity.World) {
	w.Hazards.ForEachActive(func(h1 pool.Handle, a *pool.Slot[entity.Hazard]) bool {
		w.Hazards.ForEachActive(func(h2 pool.Handle, b *pool.Slot[entity.Hazard]) bool {
			if h2.Index() <= h1.Index() {
				return true // Skip self and already-checked pairs
			}
			dist := physics.Distance(a.Position, b.Position)
			if dist > 0 && dist < a.Payload.Radius+b.Payload.Radius {
				bounce(a, b, dist)
			}
			return true
		})
		return true
	})
}

// bounce resolves an elastic collision between two hazards, using radius
// cubed as mass.
func bounce(a, b *pool.Slot[entity.Hazard], dist float64) {
	// Collision normal (from a to b)
	n := r3.Scale(1/dist, r3.Sub(b.Position, a.Position))

	// Relative velocity along the normal
	dvn := r3.Dot(r3.Sub(a.Velocity, b.Velocity), n)

	// Don't resolve if velocities are separating
	if dvn < 0 {
		return
	}

	ra, rb := a.Payload.Radius, b.Payload.Radius
	m1, m2 := ra*ra*ra, rb*rb*rb
	total := m1 + m2
	impulse := 2 * dvn / total

	a.Velocity = r3.Sub(a.Velocity, r3.Scale(impulse*m2, n))
	b.Velocity = r3.Add(b.Velocity, r3.Scale(impulse*m1, n))

	// Separate to prevent overlap
	overlap := ra + rb - dist
	a.Position = r3.Sub(a.Position, r3.Scale(overlap*m2/total, n))
	b.Position = r3.Add(b.Position, r3.Scale(overlap*m1/total, n))
}
