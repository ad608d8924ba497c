package entity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
)

// Projectile is a bolt fired by the vehicle. A valid Target makes it home.
type Projectile struct {
	Target pool.Handle // rock being tracked, zero for none
	Damage int
}

// Fire spawns a projectile from origin along dir, inheriting the shooter's
// velocity. The nearest rock inside the homing cone becomes its target.
func (w *World) Fire(origin, dir, shooterVel r3.Vec) (pool.Handle, bool) {
	dir = physics.SafeUnit(dir, r3.Vec{Z: -1})
	return w.Projectiles.Spawn(pool.Spawn[Projectile]{
		Position: origin,
		Velocity: r3.Add(shooterVel, r3.Scale(w.weapon.ProjectileSpeed, dir)),
		Life:     w.weapon.ProjectileLife,
		Payload:  Projectile{Target: w.acquire(origin, dir), Damage: 1},
	})
}

func (w *World) acquire(origin, dir r3.Vec) pool.Handle {
	var best pool.Handle
	bestDist := w.weapon.HomingRange * w.weapon.HomingRange
	w.Rocks.ForEachActive(func(h pool.Handle, s *pool.Slot[Rock]) bool {
		to := r3.Sub(s.Position, origin)
		d2 := r3.Norm2(to)
		if d2 == 0 || d2 > bestDist {
			return true
		}
		if r3.Dot(to, dir)/math.Sqrt(d2) < w.weapon.HomingCone {
			return true
		}
		best, bestDist = h, d2
		return true
	})
	return best
}

// steerProjectile turns the velocity toward the target by at most
// HomingTurn radians per second, keeping speed.
func (w *World) steerProjectile(s *pool.Slot[Projectile], dt float64) {
	if s.Payload.Target.Valid() {
		rock, ok := w.Rocks.Get(s.Payload.Target)
		to := r3.Vec{}
		if ok {
			to = r3.Sub(rock.Position, s.Position)
		}
		// Lost or relocated out of range
		if !ok || r3.Norm2(to) > 4*w.weapon.HomingRange*w.weapon.HomingRange {
			s.Payload.Target = pool.Handle{}
		} else {
			speed := r3.Norm(s.Velocity)
			cur := physics.SafeUnit(s.Velocity, r3.Vec{Z: -1})
			want := physics.SafeUnit(to, cur)
			s.Velocity = r3.Scale(speed, turnToward(cur, want, w.weapon.HomingTurn*dt))
		}
	}
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
}

// turnToward rotates unit vector cur toward unit vector want by at most
// maxAngle radians.
func turnToward(cur, want r3.Vec, maxAngle float64) r3.Vec {
	cos := math.Max(-1, math.Min(1, r3.Dot(cur, want)))
	angle := math.Acos(cos)
	if angle <= maxAngle {
		return want
	}
	// Component of want orthogonal to cur
	perp := r3.Sub(want, r3.Scale(cos, cur))
	if r3.Norm2(perp) == 0 {
		return cur
	}
	perp = r3.Unit(perp)
	s, c := math.Sincos(maxAngle)
	return r3.Add(r3.Scale(c, cur), r3.Scale(s, perp))
}
