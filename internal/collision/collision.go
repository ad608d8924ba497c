// Package collision resolves projectile, rock, hazard and pickup contacts
// for one frame and applies damage to the vehicle.
package collision

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
	"github.com/tomz197/starhero/internal/vehicle"
)

// Resolver owns the broad-phase grid and reusable buffers. Tests are
// discrete: a fast body can pass through a thin one between frames.
type Resolver struct {
	cfg        config.CollisionConfig
	rocks      config.RocksConfig
	projRadius float64
	rng        *rand.Rand

	grid        *physics.SpatialGrid
	rockHandles []pool.Handle
	events      []Event
}

// New creates a resolver. rng drives rock relocation and pickup drops.
func New(cfg config.Config, rng *rand.Rand) *Resolver {
	return &Resolver{
		cfg:        cfg.Collision,
		rocks:      cfg.Rocks,
		projRadius: cfg.Weapon.ProjectileRadius,
		rng:        rng,
		grid:       physics.NewSpatialGrid(cfg.Collision.GridCell, 4*cfg.Pools.Rocks),
	}
}

// Resolve runs every contact test for the frame. The returned slice is
// reused by the next call.
func (r *Resolver) Resolve(v *vehicle.Vehicle, w *entity.World) []Event {
	r.events = r.events[:0]
	r.populateGrid(w)

	r.resolveProjectiles(v, w)
	if !v.Downed {
		r.resolveVehicle(v, w)
	}
	bounceHazards(w)
	return r.events
}

// populateGrid clears and re-inserts every rock.
func (r *Resolver) populateGrid(w *entity.World) {
	r.grid.Clear()
	r.rockHandles = r.rockHandles[:0]
	w.Rocks.ForEachActive(func(h pool.Handle, s *pool.Slot[entity.Rock]) bool {
		r.grid.Insert(s.Position, len(r.rockHandles))
		r.rockHandles = append(r.rockHandles, h)
		return true
	})
}

// resolveProjectiles tests each projectile against rocks, then hazards.
// The first hit consumes the projectile.
func (r *Resolver) resolveProjectiles(v *vehicle.Vehicle, w *entity.World) {
	w.Projectiles.ForEachActive(func(ph pool.Handle, p *pool.Slot[entity.Projectile]) bool {
		if r.projectileVsRocks(v, w, p) || r.projectileVsHazards(w, p) {
			w.Projectiles.Recycle(ph)
		}
		return true
	})
}

func (r *Resolver) projectileVsRocks(v *vehicle.Vehicle, w *entity.World, p *pool.Slot[entity.Projectile]) bool {
	hit := false
	r.grid.QueryAround(p.Position, func(idx int) bool {
		rock, ok := w.Rocks.Get(r.rockHandles[idx])
		if !ok || !physics.SpheresOverlap(p.Position, r.projRadius, rock.Position, rock.Payload.Size) {
			return false
		}
		at := rock.Position
		size := rock.Payload.Size
		entity.RelocateRock(r.rng, rock, v.Position, r.rocks)
		r.emit(Event{Kind: RockHit, Position: at, Size: size})
		r.maybeDrop(w, at, size)
		hit = true
		return true
	})
	return hit
}

func (r *Resolver) projectileVsHazards(w *entity.World, p *pool.Slot[entity.Projectile]) bool {
	hit := false
	w.Hazards.ForEachActive(func(hh pool.Handle, hz *pool.Slot[entity.Hazard]) bool {
		if !physics.SpheresOverlap(p.Position, r.projRadius, hz.Position, hz.Payload.Radius) {
			return true
		}
		hit = true
		hz.Payload.HitPoints -= max(1, p.Payload.Damage)
		ev := Event{
			Kind:     HazardHit,
			Position: hz.Position,
			Size:     hz.Payload.Radius,
			Boss:     hz.Payload.Kind == entity.HazardBoss,
		}
		if hz.Payload.HitPoints <= 0 {
			ev.Kind = HazardDestroyed
			w.Hazards.Recycle(hh)
		}
		r.emit(ev)
		return false
	})
	return hit
}

// maybeDrop leaves a pickup where a rock broke.
func (r *Resolver) maybeDrop(w *entity.World, at r3.Vec, size float64) {
	if r.rng.Float64() >= r.cfg.PickupChance {
		return
	}
	res := entity.RandomResource(r.rng.Float64())
	amount := 10 + size*5
	w.Drop(res, amount, at, physics.OnSphere(r.rng, r3.Vec{}, 2), r.cfg.PickupLife)
}

// resolveVehicle tests the vehicle against pickups, rocks and hazards.
func (r *Resolver) resolveVehicle(v *vehicle.Vehicle, w *entity.World) {
	reach := v.Radius + r.cfg.PickupRadius
	w.Pickups.ForEachActive(func(h pool.Handle, s *pool.Slot[entity.Pickup]) bool {
		if !physics.PointInSphere(s.Position, v.Position, reach) {
			return true
		}
		r.collect(v, s.Payload)
		r.emit(Event{Kind: PickupCollected, Position: s.Position, Amount: s.Payload.Amount, Resource: s.Payload.Resource})
		w.Pickups.Recycle(h)
		return true
	})

	r.grid.QueryAround(v.Position, func(idx int) bool {
		rock, ok := w.Rocks.Get(r.rockHandles[idx])
		if !ok || !physics.SpheresOverlap(v.Position, v.Radius, rock.Position, rock.Payload.Size) {
			return false
		}
		at, size := rock.Position, rock.Payload.Size
		entity.RelocateRock(r.rng, rock, v.Position, r.rocks)
		r.hit(v, at, size, SourceRock)
		return v.Downed
	})
	if v.Downed {
		return
	}

	w.Hazards.ForEachActive(func(h pool.Handle, s *pool.Slot[entity.Hazard]) bool {
		if !physics.SpheresOverlap(v.Position, v.Radius, s.Position, s.Payload.Radius) {
			return true
		}
		at, size := s.Position, s.Payload.Radius
		w.Hazards.Recycle(h)
		r.hit(v, at, size, SourceHazard)
		return !v.Downed
	})
}

func (r *Resolver) collect(v *vehicle.Vehicle, p entity.Pickup) {
	switch p.Resource {
	case entity.ResourceShield:
		v.Shield = math.Min(v.MaxShield, v.Shield+p.Amount)
	case entity.ResourceHull:
		v.HitPoints = min(v.MaxHitPoints, v.HitPoints+int(math.Round(p.Amount)))
	}
}

// hit applies one impact of the given size. Invulnerability absorbs for
// free; shields above the threshold absorb at a size-scaled cost; anything
// else damages the hull.
func (r *Resolver) hit(v *vehicle.Vehicle, at r3.Vec, size float64, src Source) {
	if v.Downed {
		return
	}
	switch {
	case v.Invulnerable > 0:
		r.emit(Event{Kind: Absorbed, Position: at, Size: size, Source: src})
	case v.Shield > r.cfg.AbsorbThreshold:
		cost := size * r.cfg.ShieldCostPerSize
		v.Shield = math.Max(0, v.Shield-cost)
		r.emit(Event{Kind: Absorbed, Position: at, Size: size, Amount: cost, Source: src})
	default:
		dmg := Damage(size, r.cfg.DamagePerSize)
		v.HitPoints = max(0, v.HitPoints-dmg)
		v.Invulnerable = r.cfg.HitGrace
		r.emit(Event{Kind: Damaged, Position: at, Size: size, Amount: float64(dmg), Source: src})
		if v.HitPoints == 0 {
			v.Downed = true
			r.emit(Event{Kind: Downed, Position: v.Position, Source: src})
		}
	}
}

// Damage is the hull damage of an impact: size-scaled, at least 1.
func Damage(size, perSize float64) int {
	return max(1, int(math.Round(size*perSize)))
}

func (r *Resolver) emit(e Event) {
	r.events = append(r.events, e)
}

// Blast clears everything inside radius of the vehicle: rocks are
// relocated and hazards, bosses included, are destroyed. The returned
// slice is reused by the next Resolve or Blast.
func (r *Resolver) Blast(v *vehicle.Vehicle, w *entity.World, radius float64) []Event {
	r.events = r.events[:0]
	w.Rocks.ForEachActive(func(_ pool.Handle, s *pool.Slot[entity.Rock]) bool {
		if !physics.PointInSphere(s.Position, v.Position, radius+s.Payload.Size) {
			return true
		}
		at, size := s.Position, s.Payload.Size
		entity.RelocateRock(r.rng, s, v.Position, r.rocks)
		r.emit(Event{Kind: RockHit, Position: at, Size: size})
		return true
	})
	w.Hazards.ForEachActive(func(h pool.Handle, s *pool.Slot[entity.Hazard]) bool {
		if !physics.PointInSphere(s.Position, v.Position, radius+s.Payload.Radius) {
			return true
		}
		r.emit(Event{
			Kind:     HazardDestroyed,
			Position: s.Position,
			Size:     s.Payload.Radius,
			Boss:     s.Payload.Kind == entity.HazardBoss,
		})
		w.Hazards.Recycle(h)
		return true
	})
	return r.events
}
