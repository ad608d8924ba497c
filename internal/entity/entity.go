// Package entity defines the pooled entity families that populate the
// flight space and the World that owns their pools.
package entity

import (
	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/pool"
)

// World owns one fixed-capacity pool per entity family.
type World struct {
	Projectiles *pool.Pool[Projectile]
	Explosions  *pool.Pool[Explosion]
	Hazards     *pool.Pool[Hazard]
	Pickups     *pool.Pool[Pickup]
	Rocks       *pool.Pool[Rock]

	weapon config.WeaponConfig
}

// NewWorld allocates every pool at its configured capacity.
func NewWorld(cfg config.Config) *World {
	w := &World{weapon: cfg.Weapon}
	w.Projectiles = pool.New(cfg.Pools.Projectiles, pool.WithMotion[Projectile](w.steerProjectile))
	w.Explosions = pool.New(cfg.Pools.Explosions, pool.WithMotion[Explosion](dampExplosion))
	w.Hazards = pool.New[Hazard](cfg.Pools.Hazards)
	w.Pickups = pool.New(cfg.Pools.Pickups, pool.WithMotion[Pickup](dampPickup))
	w.Rocks = pool.New(cfg.Pools.Rocks, pool.WithMotion[Rock](spinRock))
	return w
}

// Advance steps every family by dt.
func (w *World) Advance(dt float64) {
	w.Projectiles.Advance(dt)
	w.Explosions.Advance(dt)
	w.Hazards.Advance(dt)
	w.Pickups.Advance(dt)
	w.Rocks.Advance(dt)
}

// Dropped is the total number of spawns refused by full pools.
func (w *World) Dropped() int {
	return w.Projectiles.Dropped() + w.Explosions.Dropped() + w.Hazards.Dropped() +
		w.Pickups.Dropped() + w.Rocks.Dropped()
}

// Active is the total number of live entities.
func (w *World) Active() int {
	return w.Projectiles.Len() + w.Explosions.Len() + w.Hazards.Len() +
		w.Pickups.Len() + w.Rocks.Len()
}
