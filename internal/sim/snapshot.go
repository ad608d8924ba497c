package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/ability"
	"github.com/tomz197/starhero/internal/audio"
	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/ghost"
	"github.com/tomz197/starhero/internal/hazard"
	"github.com/tomz197/starhero/internal/pool"
	"github.com/tomz197/starhero/internal/progress"
	"github.com/tomz197/starhero/internal/vehicle"
)

// EntityKind tells a renderer which family an entity belongs to.
type EntityKind int

const (
	EntityRock EntityKind = iota
	EntityProjectile
	EntityHazard
	EntityBoss
	EntityPickup
	EntityExplosion
	EntitySpark
)

// EntityView is the render-facing part of one pooled entity.
type EntityView struct {
	Kind     EntityKind
	Position r3.Vec
	Radius   float64
	Fraction float64 // explosions: elapsed share of the effect
	Variant  int     // rock material, pickup resource or explosion kind
}

// Notice is a HUD message with the time it stays on screen.
type Notice struct {
	Title     string
	Text      string
	Remaining float64
}

// Snapshot is the read-only frame state handed to renderers and hosts.
// A snapshot stays valid until the second Step after the one that
// produced it.
type Snapshot struct {
	Frame   int64
	Elapsed float64

	Vehicle   vehicle.Vehicle
	Pullback  float64 // chase camera offset during a flip
	RespawnIn float64 // seconds until respawn while downed

	Entities  []EntityView
	Abilities [ability.NumKinds]ability.Status
	Combo     int

	Counters  progress.Counters
	Score     int
	HighScore int
	Notices   []Notice

	BPM         float64
	Beat        int // beats scheduled so far
	Gains       [audio.NumLayers]float64
	GainTargets [audio.NumLayers]float64

	Episode       hazard.Episode
	NextEpisode   float64
	Danger        float64
	RockProximity float64 // nearest large rock, 0 out of range to 1 touching

	Ghosts []ghost.Pose
}

func (c *Core) buildSnapshot() *Snapshot {
	s := &c.snaps[c.snapIdx]
	c.snapIdx ^= 1

	s.Frame = c.frame
	s.Elapsed = c.elapsed
	s.Vehicle = c.vehicle
	s.Pullback = c.abilities.Flip.Pullback()
	s.RespawnIn = max(0, c.respawnIn)

	s.Entities = s.Entities[:0]
	c.world.Rocks.ForEachActive(func(_ pool.Handle, r *pool.Slot[entity.Rock]) bool {
		s.Entities = append(s.Entities, EntityView{Kind: EntityRock, Position: r.Position, Radius: r.Payload.Size, Variant: int(r.Payload.Material)})
		return true
	})
	c.world.Pickups.ForEachActive(func(_ pool.Handle, p *pool.Slot[entity.Pickup]) bool {
		s.Entities = append(s.Entities, EntityView{Kind: EntityPickup, Position: p.Position, Radius: 0.6, Variant: int(p.Payload.Resource)})
		return true
	})
	c.world.Hazards.ForEachActive(func(_ pool.Handle, h *pool.Slot[entity.Hazard]) bool {
		kind := EntityHazard
		if h.Payload.Kind == entity.HazardBoss {
			kind = EntityBoss
		}
		s.Entities = append(s.Entities, EntityView{Kind: kind, Position: h.Position, Radius: h.Payload.Radius})
		return true
	})
	c.world.Projectiles.ForEachActive(func(_ pool.Handle, p *pool.Slot[entity.Projectile]) bool {
		s.Entities = append(s.Entities, EntityView{Kind: EntityProjectile, Position: p.Position, Radius: c.cfg.Weapon.ProjectileRadius})
		return true
	})
	c.world.Explosions.ForEachActive(func(_ pool.Handle, e *pool.Slot[entity.Explosion]) bool {
		kind := EntityExplosion
		if e.Payload.Spark {
			kind = EntitySpark
		}
		s.Entities = append(s.Entities, EntityView{
			Kind:     kind,
			Position: e.Position,
			Radius:   e.Payload.Radius,
			Fraction: entity.Fraction(e),
			Variant:  int(e.Payload.Kind),
		})
		return true
	})

	for k := ability.Kind(0); k < ability.NumKinds; k++ {
		s.Abilities[k] = c.abilities.Status(k)
	}
	s.Combo = c.abilities.Roll.Combo()

	s.Counters = c.ledger.Counters()
	s.Score = c.ledger.Score()
	s.HighScore = c.ledger.HighScore()
	s.Notices = append(s.Notices[:0], c.notices...)

	s.BPM = c.music.BPM()
	s.Beat = c.music.Beat()
	s.Gains = c.music.Gains()
	s.GainTargets = c.music.Targets()

	s.Episode = c.hazards.Episode()
	s.NextEpisode = c.hazards.Countdown()
	s.Danger = c.danger
	s.RockProximity = c.world.Proximity(c.vehicle.Position, c.cfg.Rocks.Proximity)

	s.Ghosts = append(s.Ghosts[:0], c.ghosts...)

	c.latest.Store(s)
	return s
}
