// Package sim sequences every simulation component once per frame and
// publishes the result as a read-only Snapshot.
package sim

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/ability"
	"github.com/tomz197/starhero/internal/audio"
	"github.com/tomz197/starhero/internal/clock"
	"github.com/tomz197/starhero/internal/collision"
	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/ghost"
	"github.com/tomz197/starhero/internal/hazard"
	"github.com/tomz197/starhero/internal/input"
	"github.com/tomz197/starhero/internal/logging"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/progress"
	"github.com/tomz197/starhero/internal/store"
	"github.com/tomz197/starhero/internal/vehicle"
)

// noticeTTL is how long an unlock stays on the HUD.
const noticeTTL = 4.0

// Deps are the collaborators a Core talks to. Every field is optional.
type Deps struct {
	Log    zerolog.Logger
	Store  store.Store   // nil keeps progress in memory
	Sink   audio.Sink    // nil runs the music director silently
	Ghosts ghost.Channel // nil disables pose broadcast; closed with the core
	Pilot  string
	Meter  metric.Meter
}

// Core owns the vehicle, the entity pools and every state machine of one
// pilot. It is not safe for concurrent use; run one Core per session.
type Core struct {
	cfg   config.Config
	log   zerolog.Logger
	rng   *rand.Rand
	store store.Store
	pilot string

	vehicle   vehicle.Vehicle
	world     *entity.World
	resolver  *collision.Resolver
	abilities *ability.Set
	hazards   *hazard.Director
	ledger    *progress.Ledger
	music     *audio.Director
	sink      audio.Sink
	caster    *ghost.Broadcaster
	metrics   *metrics

	frame        int64
	elapsed      float64
	fireCooldown float64
	respawnIn    float64
	danger       float64
	lastDropped  int
	notices      []Notice
	ghosts       []ghost.Pose

	snaps   [2]Snapshot
	snapIdx int
	latest  atomic.Pointer[Snapshot]
}

// New builds a core from cfg. Persisted progress and the ship profile are
// read from deps.Store; missing or corrupt entries fall back to defaults.
// deps.Ghosts is closed if New fails.
func New(cfg config.Config, deps Deps) (*Core, error) {
	m, err := newMetrics(deps.Meter)
	if err != nil {
		if deps.Ghosts != nil {
			_ = deps.Ghosts.Close()
		}
		return nil, fmt.Errorf("sim metrics: %w", err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	st := deps.Store
	if st == nil {
		st = store.NewMemory()
	}
	pilot := deps.Pilot
	if pilot == "" {
		pilot = "pilot"
	}

	c := &Core{
		cfg:     cfg,
		log:     logging.Component(deps.Log, "sim"),
		rng:     rand.New(rand.NewSource(seed)),
		store:   st,
		pilot:   pilot,
		world:   entity.NewWorld(cfg),
		sink:    deps.Sink,
		metrics: m,
	}

	profile := vehicle.DefaultProfile()
	store.LoadJSON(st, store.KeyProfile, &profile, c.log)
	c.vehicle = vehicle.New(cfg.Vehicle, profile)

	c.world.SeedRocks(c.rng, c.vehicle.Position, cfg.Rocks)
	c.resolver = collision.New(cfg, c.rng)
	c.abilities = ability.NewSet(cfg.Abilities, c.rng)
	c.hazards = hazard.NewDirector(cfg.Hazard, c.rng, logging.Component(deps.Log, "hazard"))
	c.ledger = progress.NewLedger(st, logging.Component(deps.Log, "progress"))
	c.music = audio.NewDirector(cfg.Audio, deps.Sink)
	if deps.Ghosts != nil {
		c.caster = ghost.NewBroadcaster(cfg.Ghost, deps.Ghosts, logging.Component(deps.Log, "ghost"))
	}

	c.log.Info().
		Str("pilot", pilot).
		Int64("seed", seed).
		Str("hull", c.vehicle.Profile.Hull).
		Int("achievements", c.ledger.UnlockedCount()).
		Msg("core ready")
	return c, nil
}

// Step advances the simulation by one frame and returns the new snapshot.
func (c *Core) Step(f clock.Frame, in input.Intent) *Snapshot {
	dt := f.Delta
	c.frame++
	c.elapsed = f.Elapsed

	if c.vehicle.Downed {
		in = input.Intent{}
		c.respawnIn -= dt
		if c.respawnIn <= 0 {
			c.respawn()
		}
	}

	before := c.vehicle.Position
	jumped := false
	if !c.vehicle.Downed {
		steer := c.abilities.Begin(in, &c.vehicle, c.elapsed)
		c.vehicle = vehicle.Advance(c.vehicle, steer, c.cfg.Vehicle, dt)
		c.abilities.Finish(in, &c.vehicle, c.elapsed, dt)
		jumped = c.handleAbilities()
	}

	c.fire(in, dt)

	c.world.Advance(dt)
	c.world.WrapRocks(c.rng, c.vehicle.Position, c.cfg.Rocks)
	c.handleCollisions(c.resolver.Resolve(&c.vehicle, c.world))

	for _, e := range c.hazards.Update(dt, c.vehicle.Position, c.world) {
		if e.Kind != hazard.EpisodeEnded || c.vehicle.Downed {
			continue
		}
		c.ledger.Record(progress.EpisodesSurvived, 1)
		if e.Unscathed {
			c.ledger.Record(progress.EpisodesUnscathed, 1)
		}
	}
	c.danger = hazard.Danger(c.vehicle, c.world.Hazards, c.hazards.Episode(), c.cfg.Hazard.DangerRange)

	if !c.vehicle.Downed {
		c.ledger.Tick(dt)
		if !jumped {
			c.ledger.Record(progress.Distance, physics.Distance(before, c.vehicle.Position))
		}
	}
	c.updateNotices(dt)

	now := c.elapsed
	if c.sink != nil {
		now = c.sink.Now()
	}
	c.music.ScheduleAhead(now, c.vehicle.Speed/c.cfg.Vehicle.MaxSpeed, c.danger, dt)

	if c.caster != nil {
		c.ghosts = c.caster.Tick(dt, c.pose())
	}

	dropped := c.world.Dropped()
	c.metrics.frame(dropped - c.lastDropped)
	c.lastDropped = dropped

	return c.buildSnapshot()
}

func (c *Core) fire(in input.Intent, dt float64) {
	c.fireCooldown = max(0, c.fireCooldown-dt)
	if !in.Fire || c.fireCooldown > 0 || c.vehicle.Downed {
		return
	}
	fwd := c.vehicle.Forward()
	origin := r3.Add(c.vehicle.Position, r3.Scale(c.vehicle.Radius+1, fwd))
	c.world.Fire(origin, fwd, c.vehicle.Velocity)
	c.fireCooldown = c.cfg.Weapon.FireRate
}

// handleAbilities turns ability transitions into counters and effects.
// It reports whether the vehicle jumped this frame.
func (c *Core) handleAbilities() bool {
	jumped := false
	for _, e := range c.abilities.Events() {
		switch e.Kind {
		case ability.RollEnded:
			c.ledger.Record(progress.Rolls, 1)
			c.ledger.Record(progress.BestCombo, float64(e.Combo))
		case ability.ComboCelebrated:
			c.notify(e.Text, "")
		case ability.FlipEnded:
			c.ledger.Record(progress.Flips, 1)
			c.world.Burst(c.rng, entity.ExplosionFlip, e.Position, 3, 8)
		case ability.Jumped:
			jumped = true
			c.ledger.Record(progress.Jumps, 1)
			c.world.Burst(c.rng, entity.ExplosionFlip, e.Position, 2, 12)
		case ability.NovaFired:
			c.ledger.Record(progress.Novas, 1)
			c.world.Burst(c.rng, entity.ExplosionNova, e.Position, e.Radius, 16)
			c.handleCollisions(c.resolver.Blast(&c.vehicle, c.world, e.Radius))
		case ability.ShieldRipple:
			c.world.Burst(c.rng, entity.ExplosionRipple, e.Position, c.vehicle.Radius*2, 0)
		}
	}
	return jumped
}

func (c *Core) handleCollisions(events []collision.Event) {
	for _, e := range events {
		switch e.Kind {
		case collision.RockHit:
			c.ledger.Record(progress.Rocks, 1)
			c.world.Burst(c.rng, entity.ExplosionRock, e.Position, e.Size, 6)
		case collision.HazardHit:
			c.world.Burst(c.rng, entity.ExplosionHazard, e.Position, e.Size*0.5, 3)
		case collision.HazardDestroyed:
			if e.Boss {
				c.ledger.Record(progress.Bosses, 1)
			} else {
				c.ledger.Record(progress.Hazards, 1)
			}
			c.world.Burst(c.rng, entity.ExplosionHazard, e.Position, e.Size*1.5, 10)
		case collision.Absorbed:
			c.ledger.Record(progress.Absorbed, 1)
			if e.Amount > 0 {
				c.abilities.Shield.Hit()
			}
		case collision.Damaged:
			c.ledger.Record(progress.DamageTaken, e.Amount)
			c.abilities.Shield.Hit()
			if e.Source == collision.SourceHazard {
				c.hazards.MarkDamage()
			}
		case collision.Downed:
			c.ledger.Record(progress.Downs, 1)
			c.world.Burst(c.rng, entity.ExplosionShip, e.Position, 4, 16)
			c.respawnIn = c.cfg.Sim.RespawnDelay
			c.metrics.downed(sourceName(e.Source))
			c.log.Info().Str("source", sourceName(e.Source)).Float64("respawn_in", c.respawnIn).Msg("vehicle downed")
		case collision.PickupCollected:
			c.ledger.Record(progress.Resources, 1)
		}
	}
}

func sourceName(s collision.Source) string {
	if s == collision.SourceHazard {
		return "hazard"
	}
	return "rock"
}

// respawn restores the vehicle where it went down.
func (c *Core) respawn() {
	v := &c.vehicle
	v.HitPoints = v.MaxHitPoints
	v.Shield = v.MaxShield
	v.Downed = false
	v.Invulnerable = c.cfg.Sim.RespawnInvulnerability
	v.Velocity, v.Speed = r3.Vec{}, 0
	v.PitchRate, v.YawRate = 0, 0
	c.respawnIn = 0
	c.log.Info().Msg("vehicle respawned")
}

// updateNotices expires old notices and queues new unlocks.
func (c *Core) updateNotices(dt float64) {
	kept := c.notices[:0]
	for _, n := range c.notices {
		n.Remaining -= dt
		if n.Remaining > 0 {
			kept = append(kept, n)
		}
	}
	c.notices = kept

	if ids := c.ledger.Evaluate(); len(ids) > 0 {
		c.metrics.unlocked(ids)
	}
	for _, n := range c.ledger.Flush() {
		c.notify(n.Title, n.Text)
	}
}

func (c *Core) notify(title, text string) {
	c.notices = append(c.notices, Notice{Title: title, Text: text, Remaining: noticeTTL})
}

func (c *Core) pose() ghost.Pose {
	return ghost.Pose{
		ID:       c.pilot,
		Name:     c.pilot,
		Paint:    c.vehicle.Profile.Paint,
		Position: c.vehicle.Position,
		Pitch:    c.vehicle.Pitch,
		Yaw:      c.vehicle.Yaw,
		Bank:     c.vehicle.Bank,
		Downed:   c.vehicle.Downed,
	}
}

// Latest returns the most recent snapshot, or nil before the first Step.
func (c *Core) Latest() *Snapshot { return c.latest.Load() }

// Ledger exposes the session's progress, e.g. for an exit summary.
func (c *Core) Ledger() *progress.Ledger { return c.ledger }

// Profile is the current ship customization.
func (c *Core) Profile() vehicle.Profile { return c.vehicle.Profile }

// SetProfile applies and persists a new customization.
func (c *Core) SetProfile(p vehicle.Profile) error {
	p = p.Normalize()
	c.vehicle.Profile = p
	if err := store.SaveJSON(c.store, store.KeyProfile, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Close stops the ghost broadcast. The store belongs to the caller.
func (c *Core) Close() error {
	if c.caster == nil {
		return nil
	}
	return c.caster.Close()
}
