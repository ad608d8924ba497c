package collision

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
	"github.com/tomz197/starhero/internal/vehicle"
)

type fixture struct {
	cfg      config.Config
	world    *entity.World
	resolver *Resolver
	ship     vehicle.Vehicle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Collision.PickupChance = 0
	return &fixture{
		cfg:      cfg,
		world:    entity.NewWorld(cfg),
		resolver: New(cfg, rand.New(rand.NewSource(1))),
		ship:     vehicle.New(cfg.Vehicle, vehicle.DefaultProfile()),
	}
}

func (f *fixture) rock(t *testing.T, at r3.Vec, size float64) pool.Handle {
	t.Helper()
	h, ok := f.world.Rocks.Spawn(pool.Spawn[entity.Rock]{Position: at, Life: pool.Forever, Payload: entity.Rock{Size: size}})
	require.True(t, ok)
	return h
}

func (f *fixture) shot(t *testing.T, at r3.Vec) pool.Handle {
	t.Helper()
	h, ok := f.world.Projectiles.Spawn(pool.Spawn[entity.Projectile]{Position: at, Life: 1, Payload: entity.Projectile{Damage: 1}})
	require.True(t, ok)
	return h
}

func (f *fixture) resolve() []Event {
	return f.resolver.Resolve(&f.ship, f.world)
}

func TestProjectileHitsRock_RelocatesAndRecycles(t *testing.T) {
	f := newFixture(t)
	f.ship.Position = r3.Vec{}
	rock := f.rock(t, r3.Vec{Z: -30}, 2)
	shot := f.shot(t, r3.Vec{Z: -29})

	events := f.resolve()

	require.Equal(t, 1, Count(events, RockHit))
	assert.Equal(t, r3.Vec{Z: -30}, events[0].Position)
	assert.Equal(t, 2.0, events[0].Size)

	_, alive := f.world.Projectiles.Get(shot)
	assert.False(t, alive)

	s, ok := f.world.Rocks.Get(rock)
	require.True(t, ok, "rock survives, relocated")
	d := physics.Distance(s.Position, f.ship.Position)
	assert.GreaterOrEqual(t, d, f.cfg.Rocks.RelocateMin-1e-9)
	assert.LessOrEqual(t, d, f.cfg.Rocks.RelocateMax+1e-9)
	assert.Equal(t, 1, f.world.Rocks.Len())
}

func TestProjectile_RockBeforeHazardFirstHitWins(t *testing.T) {
	f := newFixture(t)
	f.rock(t, r3.Vec{Z: -30}, 2)
	hz, _ := f.world.SpawnHazard(entity.HazardMeteor, r3.Vec{Z: -30.5}, r3.Vec{}, 2, 1, 10)
	f.shot(t, r3.Vec{Z: -30})

	events := f.resolve()

	assert.Equal(t, 1, Count(events, RockHit))
	assert.Zero(t, Count(events, HazardDestroyed))
	_, ok := f.world.Hazards.Get(hz)
	assert.True(t, ok)
	assert.Zero(t, f.world.Projectiles.Len())
}

func TestProjectile_HazardHitPoints(t *testing.T) {
	f := newFixture(t)
	hz, _ := f.world.SpawnHazard(entity.HazardBoss, r3.Vec{Z: -50}, r3.Vec{}, 6, 2, 10)

	f.shot(t, r3.Vec{Z: -50})
	events := f.resolve()
	require.Len(t, events, 1)
	assert.Equal(t, HazardHit, events[0].Kind)
	assert.True(t, events[0].Boss)

	f.shot(t, r3.Vec{Z: -50})
	events = f.resolve()
	require.Len(t, events, 1)
	assert.Equal(t, HazardDestroyed, events[0].Kind)
	_, ok := f.world.Hazards.Get(hz)
	assert.False(t, ok)
}

func TestVehicle_ShieldAbsorbs(t *testing.T) {
	f := newFixture(t)
	f.ship.Shield = 50
	hp := f.ship.HitPoints
	f.rock(t, f.ship.Position, 2)

	events := f.resolve()

	require.Equal(t, 1, Count(events, Absorbed))
	assert.Equal(t, hp, f.ship.HitPoints)
	assert.InDelta(t, 50-2*f.cfg.Collision.ShieldCostPerSize, f.ship.Shield, 1e-9)
}

func TestVehicle_ShieldSpentThenHullDamage(t *testing.T) {
	f := newFixture(t)
	f.ship.Shield = 0
	hp := f.ship.HitPoints
	f.rock(t, f.ship.Position, 2)

	events := f.resolve()

	require.Equal(t, 1, Count(events, Damaged))
	assert.Equal(t, hp-Damage(2, f.cfg.Collision.DamagePerSize), f.ship.HitPoints)
	assert.Equal(t, f.cfg.Collision.HitGrace, f.ship.Invulnerable)
	assert.Equal(t, SourceRock, events[0].Source)
}

func TestVehicle_ShieldCostClampsAtZero(t *testing.T) {
	f := newFixture(t)
	f.ship.Shield = 1
	f.rock(t, f.ship.Position, 7)

	f.resolve()
	assert.Zero(t, f.ship.Shield)
}

func TestVehicle_InvulnerableAbsorbsFree(t *testing.T) {
	f := newFixture(t)
	f.ship.Shield = 0
	f.ship.Invulnerable = 1
	hp := f.ship.HitPoints
	f.world.SpawnHazard(entity.HazardMeteor, f.ship.Position, r3.Vec{}, 1, 1, 10)

	events := f.resolve()
	require.Equal(t, 1, Count(events, Absorbed))
	assert.Equal(t, SourceHazard, events[0].Source)
	assert.Equal(t, hp, f.ship.HitPoints)
	assert.Zero(t, f.world.Hazards.Len(), "hazard is consumed by the impact")
}

// HP 10, no shield, a 15-damage impact: hit points clamp at exactly zero
// and Downed fires once, even with more contacts afterwards.
func TestVehicle_DownedOnce(t *testing.T) {
	f := newFixture(t)
	f.ship.HitPoints = 10
	f.ship.Shield = 0
	f.rock(t, f.ship.Position, 3) // 3 * 5 = 15 damage
	f.rock(t, r3.Add(f.ship.Position, r3.Vec{X: 0.5}), 3)

	events := f.resolve()
	assert.Equal(t, 0, f.ship.HitPoints)
	assert.True(t, f.ship.Downed)
	assert.Equal(t, 1, Count(events, Downed))

	f.world.SpawnHazard(entity.HazardMeteor, f.ship.Position, r3.Vec{}, 2, 1, 10)
	f.rock(t, f.ship.Position, 3)
	events = f.resolve()
	assert.Zero(t, Count(events, Downed))
	assert.Zero(t, Count(events, Damaged))
	assert.Equal(t, 0, f.ship.HitPoints)
}

func TestVehicle_CollectsPickups(t *testing.T) {
	f := newFixture(t)
	f.ship.Shield = 10
	f.ship.HitPoints = 50
	f.world.Drop(entity.ResourceShield, 25, f.ship.Position, r3.Vec{}, 10)
	f.world.Drop(entity.ResourceHull, 500, f.ship.Position, r3.Vec{}, 10)
	f.world.Drop(entity.ResourceCrystal, 5, r3.Add(f.ship.Position, r3.Vec{Z: 50}), r3.Vec{}, 10)

	events := f.resolve()

	assert.Equal(t, 2, Count(events, PickupCollected))
	assert.Equal(t, 35.0, f.ship.Shield)
	assert.Equal(t, f.ship.MaxHitPoints, f.ship.HitPoints, "hull is capped")
	assert.Equal(t, 1, f.world.Pickups.Len())
}

func TestRockHit_DropsPickupWhenLucky(t *testing.T) {
	f := newFixture(t)
	f.cfg.Collision.PickupChance = 1
	f.resolver = New(f.cfg, rand.New(rand.NewSource(2)))
	f.rock(t, r3.Vec{Z: -30}, 2)
	f.shot(t, r3.Vec{Z: -30})

	f.resolve()
	assert.Equal(t, 1, f.world.Pickups.Len())
}

// Many random frames: rocks are only ever relocated, never lost.
func TestRockPopulationConserved(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(9))
	f.world.SeedRocks(rng, f.ship.Position, f.cfg.Rocks)
	f.ship.Shield = 1e9

	for frame := 0; frame < 500; frame++ {
		origin := physics.InShell(rng, f.ship.Position, 0, 100)
		f.world.Fire(origin, physics.OnSphere(rng, r3.Vec{}, 1), r3.Vec{})
		f.world.Advance(1.0 / 60)
		f.resolve()
		require.Equal(t, f.cfg.Pools.Rocks, f.world.Rocks.Len())
	}
}

func TestBounce_SeparatesHazards(t *testing.T) {
	f := newFixture(t)
	f.ship.Position = r3.Vec{Y: 500}
	a, _ := f.world.SpawnHazard(entity.HazardMeteor, r3.Vec{}, r3.Vec{X: 5}, 1, 1, 10)
	b, _ := f.world.SpawnHazard(entity.HazardMeteor, r3.Vec{X: 1.5}, r3.Vec{X: -5}, 1, 1, 10)

	f.resolve()

	sa, _ := f.world.Hazards.Get(a)
	sb, _ := f.world.Hazards.Get(b)
	assert.Less(t, sa.Velocity.X, 0.0)
	assert.Greater(t, sb.Velocity.X, 0.0)
	assert.InDelta(t, 2, physics.Distance(sa.Position, sb.Position), 1e-9)
}

func TestDamage(t *testing.T) {
	assert.Equal(t, 15, Damage(3, 5))
	assert.Equal(t, 1, Damage(0.05, 5))
	assert.Equal(t, 2, Damage(0.4, 5))
}

func TestBlast_ClearsInsideRadius(t *testing.T) {
	f := newFixture(t)
	f.ship.Position = r3.Vec{}
	near := f.rock(t, r3.Vec{X: 15}, 1)
	far := f.rock(t, r3.Vec{X: 60}, 1)
	f.world.SpawnHazard(entity.HazardBoss, r3.Vec{Y: -18}, r3.Vec{}, 6, 12, 10)
	f.world.SpawnHazard(entity.HazardMeteor, r3.Vec{Z: 70}, r3.Vec{}, 1, 1, 10)

	events := f.resolver.Blast(&f.ship, f.world, 20)

	assert.Equal(t, 1, Count(events, RockHit))
	require.Equal(t, 1, Count(events, HazardDestroyed))
	assert.Equal(t, 1, f.world.Hazards.Len())
	assert.Equal(t, 2, f.world.Rocks.Len())

	s, _ := f.world.Rocks.Get(near)
	assert.GreaterOrEqual(t, physics.Distance(s.Position, f.ship.Position), f.cfg.Rocks.RelocateMin-1e-9)
	s, _ = f.world.Rocks.Get(far)
	assert.Equal(t, r3.Vec{X: 60}, s.Position)
	for _, e := range events {
		if e.Kind == HazardDestroyed {
			assert.True(t, e.Boss)
		}
	}
}
