// Package hazard schedules meteor-storm episodes and derives the danger
// level that drives the soundtrack.
package hazard

import (
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/physics"
)

// EventKind classifies director output.
type EventKind int

const (
	EpisodeStarted EventKind = iota
	EpisodeEnded
	BossSpawned
)

// Event reports an episode transition.
type Event struct {
	Kind      EventKind
	Episode   int
	Unscathed bool // EpisodeEnded only
}

// maxSpawnsPerUpdate bounds the meteors one Update may launch.
const maxSpawnsPerUpdate = 8

// Episode is the storm state exposed to the HUD.
type Episode struct {
	Active    bool
	Number    int
	Remaining float64
	NextSpawn float64
	Unscathed bool
}

// Director counts down to the next storm, runs it and reschedules.
type Director struct {
	cfg config.HazardConfig
	rng *rand.Rand
	log zerolog.Logger

	countdown float64
	episode   Episode
	events    []Event
}

// NewDirector schedules the first episode after cfg.FirstDelay.
func NewDirector(cfg config.HazardConfig, rng *rand.Rand, log zerolog.Logger) *Director {
	return &Director{
		cfg:       cfg,
		rng:       rng,
		log:       log,
		countdown: cfg.FirstDelay,
	}
}

// Episode returns the current episode state.
func (d *Director) Episode() Episode { return d.episode }

// Countdown is the time left until the next episode starts. Zero while
// an episode is running.
func (d *Director) Countdown() float64 {
	if d.episode.Active {
		return 0
	}
	return d.countdown
}

// MarkDamage records hazard-sourced hull damage against the running episode.
func (d *Director) MarkDamage() {
	if d.episode.Active {
		d.episode.Unscathed = false
	}
}

// Update advances the schedule by dt and spawns into w while a storm is
// running. Hazards are aimed at target. The returned slice is reused.
func (d *Director) Update(dt float64, target r3.Vec, w *entity.World) []Event {
	d.events = d.events[:0]

	if !d.episode.Active {
		d.countdown -= dt
		if d.countdown <= 0 {
			d.start(target, w)
		}
		return d.events
	}

	d.episode.Remaining -= dt
	d.episode.NextSpawn -= dt
	for n := 0; d.episode.NextSpawn <= 0 && d.episode.Remaining > 0; n++ {
		if n == maxSpawnsPerUpdate {
			// drop the backlog of a long frame or a degenerate interval
			d.episode.NextSpawn = d.cfg.SpawnMax
			break
		}
		d.spawnMeteor(target, w)
		d.episode.NextSpawn += physics.Between(d.rng, d.cfg.SpawnMin, d.cfg.SpawnMax)
	}
	if d.episode.Remaining <= 0 {
		d.end()
	}
	return d.events
}

func (d *Director) start(target r3.Vec, w *entity.World) {
	d.episode = Episode{
		Active:    true,
		Number:    d.episode.Number + 1,
		Remaining: physics.Between(d.rng, d.cfg.DurationMin, d.cfg.DurationMax),
		Unscathed: true,
	}
	d.countdown = 0
	d.events = append(d.events, Event{Kind: EpisodeStarted, Episode: d.episode.Number})
	d.log.Info().Int("episode", d.episode.Number).Float64("duration", d.episode.Remaining).Msg("meteor storm started")

	if d.cfg.BossEvery > 0 && d.episode.Number%d.cfg.BossEvery == 0 {
		if d.spawnBoss(target, w) {
			d.events = append(d.events, Event{Kind: BossSpawned, Episode: d.episode.Number})
			d.log.Info().Int("episode", d.episode.Number).Msg("boss spawned")
		}
	}
}

func (d *Director) end() {
	ep := d.episode
	d.episode.Active = false
	d.episode.Remaining = 0
	d.episode.NextSpawn = 0
	d.countdown = physics.Between(d.rng, d.cfg.IntervalMin, d.cfg.IntervalMax)
	d.events = append(d.events, Event{Kind: EpisodeEnded, Episode: ep.Number, Unscathed: ep.Unscathed})
	d.log.Info().
		Int("episode", ep.Number).
		Bool("unscathed", ep.Unscathed).
		Float64("next_in", d.countdown).
		Msg("meteor storm ended")
}

// launch picks a point on the spawn shell and a velocity toward target,
// jittered so a storm does not converge on a single point.
func (d *Director) launch(target r3.Vec, speed float64) (r3.Vec, r3.Vec) {
	at := physics.InShell(d.rng, target, d.cfg.DistanceMin, d.cfg.DistanceMax)
	aim := physics.OnSphere(d.rng, target, physics.Between(d.rng, 0, 6))
	dir := physics.SafeUnit(r3.Sub(aim, at), r3.Vec{Z: 1})
	return at, r3.Scale(speed, dir)
}

func (d *Director) spawnMeteor(target r3.Vec, w *entity.World) {
	at, vel := d.launch(target, physics.Between(d.rng, d.cfg.SpeedMin, d.cfg.SpeedMax))
	radius := physics.Between(d.rng, d.cfg.RadiusMin, d.cfg.RadiusMax)
	w.SpawnHazard(entity.HazardMeteor, at, vel, radius, 1, d.cfg.Life)
}

func (d *Director) spawnBoss(target r3.Vec, w *entity.World) bool {
	at, vel := d.launch(target, d.cfg.BossSpeed)
	// Outlives the storm so it can be chased down afterwards
	life := d.episode.Remaining + d.cfg.Life
	_, ok := w.SpawnHazard(entity.HazardBoss, at, vel, d.cfg.BossRadius, d.cfg.BossHitPoints, life)
	return ok
}
