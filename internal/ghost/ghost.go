// Package ghost shares pilot poses between running cores. Delivery is best
// effort: nothing here is authoritative and lost poses are simply replaced
// by the next one.
package ghost

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
)

// Pose is one pilot's broadcast state.
type Pose struct {
	ID       string  `msgpack:"id"`
	Name     string  `msgpack:"name"`
	Paint    string  `msgpack:"paint"`
	Position r3.Vec  `msgpack:"pos"`
	Pitch    float64 `msgpack:"pitch"`
	Yaw      float64 `msgpack:"yaw"`
	Bank     float64 `msgpack:"bank"`
	Downed   bool    `msgpack:"downed"`
}

// Channel moves poses between pilots.
type Channel interface {
	Publish(p Pose) error
	// Receive drains poses that arrived since the last call without blocking.
	Receive() []Pose
	Close() error
}

type entry struct {
	pose Pose
	seen float64
}

// Registry keeps the latest pose per pilot and forgets pilots that went
// quiet for longer than the staleness threshold.
type Registry struct {
	staleAfter float64
	entries    map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry(staleAfter float64) *Registry {
	return &Registry{staleAfter: staleAfter, entries: make(map[string]entry)}
}

// Update stores p as seen at now.
func (r *Registry) Update(p Pose, now float64) {
	if p.ID == "" {
		return
	}
	r.entries[p.ID] = entry{pose: p, seen: now}
}

// Prune drops entries older than the threshold.
func (r *Registry) Prune(now float64) {
	for id, e := range r.entries {
		if now-e.seen > r.staleAfter {
			delete(r.entries, id)
		}
	}
}

// Poses returns live poses sorted by id, leaving out self.
func (r *Registry) Poses(self string) []Pose {
	out := make([]Pose, 0, len(r.entries))
	for id, e := range r.entries {
		if id != self {
			out = append(out, e.pose)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of tracked pilots.
func (r *Registry) Len() int { return len(r.entries) }

// Broadcaster publishes the local pose at a fixed interval and folds
// received poses into a registry.
type Broadcaster struct {
	ch       Channel
	reg      *Registry
	interval float64
	since    float64
	now      float64
	log      zerolog.Logger
	failing  bool
}

// NewBroadcaster wraps ch. The first Tick publishes immediately.
func NewBroadcaster(cfg config.GhostConfig, ch Channel, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		ch:       ch,
		reg:      NewRegistry(cfg.StaleAfter),
		interval: cfg.PublishInterval,
		since:    cfg.PublishInterval,
		log:      log,
	}
}

// Tick advances the broadcaster clock, publishes self when the interval
// elapsed and returns the other pilots' live poses.
func (b *Broadcaster) Tick(dt float64, self Pose) []Pose {
	b.now += dt
	b.since += dt
	if b.since >= b.interval {
		b.since = 0
		b.publish(self)
	}
	for _, p := range b.ch.Receive() {
		b.reg.Update(p, b.now)
	}
	b.reg.Prune(b.now)
	return b.reg.Poses(self.ID)
}

// publish logs only the first failure of a streak.
func (b *Broadcaster) publish(p Pose) {
	err := b.ch.Publish(p)
	switch {
	case err != nil && !b.failing:
		b.log.Warn().Err(err).Msg("ghost publish failed")
		b.failing = true
	case err == nil && b.failing:
		b.log.Info().Msg("ghost publish recovered")
		b.failing = false
	}
}

// Close closes the channel.
func (b *Broadcaster) Close() error { return b.ch.Close() }
