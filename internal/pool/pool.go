// Package pool provides fixed-capacity slot storage for short-lived entities.
//
// Capacity is decided at construction and never grows. A full pool drops
// spawns instead of allocating, so a burst of explosions can never stall a
// frame. A slot is either zero (inactive) or fully live; Recycle restores
// the zero value.
package pool

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Forever is the lifetime of slots that never expire on their own.
var Forever = math.Inf(1)

// Handle refers to one occupancy of a slot. A handle goes stale when its
// slot is recycled; stale handles never resolve.
type Handle struct {
	index int
	gen   uint32
}

// Valid reports whether h was ever returned by Spawn. The zero Handle is
// the "none" value.
func (h Handle) Valid() bool { return h.gen != 0 }

// Index is the slot position, for stable ordering in tests and snapshots.
func (h Handle) Index() int { return h.index }

// Slot is one entity record.
type Slot[T any] struct {
	Active   bool
	Position r3.Vec
	Velocity r3.Vec
	Life     float64 // seconds until expiry, Forever for none
	Payload  T
}

// Spawn describes a new entity.
type Spawn[T any] struct {
	Position r3.Vec
	Velocity r3.Vec
	Life     float64
	Payload  T
}

// Hook observes a slot at spawn or expiry.
type Hook[T any] func(h Handle, s *Slot[T])

// Motion integrates a slot for one frame. The default is linear.
type Motion[T any] func(s *Slot[T], dt float64)

// Option configures a pool.
type Option[T any] func(*Pool[T])

// OnSpawn runs after a slot is filled.
func OnSpawn[T any](fn Hook[T]) Option[T] {
	return func(p *Pool[T]) { p.onSpawn = fn }
}

// OnExpire runs when a slot's lifetime ends, before it is zeroed.
// Explicit Recycle does not call it.
func OnExpire[T any](fn Hook[T]) Option[T] {
	return func(p *Pool[T]) { p.onExpire = fn }
}

// WithMotion replaces linear integration.
func WithMotion[T any](fn Motion[T]) Option[T] {
	return func(p *Pool[T]) { p.motion = fn }
}

// Pool is a fixed set of slots for one entity family.
type Pool[T any] struct {
	slots   []Slot[T]
	gens    []uint32
	live    int
	dropped int

	onSpawn  Hook[T]
	onExpire Hook[T]
	motion   Motion[T]
}

// New allocates every slot up front.
func New[T any](capacity int, opts ...Option[T]) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{
		slots: make([]Slot[T], capacity),
		gens:  make([]uint32, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Spawn claims the first inactive slot. It returns false, and counts a
// drop, when every slot is active.
func (p *Pool[T]) Spawn(s Spawn[T]) (Handle, bool) {
	for i := range p.slots {
		if p.slots[i].Active {
			continue
		}
		p.gens[i]++
		if p.gens[i] == 0 {
			p.gens[i] = 1
		}
		p.slots[i] = Slot[T]{
			Active:   true,
			Position: s.Position,
			Velocity: s.Velocity,
			Life:     s.Life,
			Payload:  s.Payload,
		}
		p.live++
		h := Handle{index: i, gen: p.gens[i]}
		if p.onSpawn != nil {
			p.onSpawn(h, &p.slots[i])
		}
		return h, true
	}
	p.dropped++
	return Handle{}, false
}

// Get resolves a handle to its live slot.
func (p *Pool[T]) Get(h Handle) (*Slot[T], bool) {
	if !p.current(h) {
		return nil, false
	}
	return &p.slots[h.index], true
}

func (p *Pool[T]) current(h Handle) bool {
	return h.gen != 0 && h.index >= 0 && h.index < len(p.slots) &&
		p.gens[h.index] == h.gen && p.slots[h.index].Active
}

// Recycle returns a slot to the pool. Stale or zero handles are ignored.
func (p *Pool[T]) Recycle(h Handle) bool {
	if !p.current(h) {
		return false
	}
	p.slots[h.index] = Slot[T]{}
	p.live--
	return true
}

// ForEachActive visits live slots in slot order until fn returns false.
// Recycling the visited slot from inside fn is allowed.
func (p *Pool[T]) ForEachActive(fn func(h Handle, s *Slot[T]) bool) {
	for i := range p.slots {
		if !p.slots[i].Active {
			continue
		}
		if !fn(Handle{index: i, gen: p.gens[i]}, &p.slots[i]) {
			return
		}
	}
}

// Advance integrates motion and counts down lifetimes, recycling slots
// whose lifetime reaches zero.
func (p *Pool[T]) Advance(dt float64) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.Active {
			continue
		}
		s.Life -= dt
		if s.Life <= 0 {
			h := Handle{index: i, gen: p.gens[i]}
			if p.onExpire != nil {
				p.onExpire(h, s)
			}
			p.slots[i] = Slot[T]{}
			p.live--
			continue
		}
		if p.motion != nil {
			p.motion(s, dt)
		} else {
			s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
		}
	}
}

// Len is the number of active slots.
func (p *Pool[T]) Len() int { return p.live }

// Cap is the fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Dropped counts spawns refused because the pool was full.
func (p *Pool[T]) Dropped() int { return p.dropped }
