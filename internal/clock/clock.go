// Package clock supplies per-frame delta and elapsed time to the core.
package clock

import "time"

// Frame is the time slice handed to every component for one step.
type Frame struct {
	Delta   float64 // seconds since the previous frame, clamped
	Elapsed float64 // seconds since the clock started
}

// Source produces frames.
type Source interface {
	Tick() Frame
}

// Clock measures wall time through an injectable now function.
type Clock struct {
	now      func() time.Time
	last     time.Time
	elapsed  float64
	maxDelta float64
}

// New starts a clock. A maxDelta of zero disables clamping.
func New(now func() time.Time, maxDelta float64) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, last: now(), maxDelta: maxDelta}
}

// Tick returns the frame since the previous Tick. A suspended process
// resumes with at most maxDelta of simulated time.
func (c *Clock) Tick() Frame {
	t := c.now()
	dt := t.Sub(c.last).Seconds()
	c.last = t
	if dt < 0 {
		dt = 0
	}
	if c.maxDelta > 0 && dt > c.maxDelta {
		dt = c.maxDelta
	}
	c.elapsed += dt
	return Frame{Delta: dt, Elapsed: c.elapsed}
}

// Manual advances by a fixed step per Tick. Used for headless runs and tests.
type Manual struct {
	Step    float64
	elapsed float64
}

// Tick advances by Step.
func (m *Manual) Tick() Frame {
	m.elapsed += m.Step
	return Frame{Delta: m.Step, Elapsed: m.elapsed}
}

// Advance moves the manual clock by dt regardless of Step.
func (m *Manual) Advance(dt float64) Frame {
	m.elapsed += dt
	return Frame{Delta: dt, Elapsed: m.elapsed}
}
