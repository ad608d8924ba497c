package ability

import (
	"math"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/physics"
)

// Roll is the barrel roll: a full eased turn about the nose.
type Roll struct {
	cfg      config.AbilityConfig
	active   bool
	dir      float64
	start    float64
	lastEnd  float64
	combo    int
	progress float64
}

func newRoll(cfg config.AbilityConfig) Roll {
	return Roll{cfg: cfg, lastEnd: math.Inf(-1)}
}

// Trigger starts a roll in direction dir (+1 left, -1 right). A roll that
// starts within the combo window of the previous roll's end extends the
// combo.
func (r *Roll) Trigger(dir, now float64) bool {
	if r.active {
		return false
	}
	r.active = true
	r.dir = dir
	r.start = now
	r.progress = 0
	if now-r.lastEnd < r.cfg.ComboWindow {
		r.combo++
	} else {
		r.combo = 1
	}
	return true
}

// Update returns the bank override and whether the roll ended this frame.
func (r *Roll) Update(now float64) (bank float64, ended bool) {
	if !r.active {
		return 0, false
	}
	t := (now - r.start) / r.cfg.RollDuration
	if t >= 1 {
		r.active = false
		r.lastEnd = now
		r.progress = 1
		return 0, true
	}
	r.progress = t
	return r.dir * 2 * math.Pi * physics.EaseInOutCubic(t), false
}

// Active reports whether a roll is in progress.
func (r *Roll) Active() bool { return r.active }

// Combo is the current combo count.
func (r *Roll) Combo() int { return r.combo }

// Status implements the HUD view.
func (r *Roll) Status() Status {
	if r.active {
		return Status{Phase: Active, Fraction: r.progress}
	}
	return Status{Phase: Idle}
}

// Flip is the half turn that reverses heading.
type Flip struct {
	cfg      config.AbilityConfig
	active   bool
	start    float64
	startYaw float64
	progress float64
	pullback float64
}

// Trigger starts a flip from the current yaw.
func (f *Flip) Trigger(now, yaw float64) bool {
	if f.active {
		return false
	}
	f.active = true
	f.start = now
	f.startYaw = yaw
	f.progress = 0
	return true
}

// Update returns the yaw override and whether the flip ended this frame.
func (f *Flip) Update(now float64) (yaw float64, ended bool) {
	if !f.active {
		f.pullback *= 0.9
		return 0, false
	}
	t := (now - f.start) / f.cfg.FlipDuration
	if t >= 1 {
		f.active = false
		f.pullback = 0
		f.progress = 1
		return f.startYaw + math.Pi, true
	}
	f.progress = t
	// Camera pull-back peaks mid-flip
	f.pullback = f.cfg.FlipPullback * math.Sin(t*math.Pi)
	return f.startYaw + math.Pi*physics.EaseInOutCubic(t), false
}

// Active reports whether a flip is in progress.
func (f *Flip) Active() bool { return f.active }

// Pullback is the chase-camera offset.
func (f *Flip) Pullback() float64 { return f.pullback }

// Status implements the HUD view.
func (f *Flip) Status() Status {
	if f.active {
		return Status{Phase: Active, Fraction: f.progress}
	}
	return Status{Phase: Idle}
}
