// Package input turns raw key events into the per-frame pilot intent.
package input

import "time"

// Key is a logical control, independent of the physical binding.
type Key int

const (
	KeyForward Key = iota
	KeyBackward
	KeyLeft
	KeyRight
	KeyBoost
	KeyFire
	KeyFlip
	KeyFTL
	KeyNova
	KeyQuit
	numKeys
)

// Intent is the snapshot of pilot input for one frame.
type Intent struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Boost    bool
	Fire     bool

	// Edge triggers, true for exactly one sample.
	RollLeft  bool
	RollRight bool
	Flip      bool

	// Held while charging.
	ChargeFTL  bool
	ChargeNova bool

	// Pointer offset from screen center, each in [-1, 1].
	LookX, LookY float64

	Quit bool
}

// Directional reports whether any steering key is held.
func (in Intent) Directional() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

type keyState struct {
	down      bool      // explicit press without a release yet
	lastPress time.Time // most recent press or repeat
	lastTap   time.Time // start of the most recent tap
}

// Sampler accumulates key events between frames. Hosts that only see key
// presses (terminals) rely on the hold window: a key counts as held while
// repeats keep arriving within it.
type Sampler struct {
	keys      [numKeys]keyState
	hold      time.Duration
	doubleTap time.Duration

	rollLeft  bool
	rollRight bool
	flip      bool

	lookX, lookY float64
}

// NewSampler creates a sampler. doubleTap is the maximum gap between the
// starts of two taps that trigger a roll.
func NewSampler(hold, doubleTap time.Duration) *Sampler {
	return &Sampler{hold: hold, doubleTap: doubleTap}
}

func (s *Sampler) held(k Key, now time.Time) bool {
	st := &s.keys[k]
	if st.down {
		return true
	}
	return !st.lastPress.IsZero() && now.Sub(st.lastPress) < s.hold
}

// Press records a key press or an auto-repeat of a held key.
func (s *Sampler) Press(k Key, at time.Time) {
	if k < 0 || k >= numKeys {
		return
	}
	repeat := s.held(k, at)
	st := &s.keys[k]
	st.lastPress = at
	st.down = true
	if repeat {
		return
	}

	// New tap
	if !st.lastTap.IsZero() && at.Sub(st.lastTap) <= s.doubleTap {
		switch k {
		case KeyLeft:
			s.rollLeft = true
		case KeyRight:
			s.rollRight = true
		}
		st.lastTap = time.Time{}
	} else {
		st.lastTap = at
	}
	if k == KeyFlip {
		s.flip = true
	}
}

// Release records an explicit key release. Terminal hosts never call it.
func (s *Sampler) Release(k Key, at time.Time) {
	if k < 0 || k >= numKeys {
		return
	}
	st := &s.keys[k]
	st.down = false
	st.lastPress = time.Time{}
}

// tap is Press immediately followed by Release, for byte-stream hosts.
func (s *Sampler) tap(k Key, at time.Time) {
	s.Press(k, at)
	s.keys[k].down = false
}

// Point sets the pointer-relative look offset, clamped to [-1, 1].
func (s *Sampler) Point(x, y float64) {
	s.lookX = clampUnit(x)
	s.lookY = clampUnit(y)
}

// Sample builds the intent for the frame at now and clears edge triggers.
func (s *Sampler) Sample(now time.Time) Intent {
	in := Intent{
		Forward:    s.held(KeyForward, now),
		Backward:   s.held(KeyBackward, now),
		Left:       s.held(KeyLeft, now),
		Right:      s.held(KeyRight, now),
		Boost:      s.held(KeyBoost, now),
		Fire:       s.held(KeyFire, now),
		ChargeFTL:  s.held(KeyFTL, now),
		ChargeNova: s.held(KeyNova, now),
		Quit:       s.held(KeyQuit, now),
		RollLeft:   s.rollLeft,
		RollRight:  s.rollRight,
		Flip:       s.flip,
		LookX:      s.lookX,
		LookY:      s.lookY,
	}
	s.rollLeft, s.rollRight, s.flip = false, false, false
	return in
}

func clampUnit(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
