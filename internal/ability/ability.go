// Package ability implements the pilot's maneuvers and charged abilities as
// small state machines driven by intent and frame time.
package ability

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/input"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/vehicle"
)

// Phase is the lifecycle position of an ability.
type Phase int

const (
	Idle Phase = iota
	Charging
	Active
	Jumping
	Cooldown
)

func (p Phase) String() string {
	switch p {
	case Charging:
		return "charging"
	case Active:
		return "active"
	case Jumping:
		return "jumping"
	case Cooldown:
		return "cooldown"
	default:
		return "idle"
	}
}

// Kind names one ability.
type Kind int

const (
	KindRoll Kind = iota
	KindFlip
	KindFTL
	KindNova
	NumKinds
)

func (k Kind) String() string {
	switch k {
	case KindRoll:
		return "roll"
	case KindFlip:
		return "flip"
	case KindFTL:
		return "ftl"
	case KindNova:
		return "nova"
	}
	return "unknown"
}

// Status is what a HUD needs to draw an ability. Fraction is progress
// through the current phase.
type Status struct {
	Phase    Phase
	Fraction float64
}

// EventKind classifies an ability event.
type EventKind int

const (
	RollStarted EventKind = iota
	RollEnded
	ComboCelebrated
	FlipStarted
	FlipEnded
	JumpCancelled
	Jumped
	NovaFired
	ShieldRipple
)

// Event is emitted on ability transitions.
type Event struct {
	Kind     EventKind
	Combo    int
	Text     string
	Radius   float64
	Position r3.Vec
}

// Set holds every ability of one vehicle.
type Set struct {
	cfg    config.AbilityConfig
	rng    *rand.Rand
	Roll   Roll
	Flip   Flip
	FTL    FTL
	Nova   Nova
	Shield Shield
	events []Event
}

// NewSet creates idle abilities.
func NewSet(cfg config.AbilityConfig, rng *rand.Rand) *Set {
	return &Set{
		cfg:    cfg,
		rng:    rng,
		Roll:   newRoll(cfg),
		Flip:   Flip{cfg: cfg},
		FTL:    FTL{cfg: cfg, armed: true},
		Nova:   Nova{cfg: cfg},
		Shield: Shield{cfg: cfg},
	}
}

// Begin handles maneuver triggers and returns the intent the integrator
// should see: steering is suppressed during a flip.
func (s *Set) Begin(in input.Intent, v *vehicle.Vehicle, now float64) input.Intent {
	s.events = s.events[:0]

	dir := 0.0
	switch {
	case in.RollLeft:
		dir = 1
	case in.RollRight:
		dir = -1
	}
	if dir != 0 && !s.Flip.Active() && s.Roll.Trigger(dir, now) {
		// Speed kick along the nose
		kick := max(v.Speed*s.cfg.RollKickRatio, s.cfg.RollKickMin)
		v.Velocity = r3.Add(v.Velocity, r3.Scale(kick, v.Forward()))
		s.emit(Event{Kind: RollStarted, Combo: s.Roll.Combo()})
	}
	if in.Flip && !s.Roll.Active() && s.Flip.Trigger(now, v.Yaw) {
		s.emit(Event{Kind: FlipStarted})
	}

	if s.Flip.Active() {
		in.Forward, in.Backward, in.Left, in.Right = false, false, false, false
	}
	return in
}

// Finish applies orientation overrides after integration and advances the
// charge machines and shield.
func (s *Set) Finish(in input.Intent, v *vehicle.Vehicle, now, dt float64) {
	if bank, ended := s.Roll.Update(now); s.Roll.Active() || ended {
		v.Bank = bank
		if ended {
			s.emit(Event{Kind: RollEnded, Combo: s.Roll.Combo()})
			if text := ComboText(s.Roll.Combo()); text != "" {
				s.emit(Event{Kind: ComboCelebrated, Combo: s.Roll.Combo(), Text: text})
			}
		}
	}

	if yaw, ended := s.Flip.Update(now); s.Flip.Active() || ended {
		v.Yaw = yaw
		if ended {
			s.emit(Event{Kind: FlipEnded, Position: v.Position, Text: "FLIP!"})
		}
	}

	jumped, cancelled := s.FTL.Update(in.ChargeFTL, dt)
	switch {
	case jumped:
		from := v.Position
		v.Position = physics.InShell(s.rng, v.Position, s.cfg.FTLMinDistance, s.cfg.FTLMaxDistance)
		v.Velocity = r3.Vec{}
		v.Speed = 0
		s.emit(Event{Kind: Jumped, Position: from})
	case cancelled:
		s.emit(Event{Kind: JumpCancelled})
	}

	if radius, fired := s.Nova.Update(in.ChargeNova, dt); fired {
		s.emit(Event{Kind: NovaFired, Radius: radius, Position: v.Position})
	}

	if s.Shield.Update(v, in.Boost, dt) {
		s.emit(Event{Kind: ShieldRipple, Position: v.Position})
	}
}

// Status reports the state of one ability.
func (s *Set) Status(k Kind) Status {
	switch k {
	case KindRoll:
		return s.Roll.Status()
	case KindFlip:
		return s.Flip.Status()
	case KindFTL:
		return s.FTL.Status()
	case KindNova:
		return s.Nova.Status()
	}
	return Status{}
}

// Events are the transitions of the current frame.
func (s *Set) Events() []Event { return s.events }

func (s *Set) emit(e Event) { s.events = append(s.events, e) }

// ComboText is the celebration for a roll combo, empty below two.
func ComboText(combo int) string {
	switch {
	case combo < 2:
		return ""
	case combo == 2:
		return "COMBO x2!"
	case combo == 3:
		return "TRIPLE ROLL!"
	case combo == 4:
		return "QUAD SPIN!"
	default:
		return "ABSOLUTELY MENTAL!"
	}
}
