package ability

import (
	"math"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/vehicle"
)

// FTL is the jump drive: hold to charge, relocate at full charge.
type FTL struct {
	cfg      config.AbilityConfig
	phase    Phase
	charge   float64
	cooldown float64
	armed    bool // false until the key is released after a jump
}

// Update advances the drive and reports the jump and cancel transitions.
func (f *FTL) Update(held bool, dt float64) (jumped, cancelled bool) {
	switch f.phase {
	case Idle:
		if held && f.armed {
			f.phase = Charging
			f.charge = 0
		}
	case Charging:
		if !held {
			// Early release: no jump, no cooldown
			f.phase = Idle
			f.charge = 0
			return false, true
		}
		f.charge += dt
		if f.charge >= f.cfg.FTLCharge {
			f.phase = Jumping
			f.charge = 0
			f.cooldown = f.cfg.FTLCooldown
			f.armed = false
			jumped = true
		}
	case Jumping:
		f.phase = Cooldown
	case Cooldown:
		f.cooldown -= dt
		if f.cooldown <= 0 {
			f.cooldown = 0
			f.phase = Idle
		}
	}
	if !held {
		f.armed = true
	}
	return jumped, false
}

// Phase is the current drive phase.
func (f *FTL) Phase() Phase { return f.phase }

// Cooldown is the remaining cooldown in seconds.
func (f *FTL) Cooldown() float64 { return f.cooldown }

// Status implements the HUD view.
func (f *FTL) Status() Status {
	switch f.phase {
	case Charging:
		return Status{Phase: Charging, Fraction: math.Min(1, f.charge/f.cfg.FTLCharge)}
	case Cooldown:
		return Status{Phase: Cooldown, Fraction: 1 - f.cooldown/f.cfg.FTLCooldown}
	}
	return Status{Phase: f.phase}
}

// Nova is the area weapon: hold to grow the blast, release to fire.
type Nova struct {
	cfg      config.AbilityConfig
	phase    Phase
	charge   float64
	cooldown float64
}

// Update advances the weapon. On release it returns the blast radius,
// scaled by the charge fraction.
func (n *Nova) Update(held bool, dt float64) (radius float64, fired bool) {
	switch n.phase {
	case Idle:
		if held {
			n.phase = Charging
			n.charge = 0
		}
	case Charging:
		if held {
			n.charge = math.Min(n.charge+dt, n.cfg.NovaCharge)
			return 0, false
		}
		frac := 1.0
		if n.cfg.NovaCharge > 0 {
			frac = n.charge / n.cfg.NovaCharge
		}
		n.phase = Cooldown
		n.cooldown = n.cfg.NovaCooldown
		n.charge = 0
		return n.cfg.NovaMinRadius + frac*(n.cfg.NovaMaxRadius-n.cfg.NovaMinRadius), true
	case Cooldown:
		n.cooldown -= dt
		if n.cooldown <= 0 {
			n.cooldown = 0
			n.phase = Idle
		}
	}
	return 0, false
}

// Phase is the current weapon phase.
func (n *Nova) Phase() Phase { return n.phase }

// Status implements the HUD view.
func (n *Nova) Status() Status {
	switch n.phase {
	case Charging:
		return Status{Phase: Charging, Fraction: n.charge / n.cfg.NovaCharge}
	case Cooldown:
		return Status{Phase: Cooldown, Fraction: 1 - n.cooldown/n.cfg.NovaCooldown}
	}
	return Status{Phase: Idle}
}

// Shield regenerates energy after a quiet period and ripples on boost.
type Shield struct {
	cfg      config.AbilityConfig
	sinceHit float64
	boosting bool
}

// Hit restarts the regeneration delay.
func (s *Shield) Hit() { s.sinceHit = 0 }

// Update regenerates energy and reports a ripple on the boost rising edge.
func (s *Shield) Update(v *vehicle.Vehicle, boost bool, dt float64) (ripple bool) {
	s.sinceHit += dt
	if s.sinceHit >= s.cfg.ShieldRegenDelay && !v.Downed {
		v.Shield = math.Min(v.MaxShield, v.Shield+s.cfg.ShieldRegen*dt)
	}
	ripple = boost && !s.boosting
	s.boosting = boost
	return ripple
}
