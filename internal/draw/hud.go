package draw

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomz197/starhero/internal/ability"
	"github.com/tomz197/starhero/internal/sim"
)

// hudRows is the number of terminal rows above the canvas.
const hudRows = 3

// proximityAlert is the rock proximity that raises the HUD warning.
const proximityAlert = 0.5

// HUD formats the status lines shown above the flight view.
func HUD(s *sim.Snapshot) [hudRows]string {
	v := s.Vehicle
	var lines [hudRows]string

	lines[0] = fmt.Sprintf("HULL %s %3d  SHIELD %s %3.0f  SPEED %4.1f  SCORE %d  HI %d",
		Bar(float64(v.HitPoints)/float64(max(v.MaxHitPoints, 1)), 10), v.HitPoints,
		Bar(v.Shield/math.Max(v.MaxShield, 1), 10), v.Shield,
		v.Speed, s.Score, s.HighScore)

	var b strings.Builder
	for k := ability.Kind(0); k < ability.NumKinds; k++ {
		if k > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s %s", strings.ToUpper(k.String()), abilityLabel(s.Abilities[k]))
	}
	if s.Combo > 1 {
		fmt.Fprintf(&b, "  COMBO x%d", s.Combo)
	}
	lines[1] = b.String()

	switch {
	case v.Downed:
		lines[2] = fmt.Sprintf("DOWNED  respawn in %.1fs", s.RespawnIn)
	case s.Episode.Active:
		lines[2] = fmt.Sprintf("METEOR STORM %d  %.0fs left", s.Episode.Number, s.Episode.Remaining)
	default:
		lines[2] = fmt.Sprintf("next storm in %.0fs", s.NextEpisode)
	}
	lines[2] += fmt.Sprintf("  DANGER %3.0f%%  BPM %3.0f  PILOTS %d", s.Danger*100, s.BPM, len(s.Ghosts)+1)
	if s.RockProximity >= proximityAlert {
		lines[2] += "  PROXIMITY"
	}
	return lines
}

func abilityLabel(st ability.Status) string {
	if st.Phase == ability.Idle {
		return "ready"
	}
	return fmt.Sprintf("%s %3.0f%%", st.Phase, st.Fraction*100)
}

// Bar renders a fraction in [0, 1] as a fixed-width gauge.
func Bar(fraction float64, width int) string {
	n := int(math.Round(math.Max(0, math.Min(1, fraction)) * float64(width)))
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", width-n) + "]"
}
