package hazard

import (
	"math"

	"github.com/tomz197/starhero/internal/entity"
	"github.com/tomz197/starhero/internal/physics"
	"github.com/tomz197/starhero/internal/pool"
	"github.com/tomz197/starhero/internal/vehicle"
)

// Weights of the danger terms; they sum to 1.
const (
	proximityWeight = 0.6
	episodeWeight   = 0.25
	hullWeight      = 0.15
)

// Danger summarizes the threat around v as a value in [0, 1]: the nearest
// hazard surface inside dangerRange, whether a storm is running, and lost
// hull. Bosses count double toward proximity.
func Danger(v vehicle.Vehicle, hazards *pool.Pool[entity.Hazard], ep Episode, dangerRange float64) float64 {
	proximity := 0.0
	if dangerRange > 0 {
		hazards.ForEachActive(func(_ pool.Handle, s *pool.Slot[entity.Hazard]) bool {
			gap := physics.Distance(s.Position, v.Position) - s.Payload.Radius - v.Radius
			p := 1 - math.Max(0, gap)/dangerRange
			if s.Payload.Kind == entity.HazardBoss {
				p *= 2
			}
			proximity = math.Max(proximity, p)
			return true
		})
	}

	episode := 0.0
	if ep.Active {
		episode = 1
	}

	hull := 0.0
	if v.MaxHitPoints > 0 {
		hull = 1 - float64(v.HitPoints)/float64(v.MaxHitPoints)
	}

	d := proximityWeight*clamp01(proximity) + episodeWeight*episode + hullWeight*clamp01(hull)
	return clamp01(d)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
