package collision

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/entity"
)

// Kind classifies a collision outcome.
type Kind int

const (
	// RockHit: a projectile struck a rock, which was relocated.
	RockHit Kind = iota
	// HazardHit: a projectile damaged a hazard that survived.
	HazardHit
	// HazardDestroyed: a projectile finished a hazard.
	HazardDestroyed
	// Absorbed: shield energy or invulnerability soaked a hit.
	Absorbed
	// Damaged: the hull lost hit points.
	Damaged
	// Downed: hit points reached zero. Emitted once per life.
	Downed
	// PickupCollected: the vehicle flew through a pickup.
	PickupCollected
)

var kindNames = [...]string{"rock_hit", "hazard_hit", "hazard_destroyed", "absorbed", "damaged", "downed", "pickup"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Source is what struck the vehicle.
type Source int

const (
	SourceRock Source = iota
	SourceHazard
)

// Event is one resolved contact.
type Event struct {
	Kind     Kind
	Position r3.Vec
	Size     float64 // rock size or hazard radius
	Amount   float64 // damage, shield spent or pickup amount
	Source   Source
	Boss     bool
	Resource entity.Resource
}

// Count returns how many events of kind k are in events.
func Count(events []Event, k Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
