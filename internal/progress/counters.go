package progress

// Counter names one session statistic.
type Counter int

const (
	Kills Counter = iota // rocks and hazards, recorded implicitly
	Rocks
	Hazards
	Bosses
	Distance
	Rolls
	BestCombo // high-water mark, not a sum
	Flips
	Jumps
	Novas
	Resources
	Absorbed
	DamageTaken
	Downs
	EpisodesSurvived
	EpisodesUnscathed
	TimeAlive
	numCounters
)

var counterNames = [numCounters]string{
	"kills", "rocks", "hazards", "bosses", "distance", "rolls", "best_combo",
	"flips", "jumps", "novas", "resources", "absorbed", "damage_taken",
	"downs", "episodes_survived", "episodes_unscathed", "time_alive",
}

func (c Counter) String() string {
	if c >= 0 && c < numCounters {
		return counterNames[c]
	}
	return "unknown"
}

// points awarded per unit of each counter.
var points = [numCounters]float64{
	Rocks:             10,
	Hazards:           25,
	Bosses:            500,
	Rolls:             5,
	Flips:             10,
	Jumps:             20,
	Novas:             5,
	Resources:         15,
	EpisodesSurvived:  100,
	EpisodesUnscathed: 250,
}

// Counters is a read-only view of the session statistics.
type Counters [numCounters]float64

// Get returns the value of c.
func (cs Counters) Get(c Counter) float64 { return cs[c] }

// Achievement is one entry of the unlock table.
type Achievement struct {
	ID          string
	Title       string
	Description string
	done        func(c *Counters) bool
}

func atLeast(c Counter, n float64) func(*Counters) bool {
	return func(cs *Counters) bool { return cs[c] >= n }
}

// Achievements is evaluated in this order every frame.
var Achievements = []Achievement{
	{"first_blood", "First Blood", "Break your first rock", atLeast(Kills, 1)},
	{"rock_breaker", "Rock Breaker", "Break 50 rocks", atLeast(Rocks, 50)},
	{"storm_chaser", "Storm Chaser", "Destroy 25 storm meteors", atLeast(Hazards, 25)},
	{"giant_slayer", "Giant Slayer", "Destroy a boss", atLeast(Bosses, 1)},
	{"barrel_roll", "Do a Barrel Roll", "Complete a roll", atLeast(Rolls, 1)},
	{"combo_artist", "Combo Artist", "Chain a triple roll", atLeast(BestCombo, 3)},
	{"about_face", "About Face", "Complete a flip", atLeast(Flips, 1)},
	{"lightspeed", "Lightspeed", "Make an FTL jump", atLeast(Jumps, 1)},
	{"supernova", "Supernova", "Fire a nova", atLeast(Novas, 1)},
	{"collector", "Collector", "Collect 10 pickups", atLeast(Resources, 10)},
	{"shield_wall", "Shield Wall", "Absorb 20 hits", atLeast(Absorbed, 20)},
	{"storm_survivor", "Weathered", "Survive a meteor storm", atLeast(EpisodesSurvived, 1)},
	{"untouchable", "Untouchable", "Survive a storm without hull damage", atLeast(EpisodesUnscathed, 1)},
	{"phoenix", "Phoenix", "Get downed and fly again", atLeast(Downs, 1)},
	{"marathon", "Marathon", "Travel 10000 units", atLeast(Distance, 10000)},
	{"survivor", "Survivor", "Stay alive for five minutes", atLeast(TimeAlive, 300)},
}
