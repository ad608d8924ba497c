// Package progress keeps session statistics, unlocks achievements and
// tracks the persisted high score.
package progress

import (
	"fmt"
	"io"
	"math"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"github.com/tomz197/starhero/internal/store"
)

// Notification announces a newly unlocked achievement.
type Notification struct {
	ID    string
	Title string
	Text  string
}

// Ledger accumulates counters for one session. The unlocked set and high
// score are loaded from the store at construction and written back when
// they change; counters always start at zero.
type Ledger struct {
	counters Counters
	score    float64

	unlocked  map[string]bool
	ids       []string // unlock order, persisted as is
	highScore int
	queue     []Notification

	store store.Store
	log   zerolog.Logger
}

// NewLedger loads persisted state from s. Missing or corrupt entries fall
// back to an empty set and a zero high score.
func NewLedger(s store.Store, log zerolog.Logger) *Ledger {
	l := &Ledger{
		unlocked: make(map[string]bool),
		store:    s,
		log:      log,
	}
	var ids []string
	if store.LoadJSON(s, store.KeyUnlocked, &ids, log) {
		for _, id := range ids {
			if !l.unlocked[id] {
				l.unlocked[id] = true
				l.ids = append(l.ids, id)
			}
		}
	}
	var high int
	if store.LoadJSON(s, store.KeyHighScore, &high, log) && high > 0 {
		l.highScore = high
	}
	return l
}

// Record adds amount to counter c and scores it. Rocks and hazards also
// count as kills; BestCombo keeps the maximum.
func (l *Ledger) Record(c Counter, amount float64) {
	if c < 0 || c >= numCounters || amount < 0 {
		return
	}
	if c == BestCombo {
		l.counters[c] = math.Max(l.counters[c], amount)
		return
	}
	l.counters[c] += amount
	if c == Rocks || c == Hazards {
		l.counters[Kills] += amount
	}
	l.score += points[c] * amount
}

// Tick accumulates time alive.
func (l *Ledger) Tick(dt float64) {
	if dt > 0 {
		l.counters[TimeAlive] += dt
	}
}

// Evaluate runs the achievement table and returns the ids unlocked by this
// call, in table order. Already unlocked entries are skipped, so a second
// call without new events returns nothing.
func (l *Ledger) Evaluate() []string {
	var newly []string
	for _, a := range Achievements {
		if l.unlocked[a.ID] || !a.done(&l.counters) {
			continue
		}
		l.unlocked[a.ID] = true
		l.ids = append(l.ids, a.ID)
		l.queue = append(l.queue, Notification{ID: a.ID, Title: a.Title, Text: a.Description})
		newly = append(newly, a.ID)
		l.log.Info().Str("achievement", a.ID).Msg("achievement unlocked")
	}
	if len(newly) > 0 {
		l.persist(store.KeyUnlocked, l.ids)
	}

	if s := l.Score(); s > l.highScore {
		l.highScore = s
		l.persist(store.KeyHighScore, s)
	}
	return newly
}

func (l *Ledger) persist(key string, v any) {
	if err := store.SaveJSON(l.store, key, v); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to persist progress")
	}
}

// Flush returns pending notifications in unlock order and clears the queue.
func (l *Ledger) Flush() []Notification {
	if len(l.queue) == 0 {
		return nil
	}
	out := l.queue
	l.queue = nil
	return out
}

// Counters returns a copy of the session counters.
func (l *Ledger) Counters() Counters { return l.counters }

// Score is the session score.
func (l *Ledger) Score() int { return int(math.Round(l.score)) }

// HighScore is the best score across sessions.
func (l *Ledger) HighScore() int { return l.highScore }

// Unlocked reports whether id has ever been unlocked.
func (l *Ledger) Unlocked(id string) bool { return l.unlocked[id] }

// UnlockedCount is the size of the unlocked set.
func (l *Ledger) UnlockedCount() int { return len(l.ids) }

type summaryRow struct {
	Counter string  `csv:"counter"`
	Value   float64 `csv:"value"`
}

// WriteSummary writes the session counters, score and high score as CSV.
func (l *Ledger) WriteSummary(w io.Writer) error {
	rows := make([]summaryRow, 0, numCounters+2)
	for c := Counter(0); c < numCounters; c++ {
		rows = append(rows, summaryRow{Counter: c.String(), Value: l.counters[c]})
	}
	rows = append(rows,
		summaryRow{Counter: "score", Value: float64(l.Score())},
		summaryRow{Counter: "high_score", Value: float64(l.highScore)},
	)
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
