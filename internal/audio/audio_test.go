package audio

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/starhero/internal/config"
)

type fakeSink struct {
	now    float64
	events []Event
	early  int
}

func (f *fakeSink) Now() float64 { return f.now }

func (f *fakeSink) Schedule(e Event) {
	if e.Time < f.now {
		f.early++
	}
	f.events = append(f.events, e)
}

func TestScheduleAhead_TempoFormula(t *testing.T) {
	cfg := config.Default().Audio
	d := NewDirector(cfg, &fakeSink{})

	d.ScheduleAhead(0, 0, 0, 0.016)
	assert.Equal(t, 110.0, d.BPM())
	d.ScheduleAhead(0, 0.5, 0.5, 0.016)
	assert.Equal(t, 145.0, d.BPM())
	d.ScheduleAhead(0, 1, 1, 0.016)
	assert.Equal(t, 180.0, d.BPM())

	cfg.BaseBPM = 300
	d = NewDirector(cfg, nil)
	d.ScheduleAhead(0, 1, 1, 0.016)
	assert.Equal(t, cfg.MaxBPM, d.BPM())
	cfg.BaseBPM = 10
	d = NewDirector(cfg, nil)
	d.ScheduleAhead(0, 0, 0, 0.016)
	assert.Equal(t, cfg.MinBPM, d.BPM())
}

func TestScheduleAhead_FillsLookaheadOnce(t *testing.T) {
	cfg := config.Default().Audio
	sink := &fakeSink{}
	d := NewDirector(cfg, sink)

	// warm the pad and bass gains up
	for i := 0; i < 100; i++ {
		d.ScheduleAhead(0, 0, 0, 0.1)
	}
	require.Equal(t, 1, d.Beat(), "one beat inside the first window")
	first := sink.events[0]
	assert.InDelta(t, cfg.Epsilon, first.Time, 1e-12)

	// The next beat is 60/110 s later and enters the window only when
	// the clock gets within lookahead of it.
	next := cfg.Epsilon + 60.0/110
	sink.now = next - cfg.Lookahead - 0.01
	d.ScheduleAhead(sink.now, 0, 0, 0.01)
	assert.Equal(t, 1, d.Beat())

	sink.now = next - cfg.Lookahead + 0.01
	d.ScheduleAhead(sink.now, 0, 0, 0.01)
	assert.Equal(t, 2, d.Beat())
	last := sink.events[len(sink.events)-1]
	assert.InDelta(t, next, last.Time, 1e-9)
	assert.Equal(t, 1, last.Beat)
}

// Randomized frame jitter with occasional long stalls never schedules into
// the past and never replays a backlog.
func TestScheduleAhead_NeverSchedulesInThePast(t *testing.T) {
	cfg := config.Default().Audio
	sink := &fakeSink{}
	d := NewDirector(cfg, sink)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 10000; i++ {
		dt := rng.Float64() * 0.05
		if rng.Intn(200) == 0 {
			dt = 0.5 + rng.Float64()*2 // stalled frame
		}
		sink.now += dt
		before := len(sink.events)
		d.ScheduleAhead(sink.now, rng.Float64(), rng.Float64(), dt)

		require.Zero(t, sink.early, "call %d scheduled before now", i)
		// at 180 BPM the window holds at most one full beat plus the edge
		require.LessOrEqual(t, len(sink.events)-before, 2*int(NumLayers), "call %d replayed a backlog", i)
	}
	require.NotEmpty(t, sink.events)
	for i := 1; i < len(sink.events); i++ {
		assert.GreaterOrEqual(t, sink.events[i].Time, sink.events[i-1].Time)
	}
}

func TestGains_SmoothTowardTargets(t *testing.T) {
	d := NewDirector(config.Default().Audio, nil)

	d.ScheduleAhead(0, 1, 1, 0.1)
	g := d.Gains()
	tg := d.Targets()
	for l := Layer(0); l < NumLayers; l++ {
		assert.Greater(t, g[l], 0.0, l.String())
		assert.Less(t, g[l], tg[l], l.String())
	}

	for i := 0; i < 200; i++ {
		d.ScheduleAhead(0, 1, 1, 0.1)
	}
	g = d.Gains()
	for l := Layer(0); l < NumLayers; l++ {
		assert.InDelta(t, tg[l], g[l], 1e-6, l.String())
	}

	// calm flight silences the alarm
	for i := 0; i < 200; i++ {
		d.ScheduleAhead(0, 0, 0, 0.1)
	}
	assert.Less(t, d.Gains()[LayerAlarm], audible)
	assert.Less(t, d.Gains()[LayerDrums], audible)
}

func TestBeepSink_StartsAtExactSample(t *testing.T) {
	s := NewBeepSink(1000)
	s.Schedule(Event{Layer: LayerLead, Time: 0.05, Duration: 0.1, Freq: 100, Gain: 1})
	require.Equal(t, 1, s.Pending())

	buf := make([][2]float64, 40)
	n, ok := s.Stream(buf)
	require.Equal(t, 40, n)
	require.True(t, ok)
	for i := range buf {
		require.Zero(t, buf[i][0], "sample %d before the voice", i)
	}
	assert.InDelta(t, 0.04, s.Now(), 1e-9)

	s.Stream(buf) // samples 40..79
	for i := 0; i < 10; i++ {
		require.Zero(t, buf[i][0], "sample %d before the voice", 40+i)
	}
	assert.Zero(t, buf[10][0], "sine starts at phase zero on sample 50")
	assert.NotZero(t, buf[11][0], "sample 51 carries the voice")

	// 100 samples long: gone by sample 150
	for i := 0; i < 3; i++ {
		s.Stream(buf)
	}
	assert.Zero(t, s.Pending())
}

func TestBeepSink_LateEventStartsNow(t *testing.T) {
	s := NewBeepSink(1000)
	buf := make([][2]float64, 100)
	s.Stream(buf)

	s.Schedule(Event{Time: 0.01, Duration: 0.05, Freq: 100, Gain: 1})
	s.Stream(buf)
	assert.NotZero(t, buf[1][0])
}

func TestBeepSink_DropsAboveNyquist(t *testing.T) {
	s := NewBeepSink(1000)
	s.Schedule(Event{Time: 0, Duration: 0.1, Freq: 900, Gain: 1})
	assert.Zero(t, s.Pending())
}
