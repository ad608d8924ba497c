// Package audio schedules the adaptive soundtrack. The Director decides
// what plays on each beat; a Sink turns scheduled events into sound.
package audio

import (
	"math"

	"github.com/tomz197/starhero/internal/config"
)

// Layer is one voice of the mix.
type Layer int

const (
	LayerPad Layer = iota
	LayerBass
	LayerDrums
	LayerLead
	LayerAlarm
	NumLayers
)

var layerNames = [NumLayers]string{"pad", "bass", "drums", "lead", "alarm"}

func (l Layer) String() string {
	if l >= 0 && l < NumLayers {
		return layerNames[l]
	}
	return "unknown"
}

// Event is one note placed on the audio timeline.
type Event struct {
	Layer    Layer
	Beat     int
	Time     float64 // seconds on the sink clock
	Duration float64
	Freq     float64
	Gain     float64
}

// Sink plays events at their exact time. Now is the sink's own clock,
// which runs independently of the frame loop.
type Sink interface {
	Now() float64
	Schedule(e Event)
}

// audible is the gain below which a layer is not scheduled.
const audible = 0.01

// Minor pentatonic over A, used by bass and lead.
var scale = [...]float64{1, 6.0 / 5, 4.0 / 3, 3.0 / 2, 9.0 / 5}

// Director keeps a short window ahead of the sink clock filled with beats.
type Director struct {
	cfg  config.AudioConfig
	sink Sink

	bpm     float64
	next    float64 // time of the next unscheduled beat
	started bool
	beat    int
	gain    [NumLayers]float64
	target  [NumLayers]float64
}

// NewDirector returns a director feeding sink. A nil sink still tracks
// tempo and gains, which the HUD shows, but schedules nothing.
func NewDirector(cfg config.AudioConfig, sink Sink) *Director {
	return &Director{cfg: cfg, sink: sink, bpm: cfg.BaseBPM}
}

// ScheduleAhead recomputes tempo and gain targets from the flight state,
// smooths the gains over dt and schedules every beat that starts before
// now+lookahead. A cursor that fell behind now jumps to now+epsilon
// without playing the missed beats. It returns the number of events sent.
func (d *Director) ScheduleAhead(now, speedRatio, danger, dt float64) int {
	speedRatio = clamp(speedRatio, 0, 1)
	danger = clamp(danger, 0, 1)

	d.bpm = clamp(d.cfg.BaseBPM+d.cfg.SpeedBPM*speedRatio+d.cfg.DangerBPM*danger, d.cfg.MinBPM, d.cfg.MaxBPM)
	d.setTargets(speedRatio, danger)
	d.smooth(dt)

	if d.sink == nil {
		return 0
	}
	if !d.started || d.next < now {
		d.next = now + d.cfg.Epsilon
		d.started = true
	}

	sent := 0
	spb := 60 / d.bpm
	for d.next < now+d.cfg.Lookahead {
		sent += d.scheduleBeat(d.next, spb)
		d.beat++
		d.next += spb
	}
	return sent
}

func (d *Director) setTargets(speed, danger float64) {
	d.target[LayerPad] = 0.5
	d.target[LayerBass] = 0.3 + 0.5*speed
	d.target[LayerDrums] = clamp(1.2*speed-0.1, 0, 1)
	d.target[LayerLead] = clamp(1.5*danger-0.3, 0, 1)
	d.target[LayerAlarm] = clamp((danger-0.7)/0.3, 0, 1)
}

// smooth moves each gain toward its target with time constant GainTau.
func (d *Director) smooth(dt float64) {
	if dt <= 0 {
		return
	}
	k := 1.0
	if d.cfg.GainTau > 0 {
		k = 1 - math.Exp(-dt/d.cfg.GainTau)
	}
	for i := range d.gain {
		d.gain[i] += (d.target[i] - d.gain[i]) * k
	}
}

func (d *Director) scheduleBeat(at, spb float64) int {
	sent := 0
	for l := Layer(0); l < NumLayers; l++ {
		g := d.gain[l]
		if g < audible {
			continue
		}
		freq, length, ok := d.note(l)
		if !ok {
			continue
		}
		d.sink.Schedule(Event{Layer: l, Beat: d.beat, Time: at, Duration: length * spb, Freq: freq, Gain: g})
		sent++
	}
	return sent
}

// note returns the pitch and length in beats of layer l on the current
// beat, or false when the layer rests.
func (d *Director) note(l Layer) (float64, float64, bool) {
	b := d.beat
	switch l {
	case LayerPad:
		if b%4 != 0 {
			return 0, 0, false
		}
		return 220 * scale[(b/4)%2*3], 4, true
	case LayerBass:
		return 55 * scale[[4]int{0, 0, 3, 2}[b%4]], 0.9, true
	case LayerDrums:
		if b%2 == 0 {
			return 60, 0.25, true // kick
		}
		return 180, 0.15, true
	case LayerLead:
		if b%2 != 0 {
			return 0, 0, false
		}
		return 440 * scale[(b*3)%len(scale)], 0.5, true
	case LayerAlarm:
		if b%2 != 1 {
			return 0, 0, false
		}
		return 880, 0.4, true
	}
	return 0, 0, false
}

// BPM is the tempo of the last call.
func (d *Director) BPM() float64 { return d.bpm }

// Gains returns the smoothed gain of every layer.
func (d *Director) Gains() [NumLayers]float64 { return d.gain }

// Targets returns the gain every layer is moving toward.
func (d *Director) Targets() [NumLayers]float64 { return d.target }

// Beat is the number of beats scheduled so far.
func (d *Director) Beat() int { return d.beat }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
