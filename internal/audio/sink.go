package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

type voice struct {
	start    int // absolute sample index
	streamer beep.Streamer
	gain     float64
}

// BeepSink is a Sink and a beep.Streamer. Its clock is the number of
// samples it has produced, so events land on their exact sample no matter
// how late the frame loop schedules them.
type BeepSink struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	pos    int
	voices []voice
	buf    [][2]float64
	volume float64
}

// NewBeepSink returns a silent sink at the given sample rate.
func NewBeepSink(rate beep.SampleRate) *BeepSink {
	return &BeepSink{rate: rate, volume: 0.25}
}

// Now is the time of the next sample to be streamed.
func (s *BeepSink) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate.D(s.pos).Seconds()
}

// Schedule queues a voice starting at e.Time. Events in the past start
// immediately; frequencies above Nyquist are dropped.
func (s *BeepSink) Schedule(e Event) {
	tone, err := generators.SineTone(s.rate, e.Freq)
	if err != nil {
		return
	}
	length := s.rate.N(time.Duration(e.Duration * float64(time.Second)))
	if length <= 0 {
		return
	}
	start := s.rate.N(time.Duration(e.Time * float64(time.Second)))

	s.mu.Lock()
	defer s.mu.Unlock()
	if start < s.pos {
		start = s.pos
	}
	s.voices = append(s.voices, voice{
		start:    start,
		streamer: &decay{s: beep.Take(length, tone), total: length},
		gain:     e.Gain,
	})
}

// Stream mixes every voice that overlaps this buffer. It runs on the
// speaker goroutine.
func (s *BeepSink) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	if cap(s.buf) < len(samples) {
		s.buf = make([][2]float64, len(samples))
	}
	end := s.pos + len(samples)

	kept := s.voices[:0]
	for _, v := range s.voices {
		if v.start >= end {
			kept = append(kept, v)
			continue
		}
		offset := max(0, v.start-s.pos)
		tmp := s.buf[:len(samples)-offset]
		n, ok := v.streamer.Stream(tmp)
		for i := 0; i < n; i++ {
			samples[offset+i][0] += tmp[i][0] * v.gain * s.volume
			samples[offset+i][1] += tmp[i][1] * v.gain * s.volume
		}
		if ok && n == len(tmp) {
			v.start = end
			kept = append(kept, v)
		}
	}
	s.voices = kept
	s.pos = end
	return len(samples), true
}

// Err never fails.
func (s *BeepSink) Err() error { return nil }

// Pending is the number of voices queued or playing.
func (s *BeepSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// decay fades a voice out linearly to avoid clicks at its end.
type decay struct {
	s     beep.Streamer
	n     int
	total int
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := d.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1 - float64(d.n)/float64(d.total)
		samples[i][0] *= g
		samples[i][1] *= g
		d.n++
	}
	return n, ok
}

func (d *decay) Err() error { return d.s.Err() }

// Play opens the default output device and starts streaming sink.
func Play(sink *BeepSink) error {
	if err := speaker.Init(sink.rate, sink.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sink)
	return nil
}

// Stop closes the output device.
func Stop() {
	speaker.Close()
}
