package input

import (
	"io"
	"time"
)

// Default timings for terminal hosts. Terminals repeat a held key roughly
// every 30-40ms after the initial repeat delay.
const (
	DefaultHold      = 75 * time.Millisecond
	DefaultDoubleTap = 250 * time.Millisecond
)

// Stream delivers input bytes from a terminal via a channel.
type Stream struct {
	ch     chan byte
	closed bool
	dec    Decoder
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.ByteReader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool { return s.closed }

// Drain reads every byte available right now (non-blocking) and feeds the
// decoded keys into the sampler as taps at time now.
func (s *Stream) Drain(smp *Sampler, now time.Time) {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	s.dec.Decode(buf, smp, now)
	if s.closed {
		smp.tap(KeyQuit, now)
	}
}

// Decoder maps terminal bytes to key taps. An escape sequence cut off at
// the end of a chunk is kept until the next one.
type Decoder struct {
	pending []byte
}

// Decode feeds one chunk. Arrow keys arrive as CSI sequences (ESC [ A..D).
// A lone ESC quits once a following chunk comes up empty, so the ESC of an
// arrow key read on its own never does.
func (d *Decoder) Decode(buf []byte, smp *Sampler, now time.Time) {
	if len(d.pending) > 0 {
		if len(buf) == 0 {
			if len(d.pending) == 1 {
				smp.tap(KeyQuit, now)
			}
			d.pending = nil
			return
		}
		buf = append(d.pending, buf...)
		d.pending = nil
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			if k, ok := byteKey(b); ok {
				smp.tap(k, now)
			}
			continue
		}

		rest := len(buf) - i - 1
		switch {
		case rest == 0, rest == 1 && buf[i+1] == '[':
			d.pending = append([]byte(nil), buf[i:]...)
			return
		case buf[i+1] == '[':
			if k, ok := arrowKey(buf[i+2]); ok {
				smp.tap(k, now)
			}
			i += 2
		}
		// ESC before anything else is an alt chord; the key itself is read next
	}
}

func arrowKey(code byte) (Key, bool) {
	switch code {
	case 'A':
		return KeyForward, true
	case 'B':
		return KeyBackward, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return 0, false
}

func byteKey(b byte) (Key, bool) {
	switch b {
	case 'w', 'W', 'i', 'I':
		return KeyForward, true
	case 's', 'S', 'k', 'K':
		return KeyBackward, true
	case 'a', 'A', 'j', 'J':
		return KeyLeft, true
	case 'd', 'D', 'l', 'L':
		return KeyRight, true
	case ' ':
		return KeyBoost, true
	case 'f', 'F', '\r', '\n':
		return KeyFire, true
	case 'q', 'Q':
		return KeyFlip, true
	case 'e', 'E':
		return KeyFTL, true
	case 'r', 'R':
		return KeyNova, true
	case '\x03':
		return KeyQuit, true
	}
	return 0, false
}
