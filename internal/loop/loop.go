// Package loop drives a simulation core from a terminal with the usual
// Input → Step → Draw cycle at a fixed frame rate.
package loop

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomz197/starhero/internal/clock"
	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/draw"
	"github.com/tomz197/starhero/internal/input"
	"github.com/tomz197/starhero/internal/sim"
)

// Options configures a terminal session.
type Options struct {
	Config config.Config
	Size   draw.TermSizeFunc // defaults to the process terminal
	Now    func() time.Time  // defaults to time.Now
	Log    zerolog.Logger
}

// Run plays core until the pilot quits, the input ends or ctx is done.
func Run(ctx context.Context, core *sim.Core, r io.ByteReader, w io.Writer, opts Options) error {
	cfg := opts.Config
	size := opts.Size
	if size == nil {
		size = draw.StdoutSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	frameTime := time.Second / time.Duration(max(cfg.Sim.FPS, 1))

	stream := input.StartStream(r)
	sampler := input.NewSampler(input.DefaultHold, seconds(cfg.Abilities.DoubleTap))
	clk := clock.New(now, cfg.Sim.MaxDelta)

	cols, rows, err := size()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	renderer := draw.NewRenderer(w, cols, rows)

	draw.HideCursor(w)
	defer draw.ShowCursor(w)

	frames := 0
	defer func() {
		opts.Log.Debug().Int("frames", frames).Msg("loop stopped")
	}()

	for {
		frameStart := now()

		// ===== INPUT PHASE =====
		stream.Drain(sampler, frameStart)
		in := sampler.Sample(frameStart)

		// ===== UPDATE PHASE =====
		if width, height, err := size(); err == nil && (width != cols || height != rows) {
			cols, rows = width, height
			renderer.Resize(cols, rows)
		}
		snap := core.Step(clk.Tick(), in)

		// ===== DRAW PHASE =====
		if err := renderer.Draw(snap); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}
		frames++

		if in.Quit {
			return nil
		}

		// ===== FRAME TIMING =====
		wait := frameTime - now().Sub(frameStart)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(max(wait, 0)):
		}
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
