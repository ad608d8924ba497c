package sim

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tomz197/starhero/internal/sim"

type metrics struct {
	frames  metric.Int64Counter
	dropped metric.Int64Counter
	unlocks metric.Int64Counter
	downs   metric.Int64Counter
}

// newMetrics registers the core's counters on m, or on the global meter
// provider (a no-op unless configured) when m is nil.
func newMetrics(m metric.Meter) (*metrics, error) {
	if m == nil {
		m = otel.Meter(instrumentationName)
	}
	var (
		mt  metrics
		err error
	)
	mt.frames, err = m.Int64Counter("sim.frames", metric.WithDescription("Frames stepped"))
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	mt.dropped, err = m.Int64Counter("sim.spawns.dropped", metric.WithDescription("Spawns refused by full pools"))
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	mt.unlocks, err = m.Int64Counter("sim.achievements.unlocked", metric.WithDescription("Achievements unlocked"))
	if err != nil {
		return nil, fmt.Errorf("creating unlocks counter: %w", err)
	}
	mt.downs, err = m.Int64Counter("sim.vehicle.downs", metric.WithDescription("Times the vehicle was downed"))
	if err != nil {
		return nil, fmt.Errorf("creating downs counter: %w", err)
	}
	return &mt, nil
}

func (m *metrics) frame(dropped int) {
	ctx := context.Background()
	m.frames.Add(ctx, 1)
	if dropped > 0 {
		m.dropped.Add(ctx, int64(dropped))
	}
}

func (m *metrics) unlocked(ids []string) {
	for _, id := range ids {
		m.unlocks.Add(context.Background(), 1, metric.WithAttributes(attribute.String("achievement", id)))
	}
}

func (m *metrics) downed(source string) {
	m.downs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("source", source)))
}
