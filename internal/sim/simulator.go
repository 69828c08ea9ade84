package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/metrics"
)

// Simulator drives an engine for a fixed number of steps, the way a frame
// loop would, and collects the energy trace and run metrics.
type Simulator struct {
	eng       *engine.Engine
	metrics   []metrics.Metric
	observers []Observer
}

func New(eng *engine.Engine) *Simulator {
	return &Simulator{eng: eng}
}

func (s *Simulator) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

// Run steps the graph cfg.Steps times. Skipped frames are retried on the
// next iteration and count towards cfg.Steps, as a frame loop would; an
// abandoned step keeps the prior state and is recorded in Result.Errors.
// Cancelling ctx returns the partial result with ctx.Err().
func (s *Simulator) Run(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	result := &Result{
		Energy:    make([]float64, 0, cfg.Steps+1),
		StepTimes: make([]time.Duration, 0, cfg.Steps),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x := graph.CloneNodes(nodes)
	result.Energy = append(result.Energy, metrics.KineticEnergy(x))

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		start := time.Now()
		out, err := s.eng.TryStep(x, edges, cfg.Params)
		elapsed := time.Since(start)

		switch {
		case errors.Is(err, graph.ErrFrameSkipped):
			result.Skipped++
			continue
		case err != nil:
			result.Abandoned++
			result.Errors = append(result.Errors, err)
			continue
		}

		x = out
		result.Steps++
		result.StepTimes = append(result.StepTimes, elapsed)
		result.Energy = append(result.Energy, metrics.KineticEnergy(x))

		for _, m := range s.metrics {
			m.Observe(x, result.Steps)
		}
		for _, o := range s.observers {
			o.OnStep(result.Steps, x, elapsed)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = x
	return result, runErr
}
