package sim

import (
	"time"

	"github.com/san-kum/forcegraph/internal/graph"
)

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step int, nodes []graph.Node, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, nodes []graph.Node, elapsed time.Duration)

func (f ObserverFunc) OnStep(step int, nodes []graph.Node, elapsed time.Duration) {
	f(step, nodes, elapsed)
}

type Config struct {
	Steps  int
	Params graph.Params
}

// Result summarises a run. Energy[0] is the kinetic energy of the initial
// state and Energy[i] the energy after the i-th completed step; StepTimes
// is aligned with steps, so len(StepTimes) == len(Energy)-1.
type Result struct {
	Steps     int
	Skipped   int
	Abandoned int
	Energy    []float64
	StepTimes []time.Duration
	Metrics   map[string]float64
	Final     []graph.Node
	Errors    []error
}

// MeanStepTime averages the completed steps' wall time.
func (r *Result) MeanStepTime() time.Duration {
	if len(r.StepTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range r.StepTimes {
		total += d
	}
	return total / time.Duration(len(r.StepTimes))
}
