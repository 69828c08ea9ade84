package compute

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/grid"
)

const (
	PhaseClearGrid = "clear-grid"
	PhaseAssign    = "assign-to-grid"
	PhaseRepulsion = "repulsion"
	PhaseSpring    = "spring"
	PhaseIntegrate = "integrate"
)

// probeAttempts is how many times the accelerated backend is constructed
// before settling on the serial fallback. Only a failed self-test is
// retried; configuration errors fail on the first attempt.
const probeAttempts = 2

// Frame is the working set of one step. Backends mutate Nodes in place.
type Frame struct {
	Nodes  []graph.Node
	Edges  []graph.Edge
	Params graph.Params
}

// Phase is one stage of the step pipeline. A phase returns only after all
// of its work is complete.
type Phase struct {
	Name string
	Run  func(f *Frame) error
}

type Backend interface {
	Name() string
	Available() bool
	Phases() []Phase
	Cleanup()
}

type Options struct {
	Workers      int
	MinChunk     int
	Accelerate   bool
	GridSize     int
	CellCapacity int
	WorldMin     float64
	WorldMax     float64
}

func DefaultOptions() Options {
	return Options{
		Workers:      runtime.GOMAXPROCS(0),
		MinChunk:     256,
		Accelerate:   true,
		GridSize:     grid.DefaultSize,
		CellCapacity: grid.DefaultCapacity,
		WorldMin:     graph.WorldMin,
		WorldMax:     graph.WorldMax,
	}
}

// AutoSelectBackend returns the parallel grid pipeline when it can be built
// on this platform and the serial fallback otherwise. The returned backend
// is always usable; a non-nil error explains why the fallback was chosen.
func AutoSelectBackend(opts Options) (Backend, error) {
	var err error
	for attempt := 0; attempt < probeAttempts; attempt++ {
		var pb *ParallelBackend
		pb, err = newParallelBackend(opts)
		if err == nil {
			return pb, nil
		}
		var ue *unsupportedError
		if errors.As(err, &ue) {
			break
		}
	}
	return NewSerialBackend(), err
}

var newParallelBackend = NewParallelBackend

// unsupportedError marks a probe failure caused by the options or the
// platform rather than by the run itself.
type unsupportedError struct{ err error }

func (e *unsupportedError) Error() string { return e.err.Error() }
func (e *unsupportedError) Unwrap() error { return e.err }

func unsupported(format string, args ...any) error {
	return &unsupportedError{fmt.Errorf(format, args...)}
}

// RunPhases executes the backend's phases in order. observe, when non-nil,
// receives each completed phase's duration. The first failing phase stops
// the pipeline and is reported as a *graph.StepError.
func RunPhases(b Backend, f *Frame, observe func(phase string, elapsed time.Duration)) error {
	for _, ph := range b.Phases() {
		start := time.Now()
		if err := ph.Run(f); err != nil {
			return &graph.StepError{Phase: ph.Name, Wrapped: err}
		}
		if observe != nil {
			observe(ph.Name, time.Since(start))
		}
	}
	return nil
}

var errDisabled = unsupported("acceleration disabled: %w", graph.ErrBackendUnavailable)
