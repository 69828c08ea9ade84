package compute

import (
	"fmt"

	"github.com/san-kum/forcegraph/internal/forces"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/grid"
	"github.com/san-kum/forcegraph/internal/integrators"
)

// ParallelBackend is the accelerated pipeline: grid-bucketed repulsion and
// per-node spring gathering, each phase spread across worker goroutines.
type ParallelBackend struct {
	workers  int
	minChunk int
	grid     *grid.Grid
	adj      forces.Adjacency
	integ    integrators.Integrator
	phases   []Phase
}

// NewParallelBackend probes the platform and builds the pipeline. It fails
// with graph.ErrBackendUnavailable when acceleration is disabled, only one
// CPU is usable, the grid cannot be allocated or a trial step on a small
// graph fails.
func NewParallelBackend(opts Options) (*ParallelBackend, error) {
	if !opts.Accelerate {
		return nil, errDisabled
	}
	if opts.Workers <= 1 {
		return nil, unsupported("%d usable cpu: %w", opts.Workers, graph.ErrBackendUnavailable)
	}
	ix, err := grid.NewIndex(opts.GridSize, opts.WorldMin, opts.WorldMax)
	if err != nil {
		return nil, unsupported("%v: %w", err, graph.ErrBackendUnavailable)
	}
	g, err := grid.New(ix, opts.CellCapacity)
	if err != nil {
		return nil, unsupported("%v: %w", err, graph.ErrBackendUnavailable)
	}

	pb := &ParallelBackend{
		workers:  opts.Workers,
		minChunk: opts.MinChunk,
		grid:     g,
		integ:    integrators.NewSymplecticEuler(),
	}
	pb.phases = []Phase{
		{PhaseClearGrid, pb.clearGrid},
		{PhaseAssign, pb.assign},
		{PhaseRepulsion, pb.repel},
		{PhaseSpring, pb.springs},
		{PhaseIntegrate, pb.integrate},
	}
	if err := pb.selfTest(); err != nil {
		return nil, fmt.Errorf("self-test: %v: %w", err, graph.ErrBackendUnavailable)
	}
	return pb, nil
}

// selfTest steps a two-node spring through every phase and checks the
// result is finite.
func (pb *ParallelBackend) selfTest() error {
	f := &Frame{
		Nodes:  []graph.Node{{X: -10, Mass: 1}, {X: 10, Mass: 1}},
		Edges:  []graph.Edge{{A: 0, B: 1}},
		Params: graph.DefaultParams(),
	}
	if err := RunPhases(pb, f, nil); err != nil {
		return err
	}
	for i := range f.Nodes {
		if !f.Nodes[i].IsFinite() {
			return graph.ErrUnstable
		}
	}
	return nil
}

func (pb *ParallelBackend) Name() string {
	return fmt.Sprintf("parallel-grid (%d workers, %d×%d)", pb.workers, pb.grid.Size, pb.grid.Size)
}

func (pb *ParallelBackend) Available() bool { return pb.grid != nil }
func (pb *ParallelBackend) Phases() []Phase { return pb.phases }
func (pb *ParallelBackend) Cleanup()        { pb.grid = nil }

// Grid exposes the index built by the last step, for overflow reporting.
func (pb *ParallelBackend) Grid() *grid.Grid { return pb.grid }

func (pb *ParallelBackend) each(n int, fn func(start, end int)) error {
	return ParallelFor(pb.workers, n, pb.minChunk, fn)
}

func (pb *ParallelBackend) clearGrid(f *Frame) error {
	if pb.grid == nil {
		return graph.ErrBackendUnavailable
	}
	if err := pb.each(pb.grid.Cells(), pb.grid.Clear); err != nil {
		return err
	}
	return pb.each(len(f.Nodes), func(s, e int) { forces.ZeroForces(f.Nodes, s, e) })
}

// assign buckets every node. When a cell overflowed, which nodes got a
// slot depended on goroutine interleaving, so the grid is rebuilt on one
// goroutine in index order and the lowest indices keep their slots.
func (pb *ParallelBackend) assign(f *Frame) error {
	if err := pb.each(len(f.Nodes), func(s, e int) { pb.grid.Assign(f.Nodes, s, e) }); err != nil {
		return err
	}
	if pb.grid.Overflow() > 0 {
		err := guard(0, func(s, e int) {
			pb.grid.ClearAll()
			pb.grid.Assign(f.Nodes, s, e)
		}, 0, len(f.Nodes))
		if err != nil {
			return err
		}
	}
	return pb.each(pb.grid.Cells(), pb.grid.Seal)
}

func (pb *ParallelBackend) repel(f *Frame) error {
	return pb.each(len(f.Nodes), func(s, e int) {
		forces.RepelGrid(f.Nodes, pb.grid, f.Params, s, e)
	})
}

func (pb *ParallelBackend) springs(f *Frame) error {
	pb.adj.Build(f.Edges, len(f.Nodes))
	return pb.each(len(f.Nodes), func(s, e int) {
		forces.SpringsAt(f.Nodes, f.Edges, &pb.adj, f.Params, s, e)
	})
}

func (pb *ParallelBackend) integrate(f *Frame) error {
	return pb.each(len(f.Nodes), func(s, e int) {
		pb.integ.Step(f.Nodes, f.Params, s, e)
	})
}
