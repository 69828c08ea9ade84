package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/metrics"
)

type Engine struct {
	logger   *log.Logger
	metrics  *metrics.Registry
	backend  compute.Backend
	opts     compute.Options
	ready    func() bool
	maxNodes int
	maxEdges int

	busy  atomic.Bool
	steps atomic.Uint64

	mu    sync.Mutex
	gen   uint64
	nodes []graph.Node
	edges []graph.Edge
}

// New builds an engine. Unless WithBackend is given, the accelerated
// backend is probed here and the serial fallback is used if it cannot be
// built; the choice is never revisited.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   log.Default(),
		opts:     compute.DefaultOptions(),
		maxNodes: graph.DefaultMaxNodes,
		maxEdges: graph.DefaultMaxEdges,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.backend == nil {
		b, err := compute.AutoSelectBackend(e.opts)
		if err != nil {
			e.logger.Warn("accelerated backend unavailable, using fallback", "backend", b.Name(), "err", err)
			if e.metrics != nil {
				e.metrics.RecordFallback()
			}
		}
		e.backend = b
	}
	e.logger.Debug("backend selected", "backend", e.backend.Name())
	return e
}

func (e *Engine) Backend() string { return e.backend.Name() }
func (e *Engine) MaxNodes() int   { return e.maxNodes }
func (e *Engine) MaxEdges() int   { return e.maxEdges }

// Steps returns how many steps have been started.
func (e *Engine) Steps() uint64 { return e.steps.Load() }

// Close releases backend resources. The engine must not be used afterwards.
func (e *Engine) Close() { e.backend.Cleanup() }

// Step advances the layout by one time step and returns the new node
// states. A skipped or abandoned step returns nodes unchanged; the reason
// is logged.
func (e *Engine) Step(nodes []graph.Node, edges []graph.Edge, p graph.Params) []graph.Node {
	out, err := e.TryStep(nodes, edges, p)
	switch {
	case err == nil:
	case errors.Is(err, graph.ErrFrameSkipped):
		e.logger.Debug("frame skipped", "err", err)
	default:
		e.logger.Warn("step abandoned", "err", err)
	}
	return out
}

// TryStep is Step with the failure reported. On error the returned slice is
// nodes itself and the error wraps graph.ErrFrameSkipped or
// graph.ErrStepAbandoned inside a *graph.StepError.
func (e *Engine) TryStep(nodes []graph.Node, edges []graph.Edge, p graph.Params) ([]graph.Node, error) {
	if e.ready != nil && !e.ready() {
		return nodes, e.skip("not ready")
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nodes, e.skip("in flight")
	}
	defer e.busy.Store(false)

	step := e.steps.Add(1)
	work, edges := e.admit(nodes, edges)
	p.NodeCount = len(work)
	p.EdgeCount = len(edges)

	f := &compute.Frame{Nodes: graph.CloneNodes(work), Edges: edges, Params: p}
	start := time.Now()
	if err := compute.RunPhases(e.backend, f, e.observePhase); err != nil {
		var se *graph.StepError
		phase := "unknown"
		if errors.As(err, &se) {
			phase, err = se.Phase, se.Wrapped
		}
		return nodes, e.abandon(step, phase, err)
	}
	for i := range f.Nodes {
		if !f.Nodes[i].IsFinite() {
			return nodes, e.abandon(step, compute.PhaseIntegrate,
				fmt.Errorf("node %d: %w", i, graph.ErrUnstable))
		}
	}
	e.observeStep(f, time.Since(start))
	return f.Nodes, nil
}

// admit applies the capacity limits and drops edges whose endpoints are
// not in the admitted node range. At most one warning is logged per call.
func (e *Engine) admit(nodes []graph.Node, edges []graph.Edge) ([]graph.Node, []graph.Edge) {
	droppedNodes, droppedEdges := 0, 0
	if len(nodes) > e.maxNodes {
		droppedNodes = len(nodes) - e.maxNodes
		nodes = nodes[:e.maxNodes]
	}
	if len(edges) > e.maxEdges {
		droppedEdges = len(edges) - e.maxEdges
		edges = edges[:e.maxEdges]
	}

	invalid := 0
	if !graph.ValidEdges(edges, len(nodes)) {
		kept := make([]graph.Edge, 0, len(edges))
		for _, ed := range edges {
			if ed.A >= 0 && ed.A < len(nodes) && ed.B >= 0 && ed.B < len(nodes) {
				kept = append(kept, ed)
			}
		}
		invalid = len(edges) - len(kept)
		edges = kept
	}

	if droppedNodes > 0 || droppedEdges > 0 || invalid > 0 {
		e.logger.Warn("input exceeds capacity, truncating",
			"max_nodes", e.maxNodes, "dropped_nodes", droppedNodes,
			"max_edges", e.maxEdges, "dropped_edges", droppedEdges,
			"invalid_edges", invalid)
		if e.metrics != nil {
			e.metrics.RecordTruncation("nodes", droppedNodes)
			e.metrics.RecordTruncation("edges", droppedEdges+invalid)
		}
	}
	return nodes, edges
}

func (e *Engine) skip(reason string) error {
	if e.metrics != nil {
		e.metrics.RecordStep(metrics.OutcomeSkipped, 0)
	}
	return &graph.StepError{
		Phase:   reason,
		Step:    e.steps.Load(),
		Wrapped: graph.ErrFrameSkipped,
	}
}

func (e *Engine) abandon(step uint64, phase string, cause error) error {
	if e.metrics != nil {
		e.metrics.RecordStep(metrics.OutcomeAbandoned, 0)
	}
	return &graph.StepError{
		Phase:   phase,
		Step:    step,
		Wrapped: fmt.Errorf("%w: %w", graph.ErrStepAbandoned, cause),
	}
}

func (e *Engine) observePhase(phase string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordPhase(phase, d)
	}
}

func (e *Engine) observeStep(f *compute.Frame, d time.Duration) {
	overflow := 0
	if pb, ok := e.backend.(*compute.ParallelBackend); ok && pb.Grid() != nil {
		overflow = pb.Grid().Overflow()
	}
	if overflow > 0 {
		e.logger.Debug("grid cells full, nodes skipped as repulsion sources", "overflow", overflow)
	}
	if e.metrics != nil {
		e.metrics.RecordStep(metrics.OutcomeOK, d)
		e.metrics.UpdateGraph(len(f.Nodes), len(f.Edges), overflow, metrics.KineticEnergy(f.Nodes))
	}
}
