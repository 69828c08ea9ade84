package engine

import (
	"github.com/san-kum/forcegraph/internal/graph"
)

// Replace swaps the owned graph for copies of nodes and edges, applying
// the capacity limits.
func (e *Engine) Replace(nodes []graph.Node, edges []graph.Edge) {
	nodes, edges = e.admit(nodes, edges)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.nodes = graph.CloneNodes(nodes)
	e.edges = graph.CloneEdges(edges)
}

// ReplaceBuffers decodes flat node (stride 7) and edge (stride 9) buffers
// and replaces the owned graph with them.
func (e *Engine) ReplaceBuffers(nodeBuf, edgeBuf []float32) error {
	nodes, err := graph.DecodeNodes(nodeBuf)
	if err != nil {
		return err
	}
	edges, err := graph.DecodeEdges(edgeBuf, nodes)
	if err != nil {
		return err
	}
	e.Replace(nodes, edges)
	return nil
}

// Tick advances the owned graph by one step. The owned nodes are only
// replaced when the step completes and no Replace happened meanwhile;
// a result discarded because of a Replace is reported as a skipped frame.
func (e *Engine) Tick(p graph.Params) error {
	e.mu.Lock()
	gen, nodes, edges := e.gen, e.nodes, e.edges
	e.mu.Unlock()

	out, err := e.TryStep(nodes, edges, p)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return &graph.StepError{
			Phase:   "replaced",
			Step:    e.steps.Load(),
			Wrapped: graph.ErrFrameSkipped,
		}
	}
	e.nodes = out
	return nil
}

// Nodes returns a copy of the owned node states.
func (e *Engine) Nodes() []graph.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return graph.CloneNodes(e.nodes)
}

// Edges returns a copy of the owned edges.
func (e *Engine) Edges() []graph.Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return graph.CloneEdges(e.edges)
}

// Buffer encodes the owned nodes in the flat stride 7 layout.
func (e *Engine) Buffer() []float32 {
	return graph.EncodeNodes(e.Nodes())
}

func (e *Engine) NodeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

func (e *Engine) EdgeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.edges)
}
