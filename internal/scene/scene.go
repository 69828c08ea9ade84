// Package scene generates synthetic graphs to lay out: nodes scattered
// uniformly over the world and edges in one of a few fixed shapes.
package scene

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/forcegraph/internal/config"
	"github.com/san-kum/forcegraph/internal/graph"
)

// Topologies understood by Generate.
const (
	Random = "random"
	Ring   = "ring"
	Chain  = "chain"
	Star   = "star"
)

// margin keeps generated nodes off the world boundary.
const margin = 0.05

var (
	defaultNodeColor = [4]float32{1, 1, 1, 1}
	defaultEdgeColor = [4]float32{0.5, 0.5, 0.5, 1}
)

// Generate builds a graph from the scene section of cfg, placed inside the
// grid section's world bounds. The same seed always yields the same graph.
func Generate(cfg *config.Config) ([]graph.Node, []graph.Edge, error) {
	sc := cfg.Scene
	rng := rand.New(rand.NewSource(sc.Seed))

	nodeColor, ok := graph.ParseHexColor(sc.NodeColor)
	if !ok {
		nodeColor = defaultNodeColor
	}
	edgeColor, ok := graph.ParseHexColor(sc.EdgeColor)
	if !ok {
		edgeColor = defaultEdgeColor
	}

	lo, hi := cfg.Grid.WorldMin, cfg.Grid.WorldMax
	pad := (hi - lo) * margin
	lo, hi = lo+pad, hi-pad

	nodes := make([]graph.Node, sc.Nodes)
	for i := range nodes {
		nodes[i] = graph.Node{
			X:     lo + rng.Float64()*(hi-lo),
			Y:     lo + rng.Float64()*(hi-lo),
			Mass:  1,
			Color: nodeColor,
			Size:  sc.NodeSize,
		}
	}

	pairs, err := topology(sc.Topology, sc.Nodes, sc.Edges, rng)
	if err != nil {
		return nil, nil, err
	}
	edges := make([]graph.Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = graph.Edge{A: p[0], B: p[1], Color: edgeColor, Width: sc.EdgeWidth}
	}
	return nodes, edges, nil
}

// topology returns endpoint pairs. Only random honours the edge count; the
// fixed shapes have as many edges as their structure implies.
func topology(kind string, n, m int, rng *rand.Rand) ([][2]int, error) {
	var pairs [][2]int
	switch kind {
	case Random, "":
		if n < 2 {
			return nil, nil
		}
		pairs = make([][2]int, 0, m)
		for len(pairs) < m {
			a, b := rng.Intn(n), rng.Intn(n)
			if a != b {
				pairs = append(pairs, [2]int{a, b})
			}
		}
	case Ring:
		if n < 3 {
			return topology(Chain, n, m, rng)
		}
		pairs = make([][2]int, n)
		for i := range pairs {
			pairs[i] = [2]int{i, (i + 1) % n}
		}
	case Chain:
		for i := 1; i < n; i++ {
			pairs = append(pairs, [2]int{i - 1, i})
		}
	case Star:
		for i := 1; i < n; i++ {
			pairs = append(pairs, [2]int{0, i})
		}
	default:
		return nil, fmt.Errorf("scene: unknown topology %q", kind)
	}
	return pairs, nil
}
