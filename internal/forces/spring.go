package forces

import (
	"math"

	"github.com/san-kum/forcegraph/internal/graph"
)

// Spring returns the force on endpoint a of a spring between (xa, ya) and
// (xb, yb): k·(d − rest) along a→b. Endpoint b receives the negation.
func Spring(xa, ya, xb, yb, k, rest float64) (fx, fy float64) {
	dx, dy := xb-xa, yb-ya
	d := math.Sqrt(dx*dx + dy*dy)
	if !(d > MinSeparation) {
		return 0, 0
	}
	mag := k * (d - rest)
	return mag * dx / d, mag * dy / d
}

// Springs scatters every edge's force onto both endpoints. Single-threaded
// only: each edge writes two accumulators.
func Springs(nodes []graph.Node, edges []graph.Edge, p graph.Params) {
	for e := range edges {
		a, b := edges[e].A, edges[e].B
		if a == b {
			continue
		}
		k, rest := edges[e].Law(p)
		fx, fy := Spring(nodes[a].X, nodes[a].Y, nodes[b].X, nodes[b].Y, k, rest)
		nodes[a].FX += fx
		nodes[a].FY += fy
		nodes[b].FX -= fx
		nodes[b].FY -= fy
	}
}

// Adjacency lists, per node, the indices of its incident edges in edge
// order. It is rebuilt every step and reuses its buffers.
type Adjacency struct {
	offsets  []int32
	incident []int32
}

// Build indexes edges over n nodes. Self-loops are skipped.
func (a *Adjacency) Build(edges []graph.Edge, n int) {
	a.offsets = resize(a.offsets, n+1)
	for i := range a.offsets {
		a.offsets[i] = 0
	}
	for e := range edges {
		if edges[e].A == edges[e].B {
			continue
		}
		a.offsets[edges[e].A+1]++
		a.offsets[edges[e].B+1]++
	}
	for i := 1; i <= n; i++ {
		a.offsets[i] += a.offsets[i-1]
	}

	a.incident = resize(a.incident, int(a.offsets[n]))
	fill := make([]int32, n)
	for e := range edges {
		ea, eb := edges[e].A, edges[e].B
		if ea == eb {
			continue
		}
		a.incident[a.offsets[ea]+fill[ea]] = int32(e)
		fill[ea]++
		a.incident[a.offsets[eb]+fill[eb]] = int32(e)
		fill[eb]++
	}
}

// Incident returns the edge indices touching node i.
func (a *Adjacency) Incident(i int) []int32 {
	return a.incident[a.offsets[i]:a.offsets[i+1]]
}

// SpringsAt gathers the spring force on nodes [start, end) from their
// incident edges, so each node is written by exactly one caller.
func SpringsAt(nodes []graph.Node, edges []graph.Edge, adj *Adjacency, p graph.Params, start, end int) {
	for i := start; i < end; i++ {
		ni := &nodes[i]
		var fx, fy float64
		for _, e := range adj.Incident(i) {
			edge := &edges[e]
			other := edge.B
			if other == i {
				other = edge.A
			}
			k, rest := edge.Law(p)
			sx, sy := Spring(ni.X, ni.Y, nodes[other].X, nodes[other].Y, k, rest)
			fx += sx
			fy += sy
		}
		ni.FX += fx
		ni.FY += fy
	}
}

func resize(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	return s[:n]
}
