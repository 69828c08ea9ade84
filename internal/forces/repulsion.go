package forces

import (
	"math"

	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/grid"
)

const (
	// MinSeparation is the distance at or below which a pair contributes
	// nothing. Coincident nodes stay coincident rather than explode.
	MinSeparation = 0.001

	// SoftDistance floors the distance in the inverse-square denominator,
	// bounding peak force for very close pairs.
	SoftDistance = 0.01
)

// Repulsion returns the force that a node at (xj, yj) exerts on a node at
// (xi, yi): strength / max(d, SoftDistance)² directed from j toward i, for
// MinSeparation < d ≤ radius, and zero otherwise.
func Repulsion(xi, yi, xj, yj float64, p graph.Params) (fx, fy float64) {
	dx, dy := xi-xj, yi-yj
	d2 := dx*dx + dy*dy
	if !(d2 > MinSeparation*MinSeparation) || d2 > p.RepulsionRadius*p.RepulsionRadius {
		return 0, 0
	}
	d := math.Sqrt(d2)
	soft := math.Max(d, SoftDistance)
	mag := p.RepulsionStrength / (soft * soft)
	return mag * dx / d, mag * dy / d
}

// RepelGrid accumulates repulsion on nodes [start, end) from every other
// node recorded in the cells around each node's own cell. The block is
// 3×3 unless the radius exceeds one cell width, in which case it widens to
// cover the radius. Only the force fields of nodes in the range are
// written.
func RepelGrid(nodes []graph.Node, g *grid.Grid, p graph.Params, start, end int) {
	rings := g.Rings(p.RepulsionRadius)
	for i := start; i < end; i++ {
		ni := &nodes[i]
		xi, yi := ni.X, ni.Y
		var fx, fy float64
		g.Within(g.CellOf(xi, yi), rings, func(c int) {
			for _, j := range g.Cell(c) {
				if int(j) == i {
					continue
				}
				nj := &nodes[j]
				rx, ry := Repulsion(xi, yi, nj.X, nj.Y, p)
				fx += rx
				fy += ry
			}
		})
		ni.FX += fx
		ni.FY += fy
	}
}

// RepelBrute is the O(n²) reference: every unordered pair is evaluated once
// and applied to both nodes with opposite signs.
func RepelBrute(nodes []graph.Node, p graph.Params) {
	n := len(nodes)
	for i := 0; i < n; i++ {
		xi, yi := nodes[i].X, nodes[i].Y
		for j := i + 1; j < n; j++ {
			fx, fy := Repulsion(xi, yi, nodes[j].X, nodes[j].Y, p)
			nodes[i].FX += fx
			nodes[i].FY += fy
			nodes[j].FX -= fx
			nodes[j].FY -= fy
		}
	}
}

// RepelBruteAt returns the brute-force repulsion on node i without touching
// any accumulator.
func RepelBruteAt(nodes []graph.Node, p graph.Params, i int) (fx, fy float64) {
	xi, yi := nodes[i].X, nodes[i].Y
	for j := range nodes {
		if j == i {
			continue
		}
		rx, ry := Repulsion(xi, yi, nodes[j].X, nodes[j].Y, p)
		fx += rx
		fy += ry
	}
	return fx, fy
}

// ZeroForces clears the accumulators of nodes [start, end).
func ZeroForces(nodes []graph.Node, start, end int) {
	for i := start; i < end; i++ {
		nodes[i].FX, nodes[i].FY = 0, 0
	}
}
