package graph

import (
	"fmt"
	"math"
)

const (
	NodeStride = 7 // x, y, r, g, b, a, size
	EdgeStride = 9 // x1, y1, x2, y2, r, g, b, a, width
)

// DecodeNodes converts a 7-stride buffer into nodes at rest with uniform
// mass.
func DecodeNodes(buf []float32) ([]Node, error) {
	if len(buf)%NodeStride != 0 {
		return nil, fmt.Errorf("nodes: %d values: %w", len(buf), ErrStride)
	}
	nodes := make([]Node, len(buf)/NodeStride)
	for i := range nodes {
		r := buf[i*NodeStride : (i+1)*NodeStride]
		nodes[i] = Node{
			X:     float64(r[0]),
			Y:     float64(r[1]),
			Color: [4]float32{r[2], r[3], r[4], r[5]},
			Size:  r[6],
		}
	}
	return nodes, nil
}

// DecodeEdges converts a 9-stride buffer into edges. Host layers describe an
// edge by its endpoint coordinates, so each endpoint is resolved to the node
// sitting exactly at that point, or to the nearest node when none does.
// Edges cannot be resolved against an empty node slice.
func DecodeEdges(buf []float32, nodes []Node) ([]Edge, error) {
	if len(buf)%EdgeStride != 0 {
		return nil, fmt.Errorf("edges: %d values: %w", len(buf), ErrStride)
	}
	n := len(buf) / EdgeStride
	if n == 0 {
		return []Edge{}, nil
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("edges: %d edges reference an empty node set", n)
	}

	type key struct{ x, y float32 }
	exact := make(map[key]int, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		exact[key{float32(nodes[i].X), float32(nodes[i].Y)}] = i
	}
	resolve := func(x, y float32) int {
		if idx, ok := exact[key{x, y}]; ok {
			return idx
		}
		return nearest(nodes, float64(x), float64(y))
	}

	edges := make([]Edge, n)
	for i := range edges {
		r := buf[i*EdgeStride : (i+1)*EdgeStride]
		edges[i] = Edge{
			A:     resolve(r[0], r[1]),
			B:     resolve(r[2], r[3]),
			Color: [4]float32{r[4], r[5], r[6], r[7]},
			Width: r[8],
		}
	}
	return edges, nil
}

func nearest(nodes []Node, x, y float64) int {
	best, bestD := 0, math.Inf(1)
	for i := range nodes {
		dx, dy := nodes[i].X-x, nodes[i].Y-y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// EncodeNodes produces the 7-stride buffer the renderer consumes.
func EncodeNodes(nodes []Node) []float32 {
	buf := make([]float32, len(nodes)*NodeStride)
	for i := range nodes {
		n := &nodes[i]
		r := buf[i*NodeStride : (i+1)*NodeStride]
		r[0], r[1] = float32(n.X), float32(n.Y)
		r[2], r[3], r[4], r[5] = n.Color[0], n.Color[1], n.Color[2], n.Color[3]
		r[6] = n.Size
	}
	return buf
}

// EncodeEdges produces the 9-stride buffer with endpoint coordinates taken
// from the current node positions.
func EncodeEdges(edges []Edge, nodes []Node) []float32 {
	buf := make([]float32, len(edges)*EdgeStride)
	for i := range edges {
		e := &edges[i]
		r := buf[i*EdgeStride : (i+1)*EdgeStride]
		if e.A < len(nodes) && e.B < len(nodes) {
			r[0], r[1] = float32(nodes[e.A].X), float32(nodes[e.A].Y)
			r[2], r[3] = float32(nodes[e.B].X), float32(nodes[e.B].Y)
		}
		r[4], r[5], r[6], r[7] = e.Color[0], e.Color[1], e.Color[2], e.Color[3]
		r[8] = e.Width
	}
	return buf
}
