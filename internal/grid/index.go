package grid

import (
	"fmt"
	"math"

	"github.com/san-kum/forcegraph/internal/graph"
)

const (
	DefaultSize     = 32
	DefaultCapacity = 64

	// edgeEps keeps normalized coordinates strictly below 1 so the far
	// boundary maps into the last cell.
	edgeEps = 1e-6
)

// Index maps positions in the fixed domain [Min, Max) onto a Size×Size grid.
// Positions outside the domain clamp to the boundary cells.
type Index struct {
	Size     int
	Min, Max float64
	invSpan  float64
}

func NewIndex(size int, min, max float64) (Index, error) {
	if size < 1 {
		return Index{}, fmt.Errorf("grid: size must be positive, got %d", size)
	}
	if !(max > min) {
		return Index{}, fmt.Errorf("grid: empty domain [%g, %g)", min, max)
	}
	return Index{Size: size, Min: min, Max: max, invSpan: 1 / (max - min)}, nil
}

// DefaultIndex covers the world domain with a 32×32 grid.
func DefaultIndex() Index {
	ix, _ := NewIndex(DefaultSize, graph.WorldMin, graph.WorldMax)
	return ix
}

func (ix Index) Cells() int { return ix.Size * ix.Size }

// CellWidth is the world-space side length of one cell.
func (ix Index) CellWidth() float64 { return (ix.Max - ix.Min) / float64(ix.Size) }

func (ix Index) axis(v float64) int {
	u := (v - ix.Min) * ix.invSpan
	// the negated form also catches NaN
	if !(u >= 0) {
		u = 0
	} else if u > 1-edgeEps {
		u = 1 - edgeEps
	}
	c := int(u * float64(ix.Size))
	if c >= ix.Size {
		c = ix.Size - 1
	}
	return c
}

// Coords returns the clamped column and row for a position.
func (ix Index) Coords(x, y float64) (col, row int) {
	return ix.axis(x), ix.axis(y)
}

// CellOf returns row·Size + col for a position.
func (ix Index) CellOf(x, y float64) int {
	col, row := ix.Coords(x, y)
	return row*ix.Size + col
}

// Rings is how many rings of cells around a node's own cell can hold a
// node within radius. It is 1 (the 3×3 block) for radii up to CellWidth
// and never exceeds Size.
func (ix Index) Rings(radius float64) int {
	w := ix.CellWidth()
	if !(radius > w) {
		return 1
	}
	r := math.Ceil(radius / w)
	if r >= float64(ix.Size) {
		return ix.Size
	}
	return int(r)
}

// Neighborhood calls fn for the cell itself and each in-bounds neighbour of
// the 3×3 block around it, in row-major order.
func (ix Index) Neighborhood(cell int, fn func(c int)) {
	ix.Within(cell, 1, fn)
}

// Within calls fn for every in-bounds cell of the (2·rings+1)² block
// centred on cell, in row-major order.
func (ix Index) Within(cell, rings int, fn func(c int)) {
	col, row := cell%ix.Size, cell/ix.Size
	for dr := -rings; dr <= rings; dr++ {
		r := row + dr
		if r < 0 || r >= ix.Size {
			continue
		}
		for dc := -rings; dc <= rings; dc++ {
			c := col + dc
			if c < 0 || c >= ix.Size {
				continue
			}
			fn(r*ix.Size + c)
		}
	}
}
