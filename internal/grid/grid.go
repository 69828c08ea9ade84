package grid

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/san-kum/forcegraph/internal/graph"
)

// Grid buckets node indices by cell. Every cell holds at most capacity
// indices; occupancy counters are atomic so Assign may run from many
// goroutines at once. Nodes beyond a full cell are counted as overflow and
// are invisible to repulsion for that step.
type Grid struct {
	Index
	capacity int
	counts   []atomic.Int32
	slots    []int32
	overflow atomic.Int64
}

// MaxSlots bounds cells × capacity so a misconfigured grid fails at
// construction instead of exhausting memory.
const MaxSlots = 1 << 26

func New(ix Index, capacity int) (*Grid, error) {
	if ix.Size < 1 {
		return nil, fmt.Errorf("grid: uninitialized index")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("grid: cell capacity must be positive, got %d", capacity)
	}
	cells := ix.Cells()
	if cells*capacity > MaxSlots {
		return nil, fmt.Errorf("grid: %d cells × %d slots exceeds %d", cells, capacity, MaxSlots)
	}
	return &Grid{
		Index:    ix,
		capacity: capacity,
		counts:   make([]atomic.Int32, cells),
		slots:    make([]int32, cells*capacity),
	}, nil
}

func (g *Grid) Capacity() int { return g.capacity }

// Clear zeroes the occupancy of cells [start, end).
func (g *Grid) Clear(start, end int) {
	for c := start; c < end; c++ {
		g.counts[c].Store(0)
	}
	if start == 0 {
		g.overflow.Store(0)
	}
}

func (g *Grid) ClearAll() { g.Clear(0, len(g.counts)) }

// Insert records node i at (x, y). It reports false when the cell was
// already full.
func (g *Grid) Insert(i int, x, y float64) bool {
	c := g.CellOf(x, y)
	prev := int(g.counts[c].Add(1)) - 1
	if prev >= g.capacity {
		g.overflow.Add(1)
		return false
	}
	g.slots[c*g.capacity+prev] = int32(i)
	return true
}

// Assign inserts nodes [start, end).
func (g *Grid) Assign(nodes []graph.Node, start, end int) {
	for i := start; i < end; i++ {
		g.Insert(i, nodes[i].X, nodes[i].Y)
	}
}

// Seal orders the recorded indices of cells [start, end) so neighbour scans
// visit them in a fixed order regardless of insertion interleaving.
func (g *Grid) Seal(start, end int) {
	for c := start; c < end; c++ {
		slices.Sort(g.Cell(c))
	}
}

// Cell returns the indices recorded in cell c. The slice aliases grid
// storage and is valid until the next Clear.
func (g *Grid) Cell(c int) []int32 {
	n := g.Count(c)
	if n > g.capacity {
		n = g.capacity
	}
	base := c * g.capacity
	return g.slots[base : base+n]
}

// Count is the raw occupancy of cell c, including overflowed nodes.
func (g *Grid) Count(c int) int { return int(g.counts[c].Load()) }

// Overflow is the number of nodes dropped from full cells since the last
// full clear.
func (g *Grid) Overflow() int { return int(g.overflow.Load()) }
