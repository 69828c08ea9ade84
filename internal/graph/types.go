package graph

import "math"

const (
	DefaultMaxNodes = 16384
	DefaultMaxEdges = 65536

	WorldMin = -1000.0
	WorldMax = 1000.0
)

// Node is a single body of the layout. Color and Size are carried for the
// renderer and never read by the physics.
type Node struct {
	X, Y   float64
	VX, VY float64
	FX, FY float64
	Mass   float64
	Color  [4]float32
	Size   float32
}

// InvMass returns 1/m, treating a non-positive mass as the uniform default.
func (n *Node) InvMass() float64 {
	if n.Mass <= 0 {
		return 1
	}
	return 1 / n.Mass
}

func (n *Node) IsFinite() bool {
	for _, v := range [...]float64{n.X, n.Y, n.VX, n.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SpringOverride replaces the global spring law for one edge.
type SpringOverride struct {
	Stiffness  float64
	RestLength float64
}

type Edge struct {
	A, B   int
	Color  [4]float32
	Width  float32
	Spring *SpringOverride
}

// Law returns the stiffness and rest length that apply to e under p.
func (e *Edge) Law(p Params) (k, rest float64) {
	if e.Spring != nil {
		return e.Spring.Stiffness, e.Spring.RestLength
	}
	return p.SpringConstant, p.RestLength
}

// Params holds the tunables of one step. It is passed by value into every
// phase and never stored.
type Params struct {
	DeltaTime         float64 `yaml:"dt" json:"dt"`
	Damping           float64 `yaml:"damping" json:"damping"`
	SpringConstant    float64 `yaml:"spring_constant" json:"spring_constant"`
	RestLength        float64 `yaml:"rest_length" json:"rest_length"`
	RepulsionStrength float64 `yaml:"repulsion_strength" json:"repulsion_strength"`
	RepulsionRadius   float64 `yaml:"repulsion_radius" json:"repulsion_radius"`
	NodeCount         int     `yaml:"-" json:"node_count"`
	EdgeCount         int     `yaml:"-" json:"edge_count"`
}

func DefaultParams() Params {
	return Params{
		DeltaTime:         0.016,
		Damping:           0.9,
		SpringConstant:    0.05,
		RestLength:        30,
		RepulsionStrength: 2000,
		RepulsionRadius:   60,
	}
}

func CloneNodes(nodes []Node) []Node {
	c := make([]Node, len(nodes))
	copy(c, nodes)
	return c
}

func CloneEdges(edges []Edge) []Edge {
	c := make([]Edge, len(edges))
	copy(c, edges)
	return c
}

// ValidEdges reports whether every endpoint indexes into a slice of n nodes.
func ValidEdges(edges []Edge, n int) bool {
	for i := range edges {
		if edges[i].A < 0 || edges[i].A >= n || edges[i].B < 0 || edges[i].B >= n {
			return false
		}
	}
	return true
}
