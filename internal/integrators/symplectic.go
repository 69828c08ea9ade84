package integrators

import "github.com/san-kum/forcegraph/internal/graph"

// Integrator advances nodes [start, end) by one step from their accumulated
// forces. Implementations must not read or write nodes outside the range.
type Integrator interface {
	Name() string
	Step(nodes []graph.Node, p graph.Params, start, end int)
}

// SymplecticEuler updates velocity before position:
//
//	v += (f/m)·dt
//	v *= damping
//	x += v·dt
//
// and then clears the force accumulator.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic_euler" }

func (s *SymplecticEuler) Step(nodes []graph.Node, p graph.Params, start, end int) {
	dt, damping := p.DeltaTime, p.Damping
	for i := start; i < end; i++ {
		n := &nodes[i]
		im := n.InvMass()

		n.VX = (n.VX + n.FX*im*dt) * damping
		n.VY = (n.VY + n.FY*im*dt) * damping

		n.X += n.VX * dt
		n.Y += n.VY * dt

		n.FX, n.FY = 0, 0
	}
}
