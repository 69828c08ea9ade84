package compute

import (
	"github.com/san-kum/forcegraph/internal/forces"
	"github.com/san-kum/forcegraph/internal/integrators"
)

// SerialBackend is the scalar fallback. The whole step runs on the calling
// goroutine and repulsion scans every pair; there is no grid, so the
// pipeline has no assign phase and clear-grid only resets forces.
type SerialBackend struct {
	integ  integrators.Integrator
	phases []Phase
}

func NewSerialBackend() *SerialBackend {
	sb := &SerialBackend{integ: integrators.NewSymplecticEuler()}
	sb.phases = []Phase{
		{PhaseClearGrid, sb.clear},
		{PhaseRepulsion, sb.repel},
		{PhaseSpring, sb.springs},
		{PhaseIntegrate, sb.integrate},
	}
	return sb
}

func (sb *SerialBackend) Name() string    { return "serial-brute" }
func (sb *SerialBackend) Available() bool { return true }
func (sb *SerialBackend) Phases() []Phase { return sb.phases }
func (sb *SerialBackend) Cleanup()        {}

func (sb *SerialBackend) clear(f *Frame) error {
	return guard(0, func(s, e int) { forces.ZeroForces(f.Nodes, s, e) }, 0, len(f.Nodes))
}

func (sb *SerialBackend) repel(f *Frame) error {
	return guard(0, func(int, int) { forces.RepelBrute(f.Nodes, f.Params) }, 0, len(f.Nodes))
}

func (sb *SerialBackend) springs(f *Frame) error {
	return guard(0, func(int, int) { forces.Springs(f.Nodes, f.Edges, f.Params) }, 0, len(f.Edges))
}

func (sb *SerialBackend) integrate(f *Frame) error {
	return guard(0, func(s, e int) { sb.integ.Step(f.Nodes, f.Params, s, e) }, 0, len(f.Nodes))
}
