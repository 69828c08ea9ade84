package metrics

import (
	"math"

	"github.com/san-kum/forcegraph/internal/graph"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(nodes []graph.Node, step int)
	Value() float64
	Reset()
}

// KineticEnergy returns Σ ½·m·|v|² with non-positive masses counted as 1.
func KineticEnergy(nodes []graph.Node) float64 {
	total := 0.0
	for i := range nodes {
		n := &nodes[i]
		total += 0.5 / n.InvMass() * (n.VX*n.VX + n.VY*n.VY)
	}
	return total
}

func MaxSpeed(nodes []graph.Node) float64 {
	peak := 0.0
	for i := range nodes {
		peak = math.Max(peak, math.Hypot(nodes[i].VX, nodes[i].VY))
	}
	return peak
}

// Energy is the mean kinetic energy over observed steps.
type Energy struct {
	samples int
	total   float64
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "mean_kinetic_energy" }

func (e *Energy) Observe(nodes []graph.Node, _ int) {
	e.total += KineticEnergy(nodes)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// PeakSpeed is the largest node speed seen during the run.
type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(nodes []graph.Node, _ int) {
	p.peak = math.Max(p.peak, MaxSpeed(nodes))
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }

// Settling reports the first step at which kinetic energy per node fell
// below threshold, or -1 if it never did.
type Settling struct {
	threshold float64
	step      int
}

func NewSettling(threshold float64) *Settling {
	return &Settling{threshold: threshold, step: -1}
}

func (s *Settling) Name() string { return "settled_at_step" }

func (s *Settling) Observe(nodes []graph.Node, step int) {
	if s.step >= 0 || len(nodes) == 0 {
		return
	}
	if KineticEnergy(nodes)/float64(len(nodes)) < s.threshold {
		s.step = step
	}
}

func (s *Settling) Value() float64 { return float64(s.step) }
func (s *Settling) Reset()         { s.step = -1 }

// Defaults returns the metrics recorded for every run.
func Defaults() []Metric {
	return []Metric{NewEnergy(), NewPeakSpeed(), NewSettling(1e-3)}
}
