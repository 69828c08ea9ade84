package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Step outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeSkipped   = "skipped"
	OutcomeAbandoned = "abandoned"
)

// Registry holds the engine's prometheus collectors on a private registry,
// so several engines in one process never collide.
type Registry struct {
	registry *prometheus.Registry

	StepsTotal     *prometheus.CounterVec
	StepDuration   prometheus.Histogram
	PhaseDuration  *prometheus.HistogramVec
	TruncatedTotal *prometheus.CounterVec
	FallbackTotal  prometheus.Counter
	GridOverflow   prometheus.Gauge
	Nodes          prometheus.Gauge
	Edges          prometheus.Gauge
	KineticEnergy  prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.StepsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_steps_total",
			Help: "Simulation steps by outcome",
		},
		[]string{"outcome"},
	)
	r.StepDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "forcegraph_step_duration_seconds",
		Help:    "Wall time of a completed step",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1, 0.5},
	})
	r.PhaseDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcegraph_phase_duration_seconds",
			Help:    "Wall time of each pipeline phase",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
		[]string{"phase"},
	)
	r.TruncatedTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_truncated_total",
			Help: "Nodes or edges dropped for exceeding capacity",
		},
		[]string{"kind"},
	)
	r.FallbackTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "forcegraph_backend_fallback_total",
		Help: "Times the serial fallback was selected",
	})
	r.GridOverflow = f.NewGauge(prometheus.GaugeOpts{
		Name: "forcegraph_grid_overflow_nodes",
		Help: "Nodes that did not fit their grid cell in the last step",
	})
	r.Nodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "forcegraph_nodes",
		Help: "Nodes simulated in the last step",
	})
	r.Edges = f.NewGauge(prometheus.GaugeOpts{
		Name: "forcegraph_edges",
		Help: "Edges simulated in the last step",
	})
	r.KineticEnergy = f.NewGauge(prometheus.GaugeOpts{
		Name: "forcegraph_kinetic_energy",
		Help: "Total kinetic energy after the last step",
	})

	return r
}

func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) RecordStep(outcome string, d time.Duration) {
	r.StepsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		r.StepDuration.Observe(d.Seconds())
	}
}

func (r *Registry) RecordPhase(phase string, d time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (r *Registry) RecordTruncation(kind string, dropped int) {
	if dropped > 0 {
		r.TruncatedTotal.WithLabelValues(kind).Add(float64(dropped))
	}
}

func (r *Registry) RecordFallback() { r.FallbackTotal.Inc() }

func (r *Registry) UpdateGraph(nodes, edges int, overflow int, energy float64) {
	r.Nodes.Set(float64(nodes))
	r.Edges.Set(float64(edges))
	r.GridOverflow.Set(float64(overflow))
	r.KineticEnergy.Set(energy)
}
