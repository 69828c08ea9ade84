package engine

import (
	"github.com/charmbracelet/log"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/metrics"
)

type Option func(*Engine)

// WithLogger sets the destination for diagnostics. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics feeds step counters and timings into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithBackend skips probing and uses b for every step.
func WithBackend(b compute.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithOptions sets the probe and grid options used to select a backend.
func WithOptions(o compute.Options) Option {
	return func(e *Engine) { e.opts = o }
}

// WithReadiness installs a check consulted before each step. When it
// reports false the frame is skipped.
func WithReadiness(ready func() bool) Option {
	return func(e *Engine) { e.ready = ready }
}

// WithLimits overrides the node and edge capacities. Non-positive values
// keep the defaults.
func WithLimits(maxNodes, maxEdges int) Option {
	return func(e *Engine) {
		if maxNodes > 0 {
			e.maxNodes = maxNodes
		}
		if maxEdges > 0 {
			e.maxEdges = maxEdges
		}
	}
}
