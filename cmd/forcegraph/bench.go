package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/grid"
	"github.com/san-kum/forcegraph/internal/scene"
)

var (
	benchSizes []int
	benchReps  int
)

func benchBackends(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if benchReps < 1 {
		return fmt.Errorf("reps must be positive, got %d", benchReps)
	}

	ix, err := grid.NewIndex(base.Grid.Size, base.Grid.WorldMin, base.Grid.WorldMax)
	if err != nil {
		return err
	}
	if rings := ix.Rings(base.Physics.RepulsionRadius); rings > 1 {
		logger.Info("repulsion radius spans several cells, widening neighbourhood",
			"radius", base.Physics.RepulsionRadius, "cell_width", ix.CellWidth(), "rings", rings)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tEDGES\tGRID\tBRUTE\tSPEEDUP\tMAX |ΔV|\tBACKEND")

	for _, n := range benchSizes {
		cfg := *base
		cfg.Scene.Nodes = n
		cfg.Scene.Edges = n * 3 / 2
		cfg.Scene.Topology = scene.Random
		cfg.Engine.MaxNodes = max(cfg.Engine.MaxNodes, n)
		cfg.Engine.MaxEdges = max(cfg.Engine.MaxEdges, cfg.Scene.Edges)

		nodes, edges, err := scene.Generate(&cfg)
		if err != nil {
			return err
		}
		p := cfg.Params()

		fast := newEngine(&cfg, logger, nil)
		brute := engine.New(
			engine.WithLogger(logger),
			engine.WithBackend(compute.NewSerialBackend()),
			engine.WithLimits(cfg.Engine.MaxNodes, cfg.Engine.MaxEdges),
		)

		fastOut, fastTime, err := timeSteps(fast, nodes, edges, p)
		if err != nil {
			return err
		}
		bruteOut, bruteTime, err := timeSteps(brute, nodes, edges, p)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%.1fx\t%.3g\t%s\n",
			n, len(edges),
			fastTime.Round(time.Microsecond),
			bruteTime.Round(time.Microsecond),
			float64(bruteTime)/float64(fastTime),
			maxVelocityDelta(fastOut, bruteOut),
			fast.Backend(),
		)
		fast.Close()
		brute.Close()
	}
	return w.Flush()
}

// timeSteps runs benchReps steps from the same input and returns the first
// output and the mean step time.
func timeSteps(eng *engine.Engine, nodes []graph.Node, edges []graph.Edge, p graph.Params) ([]graph.Node, time.Duration, error) {
	var first []graph.Node
	var total time.Duration
	for i := 0; i < benchReps; i++ {
		start := time.Now()
		out, err := eng.TryStep(nodes, edges, p)
		total += time.Since(start)
		if err != nil {
			return nil, 0, err
		}
		if first == nil {
			first = out
		}
	}
	return first, total / time.Duration(benchReps), nil
}

func maxVelocityDelta(a, b []graph.Node) float64 {
	worst := 0.0
	for i := 0; i < min(len(a), len(b)); i++ {
		worst = math.Max(worst, math.Hypot(a[i].VX-b[i].VX, a[i].VY-b[i].VY))
	}
	return worst
}
