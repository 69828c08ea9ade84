package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcegraph/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	steps       int
	nodes       int
	edges       int
	seed        int64
	topology    string
	dt          float64
	damping     float64
	serial      bool
	workers     int
	metricsAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "forcegraph",
		Short:         "force-directed graph layout engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".forcegraph", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a layout headlessly and store the result",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the grid pipeline against the brute-force fallback",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 4000, 16000}, "node counts")
	benchCmd.Flags().IntVar(&benchReps, "reps", 5, "steps timed per size and backend")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "scene seed")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a layout with a live terminal monitor",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy and step time of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "report which compute backend this machine gets",
		Args:  cobra.NoArgs,
		RunE:  probeBackend,
	}
	probeCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	probeCmd.Flags().BoolVar(&serial, "serial", false, "disable the accelerated backend")

	rootCmd.AddCommand(runCmd, benchCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, probeCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&nodes, "nodes", config.DefaultNodes, "node count")
	cmd.Flags().IntVar(&edges, "edges", config.DefaultEdges, "edge count (random topology)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "scene seed")
	cmd.Flags().StringVar(&topology, "topology", config.DefaultTopology, "random, ring, chain or star")
	cmd.Flags().Float64Var(&dt, "dt", 0.016, "timestep")
	cmd.Flags().Float64Var(&damping, "damping", 0.9, "velocity damping per step")
	cmd.Flags().BoolVar(&serial, "serial", false, "disable the accelerated backend")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
}

// loadConfig layers the preset, the config file and any flags the user set,
// in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("nodes") {
		cfg.Scene.Nodes = nodes
	}
	if flags.Changed("edges") {
		cfg.Scene.Edges = edges
	}
	if flags.Changed("seed") {
		cfg.Scene.Seed = seed
	}
	if flags.Changed("topology") {
		cfg.Scene.Topology = topology
	}
	if flags.Changed("dt") {
		cfg.Physics.Dt = dt
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("serial") {
		cfg.Engine.Accelerate = !serial
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
