package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcegraph/internal/config"
	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/metrics"
	"github.com/san-kum/forcegraph/internal/scene"
	"github.com/san-kum/forcegraph/internal/sim"
	"github.com/san-kum/forcegraph/internal/storage"
)

func newEngine(cfg *config.Config, logger *log.Logger, reg *metrics.Registry) *engine.Engine {
	return engine.New(
		engine.WithLogger(logger),
		engine.WithMetrics(reg),
		engine.WithOptions(cfg.ComputeOptions()),
		engine.WithLimits(cfg.Engine.MaxNodes, cfg.Engine.MaxEdges),
	)
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *metrics.Registry, logger *log.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func runLayout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	nodes, edges, err := scene.Generate(cfg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveMetrics(serveCtx, metricsAddr, reg, logger)

	eng := newEngine(cfg, logger, reg)
	defer eng.Close()

	s := sim.New(eng)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	logger.Info("running layout", "nodes", len(nodes), "edges", len(edges), "steps", cfg.Run.Steps, "backend", eng.Backend())
	start := time.Now()

	result, err := s.Run(ctx, nodes, edges, sim.Config{Steps: cfg.Run.Steps, Params: cfg.Params()})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("interrupted, saving partial run", "steps", result.Steps)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Preset:   preset,
		Backend:  eng.Backend(),
		Topology: cfg.Scene.Topology,
		Seed:     cfg.Scene.Seed,
		Nodes:    min(len(nodes), eng.MaxNodes()),
		Edges:    min(len(edges), eng.MaxEdges()),
		Params:   cfg.Params(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (skipped %d, abandoned %d)\n", result.Steps, result.Skipped, result.Abandoned)
	fmt.Printf("mean step: %v\n", result.MeanStepTime().Round(time.Microsecond))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}
