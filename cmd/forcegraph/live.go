package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcegraph/internal/metrics"
	"github.com/san-kum/forcegraph/internal/scene"
	"github.com/san-kum/forcegraph/internal/tui"
)

func runLive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(cmd)
	if err != nil {
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

	// The alternate screen owns the terminal; only errors get through.
	eng := newEngine(cfg, quiet(logger), reg)
	defer eng.Close()

	title := "forcegraph"
	if preset != "" {
		title += " · " + preset
	}
	m := tui.NewModel(eng, title, nodes, edges, cfg.Params())
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
