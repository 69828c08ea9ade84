package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/config"
	"github.com/san-kum/forcegraph/internal/storage"
)

var exportPath string

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tNODES\tEDGES\tSTEPS\tMEAN STEP\tBACKEND")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.3fms\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.Edges,
			run.Steps,
			run.MeanStepMS,
			run.Backend,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}
	if len(trace.Energy) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("graph: %d nodes, %d edges (%s)\n", meta.Nodes, meta.Edges, meta.Topology)
	fmt.Printf("steps: %d\n\n", meta.Steps)

	fmt.Println(asciigraph.Plot(trace.Energy,
		asciigraph.Height(12), asciigraph.Width(70), asciigraph.Caption("kinetic energy")))
	fmt.Println()

	if len(trace.StepMS) > 1 {
		fmt.Println(asciigraph.Plot(trace.StepMS,
			asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("step time (ms)")))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if exportPath == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(exportPath)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(f, args[0]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", exportPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}

func probeBackend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := compute.AutoSelectBackend(cfg.ComputeOptions())
	defer b.Cleanup()

	fmt.Printf("backend: %s\n", b.Name())
	if err != nil {
		fmt.Printf("fallback: %v\n", err)
	}
	return nil
}
