package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/storage"
)

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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tINTEG\tPILOT\tSKIPPED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Pilot,
			run.Skipped,
		)
	}

	return w.Flush()
}

var plotSeries = []struct {
	caption string
	value   func(sim.Sample) float64
}{
	{"depth (m)", func(s sim.Sample) float64 { return s.Depth() }},
	{"heading (deg)", func(s sim.Sample) float64 { return s.Heading() }},
	{"speed (m/s)", func(s sim.Sample) float64 { return s.Speed() }},
	{"yaw rate (rad/s)", func(s sim.Sample) float64 { return s.AngularVelocity.Y() }},
	{"kinetic energy (J)", func(s sim.Sample) float64 { return s.KineticEnergy }},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	data := make([]float64, len(samples))
	for _, series := range plotSeries {
		for i, s := range samples {
			data[i] = series.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Samples:    samples,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
		Skipped:    meta.Skipped,
	}
	return storage.ExportJSON(os.Stdout, meta.RunInfo, result)
}
