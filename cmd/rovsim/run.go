package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/metrics"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/storage"
	"github.com/san-kum/rovsim/internal/telemetry"
	"github.com/san-kum/rovsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := cfg.Build(log)
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	rec, err := telemetry.NewRecorder(cfg.Integrator)
	if err != nil {
		return err
	}
	s.AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := presetName()
	log.Info().Str("preset", name).Str("integrator", cfg.Integrator).Str("pilot", cfg.Pilot).Msg("running simulation")
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := storage.RunInfo{
		Preset:     name,
		Integrator: cfg.Integrator,
		Pilot:      cfg.Pilot,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
	}
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (skipped %d)\n", result.StepsTaken, result.Skipped)
	fmt.Printf("final depth: %.3f m  heading: %.1f°  speed: %.3f m/s\n", final.Depth(), final.Heading(), final.Speed())
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, opts, err := liveSim(cfg, presetName())
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(viz.NewModel(s, opts), tea.WithAltScreen()).Run()
	return err
}

func runMenu(cmd *cobra.Command, args []string) error {
	launch := func(name string) (*sim.Simulator, viz.Options, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, viz.Options{}, fmt.Errorf("unknown preset: %s", name)
		}
		return liveSim(cfg, name)
	}
	menu := viz.NewMenu(config.ListPresets(), presetInfo, launch)
	_, err := tea.NewProgram(menu, tea.WithAltScreen()).Run()
	return err
}

// liveSim builds a simulator for the terminal view. Logs are discarded since
// the view owns the terminal. With no pilot the keyboard drives the board.
func liveSim(cfg *config.Config, name string) (*sim.Simulator, viz.Options, error) {
	s, err := cfg.Build(zerolog.Nop())
	if err != nil {
		return nil, viz.Options{}, err
	}
	return s, viz.Options{
		Name:     name,
		Dt:       cfg.Dt,
		Keyboard: cfg.Pilot == "none",
	}, nil
}
