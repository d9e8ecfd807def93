package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rovsim/internal/metrics"
	"github.com/san-kum/rovsim/internal/sim"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(base)

	builders := make([]sim.Builder, len(args))
	for i, name := range args {
		cfg := *base
		cfg.Integrator = name
		if err := cfg.Validate(); err != nil {
			return err
		}
		builders[i] = func() (*sim.Simulator, error) {
			s, err := cfg.Build(zerolog.Nop())
			if err != nil {
				return nil, err
			}
			s.AddMetric(metrics.NewEnergyDrift())
			s.AddMetric(metrics.NewPeakSpeed())
			return s, nil
		}
	}

	simCfg := base.SimConfig()
	simCfg.RealTime = false

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", presetName(), base.Dt, base.Duration)

	start := time.Now()
	results, err := sim.NewEnsemble(0, builders...).Run(context.Background(), simCfg)
	if err != nil {
		return err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Int("runs", len(results)).Msg("ensemble finished")

	fmt.Printf("%-10s  %10s  %10s  %12s  %8s\n", "integrator", "depth", "speed", "energy_drift", "skipped")
	fmt.Println(strings.Repeat("-", 58))
	for i, r := range results {
		final := r.Final()
		fmt.Printf("%-10s  %10.4f  %10.4f  %12.2e  %8d\n",
			args[i], final.Depth(), final.Speed(), r.Metrics["energy_drift"], r.Skipped)
	}
	return nil
}
