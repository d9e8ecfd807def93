// Package automation runs scripted batches of simulations: scenario files,
// timestep sweeps and Monte Carlo perturbation trials.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/metrics"
	"github.com/san-kum/rovsim/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides the
// fields that are set.
type ScenarioStep struct {
	Name       string    `yaml:"name"`
	Preset     string    `yaml:"preset"`
	Integrator string    `yaml:"integrator"`
	Pilot      string    `yaml:"pilot"`
	Duration   float64   `yaml:"duration"`
	Dt         float64   `yaml:"dt"`
	Power      []float64 `yaml:"power"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Pilot != "" {
		cfg.Pilot = s.Pilot
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Power != nil {
		cfg.Power = s.Power
	}
	return cfg, cfg.Validate()
}

type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes the steps in order. A failing step stops the
// scenario; results for the steps before it are returned.
func RunScenario(ctx context.Context, scenario *Scenario, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("name", step.Name).Msg("running scenario step")

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		s, err := cfg.Build(log)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, m := range metrics.Defaults() {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, cfg.SimConfig())
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// TimestepSweep runs the same scenario at each dt and compares every run
// against the one with the finest step.
type TimestepSweep struct {
	Base  *config.Config
	Steps []float64
	Limit int
}

type SweepResult struct {
	Dt       float64
	Skipped  int
	Final    sim.Sample
	MaxSpeed float64
	// Drift is the distance between this run's final position and the
	// finest-step run's.
	Drift float64
}

// Stable reports whether every commit was accepted.
func (r SweepResult) Stable() bool { return r.Skipped == 0 }

// LogSpace returns n values from lo to hi spaced evenly in log scale.
func LogSpace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	ratio := math.Pow(hi/lo, 1/float64(n-1))
	v := lo
	for i := range out {
		out[i] = v
		v *= ratio
	}
	out[n-1] = hi
	return out
}

func RunSweep(ctx context.Context, sweep TimestepSweep) ([]SweepResult, error) {
	out := make([]SweepResult, len(sweep.Steps))

	g, ctx := errgroup.WithContext(ctx)
	if sweep.Limit > 0 {
		g.SetLimit(sweep.Limit)
	}
	for i, dt := range sweep.Steps {
		cfg := *sweep.Base
		cfg.Dt = dt
		g.Go(func() error {
			s, err := cfg.Build(zerolog.Nop())
			if err != nil {
				return fmt.Errorf("dt %g: %w", dt, err)
			}
			s.AddMetric(metrics.NewPeakSpeed())
			r, err := s.Run(ctx, cfg.SimConfig())
			if err != nil {
				return fmt.Errorf("dt %g: %w", dt, err)
			}
			out[i] = SweepResult{
				Dt:       dt,
				Skipped:  r.Skipped,
				Final:    r.Final(),
				MaxSpeed: r.Metrics["peak_speed"],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ref := 0
	for i := range out {
		if out[i].Dt < out[ref].Dt {
			ref = i
		}
	}
	for i := range out {
		out[i].Drift = out[i].Final.Position.Sub(out[ref].Final.Position).Len()
	}
	return out, nil
}

// Within reports whether the run committed every tick and stayed within tol
// metres of the reference.
func (r SweepResult) Within(tol float64) bool {
	return r.Stable() && r.Drift <= tol
}
