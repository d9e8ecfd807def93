package automation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/sim"
)

// MonteCarloConfig perturbs the initial velocities and attitude of Base by
// uniform noise of the given half-widths.
type MonteCarloConfig struct {
	Base            *config.Config
	Trials          int
	Seed            uint64
	LinearVelocity  float64 // m/s per axis
	AngularVelocity float64 // rad/s per axis
	Attitude        float64 // degrees per Euler axis
	// SpeedLimit marks a trial unstable when its final speed exceeds it;
	// zero disables the check.
	SpeedLimit float64
	Limit      int
}

type MonteCarloResult struct {
	TrialID int
	Initial config.VehicleConfig
	Final   sim.Sample
	Skipped int
	Stable  bool
}

// trials draws every perturbation up front so results do not depend on
// scheduling.
func (c MonteCarloConfig) trials() []config.Config {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	jitter := func(w float64) float64 { return (rng.Float64()*2 - 1) * w }

	out := make([]config.Config, c.Trials)
	for i := range out {
		cfg := *c.Base
		v := &cfg.Vehicle
		for k := 0; k < 3; k++ {
			v.LinearVelocity[k] += jitter(c.LinearVelocity)
			v.AngularVelocity[k] += jitter(c.AngularVelocity)
			v.Rotation[k] += jitter(c.Attitude)
		}
		out[i] = cfg
	}
	return out
}

func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig, log zerolog.Logger) ([]MonteCarloResult, error) {
	trials := mc.trials()
	results := make([]MonteCarloResult, len(trials))

	g, ctx := errgroup.WithContext(ctx)
	if mc.Limit > 0 {
		g.SetLimit(mc.Limit)
	}
	for i := range trials {
		cfg := &trials[i]
		g.Go(func() error {
			s, err := cfg.Build(zerolog.Nop())
			if err != nil {
				return err
			}
			r, err := s.Run(ctx, cfg.SimConfig())
			if err != nil {
				return err
			}
			final := r.Final()
			results[i] = MonteCarloResult{
				TrialID: i,
				Initial: cfg.Vehicle,
				Final:   final,
				Skipped: r.Skipped,
				Stable:  stable(final, r.Skipped, mc.SpeedLimit),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stableCount, unstableCount := MonteCarloStats(results)
	log.Info().Int("trials", len(results)).Int("stable", stableCount).Int("unstable", unstableCount).Msg("monte carlo finished")
	return results, nil
}

func stable(final sim.Sample, skipped int, speedLimit float64) bool {
	if skipped > 0 {
		return false
	}
	if !orient.VecFinite(final.Position) || !orient.VecFinite(final.LinearVelocity) {
		return false
	}
	return speedLimit <= 0 || final.Speed() <= speedLimit
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
