package optim

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/metrics"
	"github.com/san-kum/rovsim/internal/sim"
)

func TestCandidates(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1, 2, 3}, {0, 1}}, 0)
	c := g.Candidates()
	require.Len(t, c, 6)
	assert.Equal(t, map[string]float64{"kp": 1, "kd": 0}, c[0])
	assert.Equal(t, map[string]float64{"kp": 3, "kd": 1}, c[5])
}

func depthBuilder(p map[string]float64) (*sim.Simulator, error) {
	cfg := config.GetPreset("dive")
	cfg.Autopilot.Depth.Target = 2
	cfg.Autopilot.Depth.Kp = p["kp"]
	cfg.Autopilot.Depth.Kd = p["kd"]
	cfg.Autopilot.Depth.Ki = 0
	s, err := cfg.Build(zerolog.Nop())
	if err != nil {
		return nil, err
	}
	s.AddMetric(metrics.NewDepthError(2))
	return s, nil
}

func TestSearchPrefersActiveController(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{0, 0.8}, {1.5}}, 2)
	best, all, err := g.Search(context.Background(), sim.Config{Dt: 0.02, Duration: 8}, depthBuilder, "depth_error")
	require.NoError(t, err)
	require.Len(t, all, 2)

	// with kp=0 the vehicle never leaves the surface
	assert.InDelta(t, 2, all[0].Value, 1e-6)
	assert.Equal(t, 0.8, best.Params["kp"])
	assert.Less(t, best.Value, all[0].Value)
}

func TestSearchMissingMetric(t *testing.T) {
	g := NewGridSearch([]string{"kp"}, [][]float64{{0.5}}, 0)
	_, _, err := g.Search(context.Background(), sim.Config{Dt: 0.05, Duration: 0.5}, depthBuilder, "nope")
	assert.ErrorIs(t, err, ErrNoCandidate)
}
