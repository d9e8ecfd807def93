// Package optim searches controller gains by simulation.
package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/rovsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no stable candidate")

// Build returns a simulator configured with params. It must attach the
// metric being minimised.
type Build func(params map[string]float64) (*sim.Simulator, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	limit      int
}

// NewGridSearch pairs params[i] with the candidate values ranges[i]. At most
// limit runs proceed at once; limit <= 0 means no cap.
func NewGridSearch(params []string, ranges [][]float64, limit int) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, limit: limit}
}

// Candidates enumerates the cartesian product of the ranges.
func (g *GridSearch) Candidates() []map[string]float64 {
	out := []map[string]float64{{}}
	for i, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(out)*len(g.ranges[i]))
		for _, base := range out {
			for _, v := range g.ranges[i] {
				c := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					c[k] = bv
				}
				c[name] = v
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}

type Outcome struct {
	Params  map[string]float64
	Value   float64
	Skipped int
}

// Search runs every candidate and returns the one with the lowest metric and
// all outcomes in candidate order. Candidates whose run refused a commit or
// produced a non-finite metric never win.
func (g *GridSearch) Search(ctx context.Context, cfg sim.Config, build Build, metricName string) (Outcome, []Outcome, error) {
	candidates := g.Candidates()
	builders := make([]sim.Builder, len(candidates))
	for i, c := range candidates {
		builders[i] = func() (*sim.Simulator, error) { return build(c) }
	}

	results, err := sim.NewEnsemble(g.limit, builders...).Run(ctx, cfg)
	if err != nil {
		return Outcome{}, nil, err
	}

	outcomes := make([]Outcome, len(results))
	best := -1
	for i, r := range results {
		v, ok := r.Metrics[metricName]
		if !ok {
			v = math.NaN()
		}
		outcomes[i] = Outcome{Params: candidates[i], Value: v, Skipped: r.Skipped}
		if r.Skipped > 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if best < 0 || v < outcomes[best].Value {
			best = i
		}
	}
	if best < 0 {
		return Outcome{}, outcomes, ErrNoCandidate
	}
	return outcomes[best], outcomes, nil
}
