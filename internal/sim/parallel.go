package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Builder constructs an independent simulator. Each run owns its scene, so
// runs share nothing and may proceed in parallel.
type Builder func() (*Simulator, error)

// Ensemble runs several independently built simulators with the same config.
type Ensemble struct {
	builders []Builder
	limit    int
}

// NewEnsemble runs at most limit simulators at once; limit <= 0 means no cap.
func NewEnsemble(limit int, builders ...Builder) *Ensemble {
	return &Ensemble{builders: builders, limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.builders))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, build := range e.builders {
		g.Go(func() error {
			s, err := build()
			if err != nil {
				return err
			}
			results[i], err = s.Run(ctx, cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
