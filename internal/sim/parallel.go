package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pbdsim/internal/particle"
)

// BuildFunc creates an independent system and runner for one ensemble
// member. Nothing may be shared between members.
type BuildFunc func(seed int64) (*particle.System, *Runner, error)

// Ensemble runs many seeded copies of a scene concurrently, one system per
// goroutine.
type Ensemble struct {
	build     BuildFunc
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build BuildFunc, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// SetLimit caps the number of members running at once. Zero or less means
// no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns results indexed by member. The first failing member cancels
// the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			sys, runner, err := e.build(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			res, err := runner.Run(ctx, sys, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
