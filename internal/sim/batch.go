package sim

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// RunAll runs independent simulators concurrently, at most workers at a time when
// workers is positive. Results are returned in input order. The first failing run
// cancels the others.
func RunAll(ctx context.Context, sims []*Simulator, workers int) ([]*Result, error) {
	results := make([]*Result, len(sims))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range sims {
		g.Go(func() error {
			r, err := s.Run(ctx)
			if err != nil {
				return errors.Wrapf(err, "run %d", i)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
