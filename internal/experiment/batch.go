package experiment

import (
	"context"

	"github.com/san-kum/pmsim/internal/config"
	"golang.org/x/sync/errgroup"
)

// RunBatch runs every configuration concurrently. Results keep the order of
// cfgs. The first failure cancels the others. opts are applied to every
// run, so a metrics set passed through WithMetrics must not be shared.
func RunBatch(ctx context.Context, cfgs []*config.Config, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			e, err := New(cfg, opts...)
			if err != nil {
				return err
			}
			res, err := e.Run(ctx)
			results[i] = res
			return err
		})
	}
	return results, g.Wait()
}
