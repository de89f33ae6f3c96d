// Package worker runs indexed jobs with bounded concurrency.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// Job processes one item. i is the item's position in the submitted batch.
type Job func(ctx context.Context, i int) error

type Pool struct {
	size   int
	logger logger.Logger
}

func NewPool(size int, log logger.Logger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}
	return &Pool{size: size, logger: log}, nil
}

func (p *Pool) Size() int { return p.size }

// Run calls job for 0..n-1. With a pool of size 1 jobs run one after
// another in index order. The first error cancels the context handed to
// the remaining jobs; jobs not yet started are skipped.
func (p *Pool) Run(ctx context.Context, n int, job Job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return job(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Debug("Pool stopped", logger.Error(err))
		return err
	}
	return ctx.Err()
}
