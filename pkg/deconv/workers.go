package deconv

import (
	"context"
	"sync"

	"github.com/ChrisMcGann/gcalign/pkg/core"
	"github.com/ChrisMcGann/gcalign/pkg/noise"
)

// DetectAll deconvolves several runs concurrently. Each run's matrix is
// independent, so runs are fanned out to a fixed pool of workers; results
// come back in input order. noiseCfg may be nil to skip thresholding.
// Cancellation simply stops scheduling further runs; no partial state needs
// rolling back.
func (c *Config) DetectAll(ctx context.Context, matrices []*core.IntensityMatrix, noiseCfg *noise.Config, workers int) ([]core.PeakList, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if noiseCfg != nil {
		if err := noiseCfg.Validate(); err != nil {
			return nil, err
		}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(matrices) {
		workers = len(matrices)
	}

	lists := make([]core.PeakList, len(matrices))
	errs := make([]error, len(matrices))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				m := matrices[i]
				var thresholds []float64
				if noiseCfg != nil {
					thresholds = noiseCfg.Thresholds(m)
				}
				lists[i], errs[i] = c.Detect(m, thresholds)
			}
		}()
	}

	var ctxErr error
feed:
	for i := range matrices {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return lists, nil
}
