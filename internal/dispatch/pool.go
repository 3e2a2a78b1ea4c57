package dispatch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"GatePass/internal/queue"
)

// StartPool launches workers goroutines that claim and settle jobs until
// the context is cancelled or the queue closes. The shared limiter paces the
// whole pool against the transport.
func StartPool(
	ctx context.Context,
	wg *sync.WaitGroup,
	workers int,
	d *Dispatcher,
	limiter *rate.Limiter,
) {
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			d.Logger.Info("worker started", zap.Int("worker_id", id))

			for {
				job, err := d.Queue.Claim(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
						d.Logger.Info("worker shutting down", zap.Int("worker_id", id))
						return
					}
					d.Logger.Error("claim failed",
						zap.Int("worker_id", id),
						zap.Error(err),
					)
					continue
				}

				if err := limiter.Wait(ctx); err != nil {
					d.Logger.Warn("rate limiter stopped by context",
						zap.Int("worker_id", id),
						zap.Error(err),
					)
					return
				}

				d.handle(ctx, id, job)
			}
		}(i)
	}
}
