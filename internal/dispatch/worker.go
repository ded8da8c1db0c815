package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/logger"
	orderservice "github.com/antonminaichev/darkstore-dispatch/internal/order"
)

func sweepWorker(ctx context.Context, id int, svc *Service, jobs <-chan string) {
	log := logger.Log.Sugar()
	for {
		select {
		case <-ctx.Done():
			return
		case orderID, ok := <-jobs:
			if !ok {
				return
			}
			_, err := svc.Dispatch(ctx, orderID)
			switch {
			case err == nil:
				log.Infow("auto-dispatched order", "worker", id, "order_id", orderID)
			case errors.Is(err, ErrNoAvailablePartner):
				// pool is empty; order stays ready and the next sweep retries
			case errors.Is(err, orderservice.ErrAlreadyAssigned),
				errors.Is(err, orderservice.ErrInvalidState),
				errors.Is(err, orderservice.ErrConcurrentModification):
				// raced with a manual assign or a cancel, nothing to do
			default:
				log.Errorw("auto-dispatch failed", "worker", id, "order_id", orderID, "error", err)
			}
		}
	}
}

// SweepLoop periodically collects ready orders and feeds them to a small
// worker pool. Operators can still dispatch by hand, the sweep just keeps
// the board from silting up.
func SweepLoop(ctx context.Context, svc *Service, workerCount int, interval time.Duration) {
	jobs := make(chan string, workerCount*3)

	for i := 1; i <= workerCount; i++ {
		go sweepWorker(ctx, i, svc, jobs)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logger.Log.Sugar()
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			return
		case <-ticker.C:
			orders, err := svc.ListReady(ctx)
			if err != nil {
				log.Errorw("sweep: listing ready orders failed", "error", err)
				continue
			}
			for _, o := range orders {
				select {
				case jobs <- o.ID:
				default:
					// queue full; this order waits for the next tick
				}
			}
		}
	}
}
