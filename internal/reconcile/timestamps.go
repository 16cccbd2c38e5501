package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BlockTimeSource resolves a block number to its unix timestamp.
type BlockTimeSource interface {
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// ResolveTimestamps looks up the wall-clock time of each block
// concurrently. Lookups are independent idempotent reads: a failure for
// one block leaves that block absent from the result and does not block
// the others. Callers substitute the reconciliation run time for absent
// blocks.
func ResolveTimestamps(ctx context.Context, src BlockTimeSource, blocks []uint64, concurrency int, logger *zap.Logger) map[uint64]time.Time {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 8
	}

	times := make(map[uint64]time.Time, len(blocks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for _, number := range blocks {
		wg.Add(1)
		go func(number uint64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ts, err := src.BlockTimestamp(ctx, number)
			if err != nil {
				logger.Warn("block timestamp unresolved", zap.Uint64("block", number), zap.Error(err))
				return
			}

			mu.Lock()
			times[number] = time.Unix(int64(ts), 0).UTC()
			mu.Unlock()
		}(number)
	}

	wg.Wait()
	return times
}
