package warehouse

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert. Implementations insert the rows
// (aligned to columns order) and report how many went in. Backends bind the
// target table when building the closure.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize,
// and calls copyFn per non-empty batch. It returns the total rows reported
// by copyFn and the first error. On cancellation it returns (total, ctx.Err()).
// Progress is logged per flush with instantaneous rows/sec.
func LoadBatches(ctx context.Context, columns []string, in <-chan []any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("warehouse: batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("warehouse: copyFn must not be nil")
	}

	var (
		total     int64
		batches   int64
		batch     = make([][]any, 0, batchSize)
		start     = time.Now()
		lastFlush = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return err
		}

		batches++
		now := time.Now()
		rps := float64(0)
		if d := now.Sub(lastFlush); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Printf("loader: batch #%d inserted=%d total=%d rps=%.0f elapsed=%s",
			batches, n, total, rps, now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				return total, flush()
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
