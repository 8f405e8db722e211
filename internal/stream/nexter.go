package stream

import "sync/atomic"

// Nexter hands out monotonically increasing row ids for one dataset run.
// Safe for concurrent use; ids start at 0 and never repeat within a run.
type Nexter struct {
	n uint64
}

// Next returns the next id.
func (x *Nexter) Next() uint64 {
	return atomic.AddUint64(&x.n, 1) - 1
}

// Count reports how many ids have been handed out.
func (x *Nexter) Count() uint64 {
	return atomic.LoadUint64(&x.n)
}
