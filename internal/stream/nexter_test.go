package stream

import (
	"sync"
	"testing"
)

// TestNexterSequential verifies ids start at 0 and increase by 1.
func TestNexterSequential(t *testing.T) {
	t.Parallel()

	var x Nexter
	for want := uint64(0); want < 100; want++ {
		if got := x.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
	if x.Count() != 100 {
		t.Fatalf("Count() = %d, want 100", x.Count())
	}
}

// TestNexterConcurrent verifies ids stay unique under concurrent callers.
func TestNexterConcurrent(t *testing.T) {
	t.Parallel()

	const (
		workers = 8
		perW    = 1000
	)

	var x Nexter
	out := make(chan uint64, workers*perW)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perW; i++ {
				out <- x.Next()
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[uint64]bool, workers*perW)
	for id := range out {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perW {
		t.Fatalf("got %d unique ids, want %d", len(seen), workers*perW)
	}
	if x.Count() != workers*perW {
		t.Fatalf("Count() = %d, want %d", x.Count(), workers*perW)
	}
}
