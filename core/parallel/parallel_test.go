package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 10000
	var visited int64

	Parallelize(items, func(start, end int) {
		atomic.AddInt64(&visited, int64(end-start))
	})

	if visited != items {
		t.Errorf("visited %d items, want %d", visited, items)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("fn should not be called for zero items")
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("got range [%d, %d), want [0, 10)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("got %d calls, want 1 sequential call", calls)
	}
}

func TestParallelizeWithThresholdParallel(t *testing.T) {
	const items = 5000
	var visited int64
	ParallelizeWithThreshold(items, 100, func(start, end int) {
		atomic.AddInt64(&visited, int64(end-start))
	})
	if visited != items {
		t.Errorf("visited %d items, want %d", visited, items)
	}
}
