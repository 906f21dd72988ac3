package utils

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	var count int64

	for i := 0; i < 100; i++ {
		pool.Submit(func() error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if count != 100 {
		t.Errorf("ran %d jobs, want 100", count)
	}
}

func TestWorkerPoolPropagatesErrors(t *testing.T) {
	pool := NewWorkerPool(2)
	boom := errors.New("boom")

	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func() error {
			if i == 5 {
				return boom
			}
			return nil
		})
	}

	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait = %v, want the job error", err)
	}
}

func TestWorkerPoolSerializedAccumulator(t *testing.T) {
	pool := NewWorkerPool(8)
	var (
		mu     sync.Mutex
		result []int
	)

	for i := 0; i < 200; i++ {
		i := i
		pool.Submit(func() error {
			mu.Lock()
			result = append(result, i)
			mu.Unlock()
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(result) != 200 {
		t.Errorf("accumulator has %d entries, want 200", len(result))
	}
}

func TestBatches(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}

	full, tail := Batches(ids, 3)

	if len(full) != 2 {
		t.Fatalf("got %d full slices, want 2", len(full))
	}
	for i, slice := range full {
		if len(slice) != 3 {
			t.Errorf("slice %d has %d ids, want 3", i, len(slice))
		}
	}
	if len(tail) != 1 || tail[0] != "g" {
		t.Errorf("tail = %v, want [g]", tail)
	}

	total := len(tail)
	for _, slice := range full {
		total += len(slice)
	}
	if total != len(ids) {
		t.Errorf("partition covers %d ids, want %d", total, len(ids))
	}
}

func TestBatchesExactFit(t *testing.T) {
	full, tail := Batches([]string{"a", "b", "c", "d"}, 2)
	if len(full) != 2 || len(tail) != 0 {
		t.Errorf("got %d full + %d tail, want 2 + 0", len(full), len(tail))
	}
}

func TestBatchesZeroSize(t *testing.T) {
	ids := []string{"a", "b"}
	full, tail := Batches(ids, 0)
	if len(full) != 0 || len(tail) != 2 {
		t.Errorf("zero slice size must put everything in the tail, got %v / %v", full, tail)
	}
}

func TestIDSetNoDuplicates(t *testing.T) {
	s := NewIDSet()

	if !s.Add("10") {
		t.Error("first Add should return true")
	}
	if s.Add("10") {
		t.Error("second Add of same id should return false")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestIDSetConcurrency(t *testing.T) {
	s := NewIDSet()
	var added int64

	pool := NewWorkerPool(10)
	for i := 0; i < 100; i++ {
		pool.Submit(func() error {
			if s.Add("same") {
				atomic.AddInt64(&added, 1)
			}
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}
