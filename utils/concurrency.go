package utils

import (
	"sync"
)

// WorkerPool fans jobs out across a bounded number of goroutines and joins
// them all. Job errors are collected; Wait reports the first one observed
// rather than dropping it.
type WorkerPool struct {
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewWorkerPool creates a WorkerPool running at most maxWorkers jobs at once.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit enqueues a job for execution in the pool. Submit blocks while all
// workers are busy, so the caller cannot race ahead of the pool.
func (wp *WorkerPool) Submit(job func() error) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := job(); err != nil {
			wp.mu.Lock()
			wp.errs = append(wp.errs, err)
			wp.mu.Unlock()
		}
	}()
}

// Wait blocks until every submitted job has completed and returns the first
// error any job reported, or nil.
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if len(wp.errs) > 0 {
		return wp.errs[0]
	}
	return nil
}

// Errs returns every error collected so far. Only meaningful after Wait.
func (wp *WorkerPool) Errs() []error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return append([]error(nil), wp.errs...)
}

// Batches partitions ids into floor(len(ids)/size) slices of exactly `size`,
// plus a ragged tail. Full slices are meant for the worker pool; the tail,
// when non-empty, is executed synchronously by the caller so the pool only
// ever sees equal-sized work.
func Batches(ids []string, size int) (full [][]string, tail []string) {
	if size < 1 || len(ids) == 0 {
		return nil, ids
	}
	n := len(ids) / size
	for i := 0; i < n; i++ {
		full = append(full, ids[i*size:(i+1)*size])
	}
	return full, ids[n*size:]
}

// IDSet is a mutex-protected string set used to track ids already handled
// across workers.
type IDSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the id was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Contains returns true if the id was already added.
func (s *IDSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[id]
	return exists
}

// Size returns the number of unique ids tracked.
func (s *IDSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
