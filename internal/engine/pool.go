package engine

import (
	"context"
	"runtime"
)

// defaultParallelism mirrors the spec's worker-pool sizing rule: twice the
// CPU count, capped at 8, applied independently to the project-scope pool
// and the machine-scope pool.
func defaultParallelism() int {
	n := runtime.NumCPU() * 2
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// semaphore is a context-aware counting semaphore bounding how many scopes
// run concurrently within one pool.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{slots: make(chan struct{}, capacity)}
}

// acquire blocks until a slot is free or ctx is done. A false return means
// the caller should not run its task: the run was cancelled while queued.
func (s *semaphore) acquire(ctx context.Context) bool {
	select {
	case s.slots <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *semaphore) release() {
	<-s.slots
}
