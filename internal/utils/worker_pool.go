package utils

import (
	"context"
	"sync"
)

// Job represents a task to be executed by a worker.
type Job struct {
	Task func()
}

// WorkerPool manages a pool of workers to execute jobs.
type WorkerPool struct {
	workers   int
	jobQueue  chan Job
	waitGroup sync.WaitGroup
}

// NewWorkerPool creates a new WorkerPool with the specified number of workers.
// A non-positive worker count is treated as one.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	pool := &WorkerPool{
		workers:  workers,
		jobQueue: make(chan Job, workers),
	}

	pool.waitGroup.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

// worker processes jobs from the jobQueue.
func (wp *WorkerPool) worker() {
	defer wp.waitGroup.Done()
	for job := range wp.jobQueue {
		job.Task()
	}
}

// Submit adds a new job to the worker pool. It blocks while the queue is full and returns
// false without queueing when ctx is done first.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) bool {
	select {
	case wp.jobQueue <- Job{Task: task}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Shutdown waits for all workers to finish and then closes the worker pool.
func (wp *WorkerPool) Shutdown() {
	close(wp.jobQueue)
	wp.waitGroup.Wait()
}

// RunIndexed runs fn for every index in [0, n) on a pool of the given size and returns the
// results in index order, independent of completion order. Indexes not started because ctx
// was cancelled keep the zero value of T.
func RunIndexed[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) T) []T {
	results := make([]T, n)
	pool := NewWorkerPool(workers)
	for i := 0; i < n; i++ {
		if !pool.Submit(ctx, func() { results[i] = fn(ctx, i) }) {
			break
		}
	}
	pool.Shutdown()
	return results
}
