// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work run by the pool. It receives the context it should honor.
type Task func(ctx context.Context) error

// WorkerPool represents a pool of workers that can process jobs concurrently
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Size returns the number of concurrent workers.
func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// Run executes all tasks using errgroup with goroutine limiting.
// Returns the first error encountered, and cancels remaining work.
func (wp *WorkerPool) Run(ctx context.Context, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, task := range tasks {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return task(groupCtx)
		})
	}

	return g.Wait()
}

// RunAll executes every task without cancelling on error.
// Tasks that had not started when ctx was cancelled report ctx.Err().
// The non-nil errors are returned in task order.
func (wp *WorkerPool) RunAll(ctx context.Context, tasks ...Task) []error {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]error, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			results[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ForEach runs fn for every item on the pool and returns the non-nil errors in item order.
func ForEach[T any](ctx context.Context, wp *WorkerPool, items []T, fn func(context.Context, T) error) []error {
	tasks := make([]Task, len(items))
	for i, item := range items {
		tasks[i] = func(ctx context.Context) error {
			return fn(ctx, item)
		}
	}
	return wp.RunAll(ctx, tasks...)
}
