// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

import (
	"context"
	"fmt"
)

// A TaskFunc is executed asynchronously in its own goroutine and must
// therefore be thread-safe. It receives the group's context, which is
// canceled by [Group.Cancel]. A panicking task is reported to its gather
// function as an error wrapping [ErrTaskPanic].
type TaskFunc[T any] = func(context.Context) (T, error)

// A GatherFunc processes the result of a completed [TaskFunc]. Gather
// functions run one at a time on the goroutine that calls [Gather.Scatter] or
// one of the [Group] gathering methods.
type GatherFunc[T any] = func(context.Context, T, error) error

type Gather[T any] struct {
	gatherFunc GatherFunc[T]
}

func NewGather[T any](gatherFunc GatherFunc[T]) *Gather[T] {
	if gatherFunc == nil {
		panic("gather function must be non-nil")
	}
	return &Gather[T]{gatherFunc: gatherFunc}
}

// Scatter launches taskFunc in a new goroutine within pool. Its result is
// passed to the Gather's function by a later call to Scatter or to one of the
// group's gathering methods.
//
// Before launching, Scatter gathers up to two already-completed tasks. If the
// pool is at its limit, Scatter blocks, gathering results until a slot frees
// up. It returns an error, without launching the task, if ctx or the group is
// canceled or if a gather function fails.
//
// Scatter must not be called from within a TaskFunc of the same group.
func (g *Gather[T]) Scatter(ctx context.Context, pool *Pool, taskFunc TaskFunc[T]) error {
	if taskFunc == nil {
		panic("task function must be non-nil")
	}
	grp := pool.group
	if grp.isTaskContext(ctx) {
		panic("Scatter called from within TaskFunc; move call to GatherFunc instead")
	}

	for range 2 {
		ok, err := grp.TryGatherOne(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	for !pool.acquire() {
		if _, err := grp.GatherOne(ctx); err != nil {
			return err
		}
	}
	launched := false
	defer func() {
		if !launched {
			pool.release()
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := grp.ctx.Err(); err != nil {
		return err
	}

	grp.pending.add()
	grp.wg.Add(1)
	launched = true
	go func() {
		defer grp.wg.Done()
		value, err := runTask(grp.ctx, taskFunc)

		// Free the slot before posting so that the gather function may
		// scatter into the same pool without deadlock.
		pool.release()

		gather := func(ctx context.Context) error {
			return g.gatherFunc(ctx, value, err)
		}
		select {
		case grp.gatherChan <- gather:
		case <-grp.ctx.Done():
		}
	}()
	return nil
}

func runTask[T any](ctx context.Context, taskFunc TaskFunc[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return taskFunc(ctx)
}
