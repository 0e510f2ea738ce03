// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

import (
	"context"
	"sync"
)

// Group tracks tasks launched with [Gather.Scatter] across a set of [Pool]
// instances and provides [Group.GatherOne] and [Group.GatherAll] for
// gathering their results. [Group.Cancel] terminates the group early.
type Group struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
	pending    pendingCount
	gatherChan chan boundGatherFunc
	wg         sync.WaitGroup
}

type boundGatherFunc = func(ctx context.Context) error

// NewGroup creates a group whose tasks receive a context derived from ctx.
// Each call should be followed by a deferred call to [Group.CancelAndWait].
func NewGroup(ctx context.Context) *Group {
	g := &Group{
		gatherChan: make(chan boundGatherFunc),
	}
	ctx, g.cancelFunc = context.WithCancel(ctx)
	g.ctx = context.WithValue(ctx, taskContextMarkerKey, g)
	return g
}

type taskContextMarkerType struct{}

var taskContextMarkerKey any = taskContextMarkerType{}

func (g *Group) isTaskContext(ctx context.Context) bool {
	v, _ := ctx.Value(taskContextMarkerKey).(*Group)
	return v == g
}

// Cancel terminates in-flight tasks and forfeits any ungathered results.
// Calling it more than once has no additional effect.
func (g *Group) Cancel() {
	g.cancelFunc()
}

// CancelAndWait cancels the group and waits for every task goroutine to exit.
func (g *Group) CancelAndWait() {
	g.cancelFunc()
	g.wg.Wait()
}

// GatherOne processes at most one result from a task launched into one of the
// group's pools, blocking until one is available. It returns false, nil when
// there are no tasks in flight.
func (g *Group) GatherOne(ctx context.Context) (bool, error) {
	return g.gatherOne(ctx, true)
}

// TryGatherOne is like [Group.GatherOne] but returns false, nil instead of
// blocking when no completed task is ready.
func (g *Group) TryGatherOne(ctx context.Context) (bool, error) {
	return g.gatherOne(ctx, false)
}

// GatherAll processes results until no tasks remain in flight or a gather
// function returns an error.
func (g *Group) GatherAll(ctx context.Context) error {
	for {
		ok, err := g.GatherOne(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

func (g *Group) gatherOne(ctx context.Context, block bool) (bool, error) {
	if !g.pending.nonzero() {
		return false, nil
	}
	if block {
		select {
		case gather := <-g.gatherChan:
			return true, g.executeGather(ctx, gather)
		case <-ctx.Done():
			return false, ctx.Err()
		case <-g.ctx.Done():
			return false, g.ctx.Err()
		}
	}
	select {
	case gather := <-g.gatherChan:
		return true, g.executeGather(ctx, gather)
	case <-ctx.Done():
		return false, ctx.Err()
	case <-g.ctx.Done():
		return false, g.ctx.Err()
	default:
		return false, nil
	}
}

func (g *Group) executeGather(ctx context.Context, gather boundGatherFunc) error {
	// Decrement only after the gather function returns so that the count
	// never reaches zero while a gather might still scatter new tasks.
	defer g.pending.done()
	return gather(ctx)
}
