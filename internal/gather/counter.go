// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

import (
	"sync/atomic"
)

// pendingCount is the number of launched tasks whose results have not been
// gathered. Only the scattering goroutine touches it.
type pendingCount int

func (n *pendingCount) add() {
	*n++
}

func (n *pendingCount) done() {
	if *n == 0 {
		panic("no tasks in flight")
	}
	*n--
}

func (n pendingCount) nonzero() bool {
	return n > 0
}

// slotCount is the number of pool slots held by running tasks. Slots are
// taken on the scattering goroutine and returned from task goroutines.
type slotCount struct {
	n atomic.Int64
}

func (s *slotCount) take() {
	s.n.Add(1)
}

// tryTake takes a slot if fewer than limit are held.
func (s *slotCount) tryTake(limit int) bool {
	// Back out of an increment that overshot, unless a release raced in
	// between and left room.
	for s.n.Add(1) > int64(limit) {
		if s.n.Add(-1) >= int64(limit) {
			return false
		}
	}
	return true
}

func (s *slotCount) give() {
	if s.n.Add(-1) < 0 {
		panic("no tasks in flight")
	}
}

func (s *slotCount) held() int64 {
	return s.n.Load()
}
