// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

// A Pool is a set of task execution slots within a [Group]. A negative limit
// means tasks are always launched; a positive limit bounds the number of tasks
// running at once.
type Pool struct {
	group *Group
	limit int
	slots slotCount
}

// NewPool creates a pool bound to group. Panics if group is nil or limit is
// zero.
func NewPool(group *Group, limit int) *Pool {
	if group == nil {
		panic("group must be non-nil")
	}
	if limit == 0 {
		panic("pool limit must be non-zero")
	}
	return &Pool{
		group: group,
		limit: limit,
	}
}

func (p *Pool) Limit() int {
	return p.limit
}

func (p *Pool) acquire() bool {
	if p.limit < 0 {
		p.slots.take()
		return true
	}
	return p.slots.tryTake(p.limit)
}

func (p *Pool) release() {
	p.slots.give()
}
