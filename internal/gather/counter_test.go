// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCountersPanicBelowZero(t *testing.T) {
	chk := require.New(t)
	var p pendingCount
	chk.PanicsWithValue("no tasks in flight", p.done)
	var s slotCount
	chk.PanicsWithValue("no tasks in flight", s.give)
}

func TestCountersWithRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var pending pendingCount
		var slots slotCount
		model := 0

		t.Repeat(map[string]func(*rapid.T){
			"take": func(t *rapid.T) {
				pending.add()
				slots.take()
				model++
			},
			"tryTake": func(t *rapid.T) {
				limit := rapid.IntRange(0, 10).Draw(t, "limit")
				want := model < limit
				require.Equal(t, want, slots.tryTake(limit))
				if want {
					pending.add()
					model++
				}
			},
			"release": func(t *rapid.T) {
				if model == 0 {
					t.Skip("nothing in flight")
				}
				pending.done()
				slots.give()
				model--
			},
			"": func(t *rapid.T) {
				require.Equal(t, model > 0, pending.nonzero())
				require.Equal(t, int64(model), slots.held())
			},
		})
	})
}

func TestSlotCountRespectsLimitUnderContention(t *testing.T) {
	chk := require.New(t)
	const limit = 3
	const workers = 16

	var s slotCount
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.tryTake(limit) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	chk.Equal(limit, granted)
	chk.Equal(int64(limit), s.held())
}
