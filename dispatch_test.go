// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/petenewcomb/sweep-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errRejected = errors.New("sbatch: error: invalid partition specified")

// mockScheduler records every submission and fails the calls whose 1-based
// ordinal is listed in failOn.
type mockScheduler struct {
	mu     sync.Mutex
	calls  [][]string
	failOn map[int]bool
}

func (m *mockScheduler) Submit(_ context.Context, job sweep.Job) (sweep.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, job.Args())
	n := len(m.calls)
	if m.failOn[n] {
		return sweep.Handle{}, errRejected
	}
	return sweep.Handle{ID: fmt.Sprint(1000 + n)}, nil
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t,
		sweep.Seeds(1, 2, 3, 4, 5),
		sweep.TreeKernels(sweep.TreeOutput, sweep.LeafPath, sweep.LeafOutput),
	)
	sched := &mockScheduler{failOn: map[int]bool{4: true}}
	d := &sweep.Dispatcher{Submitter: sched, Logger: zap.NewNop()}

	report, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)
	chk.Len(sched.calls, 15)
	chk.Len(report.Results, 15)
	chk.Equal(14, report.Submitted())
	chk.Equal(1, report.Failed())

	failures := report.Failures()
	chk.Len(failures, 1)
	chk.Equal(3, failures[0].Job.Index())
	chk.ErrorIs(failures[0].Err, errRejected)
	chk.Empty(failures[0].Handle.ID)

	// Submission arguments match the jobs, in sweep order.
	i := 0
	for job := range s.Jobs() {
		chk.Equal(job.Args(), sched.calls[i])
		chk.Equal(job, report.Results[i].Job)
		i++
	}
	chk.Equal("1005", report.Results[4].Handle.ID)
}

func TestDispatchEveryCallFails(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t, sweep.Seeds(1, 2, 3))
	d := &sweep.Dispatcher{
		Submitter: sweep.SubmitterFunc(func(context.Context, sweep.Job) (sweep.Handle, error) {
			return sweep.Handle{}, errRejected
		}),
		Logger: zap.NewNop(),
	}
	report, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)
	chk.Equal(3, report.Failed())
	chk.Zero(report.Submitted())
}

func TestDispatchEmptySweep(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t, sweep.Seeds(), sweep.TreeKernels(sweep.LeafPath))
	sched := &mockScheduler{}
	d := &sweep.Dispatcher{Submitter: sched, Logger: zap.NewNop()}
	report, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)
	chk.Empty(sched.calls)
	chk.Empty(report.Results)
}

func TestDispatchConcurrentReportsInOrder(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t,
		sweep.Datasets(sweep.Adult, sweep.Churn, sweep.Amazon),
		sweep.Seeds(1, 2, 3, 4),
	)

	var mu sync.Mutex
	running, peak := 0, 0
	d := &sweep.Dispatcher{
		Concurrency: 3,
		Logger:      zap.NewNop(),
		Submitter: sweep.SubmitterFunc(func(_ context.Context, job sweep.Job) (sweep.Handle, error) {
			mu.Lock()
			running++
			peak = max(peak, running)
			mu.Unlock()
			time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			if job.Index()%5 == 0 {
				return sweep.Handle{}, errRejected
			}
			return sweep.Handle{ID: job.Name()}, nil
		}),
	}
	var seen []int
	d.OnResult = func(r sweep.Result) {
		seen = append(seen, r.Job.Index())
	}

	report, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)
	chk.LessOrEqual(peak, 3)
	chk.Len(report.Results, 12)
	for i, r := range report.Results {
		chk.Equal(i, r.Job.Index())
		chk.Equal(i, seen[i])
		chk.Equal(i%5 != 0, r.OK())
	}
}

func TestDispatchRecoversSubmitterPanic(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t, sweep.Seeds(1, 2, 3))
	calls := 0
	d := &sweep.Dispatcher{
		Logger: zap.NewNop(),
		Submitter: sweep.SubmitterFunc(func(context.Context, sweep.Job) (sweep.Handle, error) {
			calls++
			if calls == 2 {
				panic("scheduler client exploded")
			}
			return sweep.Handle{ID: "ok"}, nil
		}),
	}
	report, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)
	chk.Equal(3, calls)
	chk.Equal(2, report.Submitted())
	chk.ErrorIs(report.Results[1].Err, sweep.ErrSubmitPanic)
}

func TestDispatchStopsOnCancel(t *testing.T) {
	chk := require.New(t)
	s := newTestSweep(t, sweep.Seeds(1, 2, 3, 4, 5, 6))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	d := &sweep.Dispatcher{
		Logger: zap.NewNop(),
		Submitter: sweep.SubmitterFunc(func(context.Context, sweep.Job) (sweep.Handle, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return sweep.Handle{ID: fmt.Sprint(calls)}, nil
		}),
	}
	report, err := d.DispatchSweep(ctx, s)
	chk.ErrorIs(err, context.Canceled)
	chk.Equal(2, calls)
	chk.Len(report.Results, 2)
	chk.Equal("2", report.Results[1].Handle.ID)
	chk.Equal(2, report.Submitted())
}

func TestDispatchReportsEveryCallMadeBeforeCancel(t *testing.T) {
	s := newTestSweep(t,
		sweep.Seeds(1, 2, 3, 4, 5, 6, 7, 8),
		sweep.TreeKernels(sweep.TreeOutput, sweep.LeafPath, sweep.LeafOutput),
	)
	for trial := range 50 {
		chk := require.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		stopAt := 1 + trial%s.Len()

		var mu sync.Mutex
		var handles []string
		d := &sweep.Dispatcher{
			Logger:      zap.NewNop(),
			Concurrency: 1 + trial%4,
			Submitter: sweep.SubmitterFunc(func(context.Context, sweep.Job) (sweep.Handle, error) {
				time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond)
				mu.Lock()
				defer mu.Unlock()
				h := fmt.Sprint(len(handles))
				handles = append(handles, h)
				if len(handles) == stopAt {
					cancel()
				}
				return sweep.Handle{ID: h}, nil
			}),
		}
		var recorded []string
		d.OnResult = func(r sweep.Result) { recorded = append(recorded, r.Handle.ID) }

		report, err := d.DispatchSweep(ctx, s)
		cancel()
		if stopAt < s.Len() {
			chk.ErrorIs(err, context.Canceled)
		}
		chk.ElementsMatch(handles, recorded)
		chk.Len(report.Results, len(handles))
		for i := 1; i < len(report.Results); i++ {
			chk.Less(report.Results[i-1].Job.Index(), report.Results[i].Job.Index())
		}
	}
}

func TestDispatchLogsEachJob(t *testing.T) {
	chk := require.New(t)
	core, logs := observer.New(zapcore.InfoLevel)
	s := newTestSweep(t, sweep.Seeds(1, 2))
	d := &sweep.Dispatcher{
		Submitter: &mockScheduler{failOn: map[int]bool{2: true}},
		Logger:    zap.New(core),
	}
	_, err := d.DispatchSweep(context.Background(), s)
	chk.NoError(err)

	chk.Equal(1, logs.FilterMessage("job submitted").Len())
	failed := logs.FilterMessage("job submission failed").All()
	chk.Len(failed, 1)
	chk.Equal(zapcore.WarnLevel, failed[0].Level)
	chk.Equal("runtime-adult-cb-trex-klr-n100-d5-rs2", failed[0].ContextMap()["job"])

	summary := logs.FilterMessage("sweep dispatched").All()
	chk.Len(summary, 1)
	chk.EqualValues(1, summary[0].ContextMap()["failed"])
}

func TestDispatchWithoutSubmitterPanics(t *testing.T) {
	chk := require.New(t)
	d := &sweep.Dispatcher{}
	chk.PanicsWithValue("dispatcher has no submitter", func() {
		_, _ = d.DispatchSweep(context.Background(), newTestSweep(t))
	})
}
