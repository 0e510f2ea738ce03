// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/ledger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openLedger(t *testing.T) (*ledger.Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := ledger.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, path
}

func roarSweep(t *testing.T) *sweep.Sweep {
	t.Helper()
	s, err := sweep.NewSweep(sweep.SweepConfig{
		Name:     "roar-2026",
		Category: "roar",
		Target:   sweep.Target{Command: []string{"python3", "scripts/experiments/roar.py"}},
		Base:     sweep.Params{NEstimators: 100, MaxDepth: 3, Method: sweep.TREX},
		Axes: []sweep.Axis{
			sweep.Datasets(sweep.Churn, sweep.Amazon),
			sweep.Seeds(1, 2, 3),
		},
	})
	require.NoError(t, err)
	return s
}

func TestRecordAndList(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()
	l, _ := openLedger(t)
	s := roarSweep(t)

	rec := l.Recorder(s.Name(), 4)
	errFull := errors.New("queue full")
	d := &sweep.Dispatcher{
		Logger: zap.NewNop(),
		Submitter: sweep.SubmitterFunc(func(_ context.Context, job sweep.Job) (sweep.Handle, error) {
			if job.Index() == 4 {
				return sweep.Handle{}, errFull
			}
			return sweep.Handle{ID: job.Name()}, nil
		}),
		OnResult: rec.Record,
	}
	report, err := d.DispatchSweep(ctx, s)
	chk.NoError(err)
	chk.NoError(rec.Close(ctx))

	entries, err := l.List(ctx, "roar-2026")
	chk.NoError(err)
	chk.Len(entries, len(report.Results))
	for i, e := range entries {
		job := report.Results[i].Job
		chk.Equal(i, e.Index)
		chk.Equal("roar-2026", e.SweepID)
		chk.Equal("roar", e.Category)
		chk.Equal(string(job.Params().Dataset), e.Dataset)
		chk.Equal(job.Name(), e.JobName)
		chk.Contains(e.Command, "python3 scripts/experiments/roar.py --dataset ")
		chk.False(e.SubmittedAt.IsZero())
		if i == 4 {
			chk.False(e.OK())
			chk.Equal("queue full", e.Error)
			chk.Empty(e.Handle)
		} else {
			chk.True(e.OK())
			chk.Equal(job.Name(), e.Handle)
		}
	}

	sums, err := l.Sweeps(ctx)
	chk.NoError(err)
	chk.Len(sums, 1)
	chk.Equal(ledger.Summary{
		SweepID:   "roar-2026",
		Jobs:      6,
		Failed:    1,
		FirstSeen: sums[0].FirstSeen,
	}, sums[0])
}

func TestLedgerPersists(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()
	l, path := openLedger(t)
	s := roarSweep(t)

	rec := l.Recorder("first", 100)
	for job := range s.Jobs() {
		rec.Record(sweep.Result{Job: job, Handle: sweep.Handle{ID: "1"}})
	}
	entries, err := l.List(ctx, "first")
	chk.NoError(err)
	chk.Empty(entries, "nothing written before the batch fills")
	chk.NoError(rec.Close(ctx))
	chk.NoError(l.Close())

	reopened, err := ledger.Open(ctx, path)
	chk.NoError(err)
	defer reopened.Close()
	entries, err = reopened.List(ctx, "first")
	chk.NoError(err)
	chk.Len(entries, s.Len())

	entries, err = reopened.List(ctx, "unknown")
	chk.NoError(err)
	chk.Empty(entries)
}

func TestRecorderFlushesEachBatch(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()
	l, _ := openLedger(t)
	s := roarSweep(t)

	rec := l.Recorder("batched", 2)
	n := 0
	for job := range s.Jobs() {
		rec.Record(sweep.Result{Job: job})
		n++
		entries, err := l.List(ctx, "batched")
		chk.NoError(err)
		chk.Len(entries, n-n%2)
	}
	chk.NoError(rec.Close(ctx))
}

func TestOpenBadPath(t *testing.T) {
	_, err := ledger.Open(context.Background(), filepath.Join(t.TempDir(), "missing", "ledger.db"))
	require.Error(t, err)
}
