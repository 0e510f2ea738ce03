// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/addrummond/heap"
	"github.com/petenewcomb/sweep-go/internal/gather"
	"go.uber.org/zap"
)

// A Handle identifies a job accepted by a [Submitter], for instance a batch
// scheduler job ID.
type Handle struct {
	ID string
}

func (h Handle) String() string {
	return h.ID
}

// A Submitter hands one job to an external system for execution. Each call is
// independent: an error affects only the job passed to that call.
type Submitter interface {
	Submit(ctx context.Context, job Job) (Handle, error)
}

// SubmitterFunc adapts an ordinary function to the [Submitter] interface.
type SubmitterFunc func(ctx context.Context, job Job) (Handle, error)

func (f SubmitterFunc) Submit(ctx context.Context, job Job) (Handle, error) {
	return f(ctx, job)
}

// Result is the outcome of submitting one job.
type Result struct {
	Job      Job
	Handle   Handle
	Err      error
	Duration time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Report lists the result of every job a [Dispatcher] attempted, in the order
// the jobs were produced.
type Report struct {
	Results []Result
}

// Submitted counts the jobs that were accepted.
func (r *Report) Submitted() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed counts the jobs whose submission returned an error.
func (r *Report) Failed() int {
	return len(r.Results) - r.Submitted()
}

// Failures returns the results of the failed submissions.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// A Dispatcher submits every job of a sweep to its [Submitter].
//
// Failed submissions are not retried and never prevent later jobs from being
// submitted. The dispatcher does not wait for jobs to run once submitted, nor
// does it judge the sweep as a whole: callers inspect the [Report].
type Dispatcher struct {
	Submitter Submitter

	// Concurrency bounds the number of Submit calls in progress at once.
	// Zero means one at a time, in order. A negative value removes the bound.
	Concurrency int

	// Logger receives one entry per job. Defaults to zap.L().
	Logger *zap.Logger

	// OnResult, if set, is called with each result in job order, on the
	// goroutine that called Dispatch.
	OnResult func(Result)
}

// DispatchSweep dispatches every job of s.
func (d *Dispatcher) DispatchSweep(ctx context.Context, s *Sweep) (*Report, error) {
	return d.Dispatch(ctx, s.Jobs())
}

// Dispatch submits each job produced by jobs and returns a report of the
// outcomes. The returned error is non-nil only if ctx is canceled, in which
// case jobs not yet submitted are skipped and the report covers every Submit
// call that was made, including those in progress at cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs iter.Seq[Job]) (*Report, error) {
	if d.Submitter == nil {
		panic("dispatcher has no submitter")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.L()
	}
	limit := d.Concurrency
	if limit == 0 {
		limit = 1
	}

	// The group outlives ctx so that submissions already accepted when ctx is
	// canceled are still gathered and reported.
	drain := context.WithoutCancel(ctx)
	group := gather.NewGroup(drain)
	defer group.CancelAndWait()
	pool := gather.NewPool(group, limit)

	report := &Report{}

	// Submissions may finish out of order when more than one is in flight;
	// hold early finishers until their predecessors have been reported.
	var pending heap.Heap[sequencedResult, heap.Min]
	next := 0
	g := gather.NewGather(func(ctx context.Context, r sequencedResult, err error) error {
		if err != nil {
			return err
		}
		heap.PushOrderable(&pending, r)
		for {
			head, ok := heap.Peek(&pending)
			if !ok || head.seq != next {
				return nil
			}
			_, _ = heap.PopOrderable(&pending)
			if !head.skipped {
				d.report(logger, report, head.Result)
			}
			next++
		}
	})

	seq := 0
	for job := range jobs {
		if ctx.Err() != nil {
			break
		}
		s := seq
		err := g.Scatter(drain, pool, func(context.Context) (sequencedResult, error) {
			if ctx.Err() != nil {
				return sequencedResult{seq: s, skipped: true}, nil
			}
			return sequencedResult{seq: s, Result: d.submit(ctx, job)}, nil
		})
		if err != nil {
			return report, err
		}
		seq++
	}
	if err := group.GatherAll(drain); err != nil {
		return report, err
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("sweep dispatch canceled",
			zap.Int("jobs", len(report.Results)),
			zap.Int("submitted", report.Submitted()),
			zap.Int("failed", report.Failed()),
			zap.Error(err))
		return report, err
	}
	logger.Info("sweep dispatched",
		zap.Int("jobs", len(report.Results)),
		zap.Int("submitted", report.Submitted()),
		zap.Int("failed", report.Failed()))
	return report, nil
}

func (d *Dispatcher) submit(ctx context.Context, job Job) (res Result) {
	res.Job = job
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Handle = Handle{}
			res.Err = fmt.Errorf("%w: %v", ErrSubmitPanic, r)
		}
	}()
	res.Handle, res.Err = d.Submitter.Submit(ctx, job)
	return res
}

func (d *Dispatcher) report(logger *zap.Logger, report *Report, r Result) {
	report.Results = append(report.Results, r)
	if r.Err != nil {
		logger.Warn("job submission failed",
			zap.Int("index", r.Job.Index()),
			zap.String("job", r.Job.Name()),
			zap.Duration("duration", r.Duration),
			zap.Error(r.Err))
	} else {
		logger.Info("job submitted",
			zap.Int("index", r.Job.Index()),
			zap.String("job", r.Job.Name()),
			zap.String("handle", r.Handle.ID),
			zap.Duration("duration", r.Duration))
	}
	if d.OnResult != nil {
		d.OnResult(r)
	}
}

type sequencedResult struct {
	seq     int
	skipped bool
	Result
}

func (a *sequencedResult) Cmp(b *sequencedResult) int {
	return cmp.Compare(a.seq, b.seq)
}
