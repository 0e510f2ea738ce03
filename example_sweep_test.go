// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petenewcomb/sweep-go"
	"go.uber.org/zap"
)

func Example() {
	s, err := sweep.NewSweep(sweep.SweepConfig{
		Category: "runtime",
		Target:   sweep.Target{Command: []string{"python3", "scripts/experiments/runtime.py"}},
		Base: sweep.Params{
			Dataset:     sweep.Adult,
			NEstimators: 100,
			MaxDepth:    5,
			KernelModel: sweep.KLR,
		},
		Axes: []sweep.Axis{
			sweep.Seeds(1, 2),
			sweep.TreeKernels(sweep.LeafPath, sweep.LeafOutput),
		},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for job := range s.Jobs() {
		fmt.Println(strings.Join(job.Args(), " "))
	}

	// Output:
	// --dataset adult --n_estimators 100 --max_depth 5 --rs 1 --tree_kernel leaf_path --kernel_model klr
	// --dataset adult --n_estimators 100 --max_depth 5 --rs 1 --tree_kernel leaf_output --kernel_model klr
	// --dataset adult --n_estimators 100 --max_depth 5 --rs 2 --tree_kernel leaf_path --kernel_model klr
	// --dataset adult --n_estimators 100 --max_depth 5 --rs 2 --tree_kernel leaf_output --kernel_model klr
}

func ExampleDispatcher() {
	s, err := sweep.NewSweep(sweep.SweepConfig{
		Category: "cleaning",
		Target:   sweep.Target{Command: []string{"python3", "scripts/experiments/cleaning.py"}},
		Base:     sweep.Params{NEstimators: 100, RandomState: 1, Method: sweep.TEKNN},
		Axes:     []sweep.Axis{sweep.Datasets(sweep.Churn, sweep.Amazon, sweep.Adult)},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// A scheduler that rejects the second job.
	next := 100
	scheduler := sweep.SubmitterFunc(func(_ context.Context, job sweep.Job) (sweep.Handle, error) {
		if job.Params().Dataset == sweep.Amazon {
			return sweep.Handle{}, errors.New("invalid partition")
		}
		next++
		return sweep.Handle{ID: fmt.Sprint(next)}, nil
	})

	d := &sweep.Dispatcher{Submitter: scheduler, Logger: zap.NewNop()}
	report, err := d.DispatchSweep(context.Background(), s)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, r := range report.Results {
		if r.OK() {
			fmt.Println(r.Job.Name(), "submitted as", r.Handle)
		} else {
			fmt.Println(r.Job.Name(), "failed:", r.Err)
		}
	}
	fmt.Println(report.Submitted(), "submitted,", report.Failed(), "failed")

	// Output:
	// cleaning-churn-teknn-n100-rs1 submitted as 101
	// cleaning-amazon-teknn-n100-rs1 failed: invalid partition
	// cleaning-adult-teknn-n100-rs1 submitted as 102
	// 2 submitted, 1 failed
}
