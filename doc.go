// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sweep expands experiment parameters for the TREX tree-ensemble
// explainability experiments into a Cartesian product of jobs and dispatches
// each job, independently, to a [Submitter] such as a batch scheduler or a
// local process runner.
//
// A [Sweep] is built once from a [SweepConfig] and never mutated. It pairs a
// base set of [Params] with an ordered list of [Axis] values; its jobs are the
// product of those axes in nested-loop order, with the first axis varying
// slowest. Every [Job] renders to the long-form command-line flags accepted by
// the experiment scripts and carries deterministic log and error file paths.
//
// A [Dispatcher] submits jobs one at a time by default. A failed submission is
// recorded in its [Result] and never prevents the remaining jobs from being
// submitted. Nothing is retried, and the dispatcher does not track jobs once
// the scheduler has accepted them.
package sweep
