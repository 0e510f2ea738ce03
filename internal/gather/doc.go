// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package gather launches (scatters) tasks into goroutines and aggregates
// (gathers) their results sequentially on the caller's goroutine. Tasks run in
// the context of a [Pool], which limits how many may run at once; gather
// functions run one at a time, so they may safely update local state.
//
// A [Group] is single-threaded: all calls to [Gather.Scatter] and the Group's
// gathering methods must come from the same goroutine. Task functions still
// run on their own goroutines and must be thread-safe.
package gather
