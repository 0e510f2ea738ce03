// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otsweep

import (
	"github.com/petenewcomb/sweep-go"
	"go.uber.org/zap"
)

// Instrumented applies every decorator in this package to s. Tracing is
// outermost so that log entries and measurements fall within the submission's
// span.
func Instrumented(name string, s sweep.Submitter, logger *zap.Logger) sweep.Submitter {
	return Traced(name, Metered(name, Logged(name, s, logger)))
}
