// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otsweep

import (
	"context"
	"time"

	"github.com/petenewcomb/sweep-go"
	"go.uber.org/zap"
)

// Logged logs each submission made through s at debug level, and each failed
// one at error level. A nil logger means zap.L() at the time of the call.
func Logged(name string, s sweep.Submitter, logger *zap.Logger) sweep.Submitter {
	return sweep.SubmitterFunc(func(ctx context.Context, job sweep.Job) (sweep.Handle, error) {
		l := logger
		if l == nil {
			l = zap.L()
		}
		l = l.With(
			zap.String("operation", name),
			zap.String("job", job.Name()),
			zap.Int("index", job.Index()))

		l.Debug("submitting job", zap.Strings("command", job.Command()))
		start := time.Now()
		h, err := s.Submit(ctx, job)
		duration := time.Since(start)
		if err != nil {
			l.Error("submission failed", zap.Duration("duration", duration), zap.Error(err))
		} else {
			l.Debug("submission accepted", zap.Duration("duration", duration), zap.String("handle", h.ID))
		}
		return h, err
	})
}
