// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otsweep

import (
	"context"
	"time"

	"github.com/petenewcomb/sweep-go"
	"go.opentelemetry.io/otel"
)

// Metered records three instruments for submissions made through s:
// <prefix>.count and <prefix>.errors counters and a <prefix>.duration
// histogram in seconds.
func Metered(prefix string, s sweep.Submitter) sweep.Submitter {
	return sweep.SubmitterFunc(func(ctx context.Context, job sweep.Job) (sweep.Handle, error) {
		meter := otel.GetMeterProvider().Meter(instrumentationName)
		count, _ := meter.Int64Counter(prefix + ".count")
		duration, _ := meter.Float64Histogram(prefix + ".duration")

		count.Add(ctx, 1)
		start := time.Now()
		h, err := s.Submit(ctx, job)
		duration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			errs, _ := meter.Int64Counter(prefix + ".errors")
			errs.Add(ctx, 1)
		}
		return h, err
	})
}
