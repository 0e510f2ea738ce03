// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otsweep

import (
	"context"

	"github.com/petenewcomb/sweep-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/petenewcomb/sweep-go/otsweep"

// Traced wraps every submission made through s in a span called name. The
// span carries the job's identity and, on success, the scheduler handle.
func Traced(name string, s sweep.Submitter) sweep.Submitter {
	return sweep.SubmitterFunc(func(ctx context.Context, job sweep.Job) (sweep.Handle, error) {
		p := job.Params()
		ctx, span := otel.Tracer(instrumentationName).Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("sweep.job.name", job.Name()),
				attribute.Int("sweep.job.index", job.Index()),
				attribute.String("sweep.job.category", job.Category()),
				attribute.String("sweep.job.dataset", string(p.Dataset)),
				attribute.Int("sweep.job.rs", p.RandomState),
			))
		defer span.End()

		h, err := s.Submit(ctx, job)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return h, err
		}
		span.SetAttributes(attribute.String("sweep.job.handle", h.ID))
		return h, nil
	})
}
