// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otsweep decorates a [sweep.Submitter] with structured logging,
// OpenTelemetry tracing, and OpenTelemetry metrics. Decorators compose, and
// [Instrumented] applies all three.
//
// Spans and metrics use the global providers installed with
// otel.SetTracerProvider and otel.SetMeterProvider; until a provider is
// installed they are no-ops.
package otsweep
