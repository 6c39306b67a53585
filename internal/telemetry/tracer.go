// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry provides OpenTelemetry spans for guardian's own
// lifecycle events (start, stop, check), independent of whatever
// tracing a supervised worker does on its own.
package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config controls span export for guardian's lifecycle tracer.
type Config struct {
	// Enabled turns span export on. When false, Init installs nothing and
	// the Provider uses whatever global tracer provider is set (otel's
	// no-op provider unless another has been installed).
	Enabled bool

	// ServiceName is recorded on every span's resource attributes.
	ServiceName string
}

// Provider wraps an OpenTelemetry TracerProvider scoped to guardian's own
// lifecycle events.
type Provider struct {
	tp     trace.TracerProvider
	tracer trace.Tracer
}

// Init builds a Provider from cfg. When cfg.Enabled is false it returns a
// Provider backed by the current global tracer provider (otel's no-op
// implementation unless another has been installed), so callers never
// need to branch on whether telemetry is on.
func Init(cfg Config) *Provider {
	if !cfg.Enabled {
		return &Provider{tp: otel.GetTracerProvider(), tracer: otel.Tracer(cfg.ServiceName)}
	}

	exp := &slogSpanExporter{logger: slog.Default().With(slog.String("component", "telemetry"))}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, tracer: tp.Tracer(cfg.ServiceName)}
}

// StartLifecycleSpan starts a span for a guardian lifecycle event (start,
// stop, check) tagged with the daemon name and pidfile it concerns.
func (p *Provider) StartLifecycleSpan(ctx context.Context, operation, daemonName, pidfile string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "guardian."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("daemon.name", daemonName),
			attribute.String("daemon.pidfile", pidfile),
		),
	)
}

// EndWithError finishes span, marking it as failed if err is non-nil.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and releases the underlying TracerProvider, if it
// supports shutdown (the no-op provider used when telemetry is disabled
// does not).
func (p *Provider) Shutdown(ctx context.Context) error {
	if sh, ok := p.tp.(interface{ Shutdown(context.Context) error }); ok {
		return sh.Shutdown(ctx)
	}
	return nil
}
