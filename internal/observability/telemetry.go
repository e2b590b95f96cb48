package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/lordwhitefire/new-portfolio"

// Tracer returns the shared tracer. Spans are no-ops unless the host installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a span with the supplied attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span (when non-nil) and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// PassCounter counts hydration passes by outcome.
type PassCounter struct {
	counter metric.Int64Counter
}

// NewPassCounter registers the hydrate.passes counter on the global meter provider.
// Registration failures degrade to a counter that records nothing.
func NewPassCounter() PassCounter {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	counter, err := meter.Int64Counter(
		"hydrate.passes",
		metric.WithDescription("Count of page hydration passes by outcome"),
	)
	if err != nil {
		return PassCounter{}
	}
	return PassCounter{counter: counter}
}

// Add records one pass for the page with the given outcome.
func (c PassCounter) Add(ctx context.Context, page, outcome string) {
	if c.counter == nil {
		return
	}
	c.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("page", page),
		attribute.String("outcome", outcome),
	))
}
