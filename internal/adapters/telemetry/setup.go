package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InstrumentationName names the tracer every pipeline stage is recorded on.
const InstrumentationName = "stitch"

// Setup installs a global tracer provider that reports every span to progress.
// It returns a tracer on that provider and a function shutting the provider down.
func Setup(progress Progress) (*OTelTracer, func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(progress)),
	)
	otel.SetTracerProvider(tp)
	return NewOTelTracerFrom(tp, InstrumentationName), tp.Shutdown
}
