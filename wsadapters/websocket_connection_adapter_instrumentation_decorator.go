package wsadapters

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// A decorator which can be used to automatically instrument implementations of
// WebsocketConnectionAdapterInterface.
type WebsocketConnectionAdapterInstrumentationDecorator struct {
	// Decorated WebsocketConnectionAdapterInterface implementation
	decorated WebsocketConnectionAdapterInterface
	// Tracer used for instrumentation
	tracer trace.Tracer
}

// # Description
//
// Create a new decorator which will automatically instrument the provided implementation of
// WebsocketConnectionAdapterInterface.
//
// # Returns
//
// The decorator or an error if decorated is nil.
func NewWebsocketConnectionAdapterInstrumentationDecorator(
	decorated WebsocketConnectionAdapterInterface,
	tracerProvider trace.TracerProvider,
) (*WebsocketConnectionAdapterInstrumentationDecorator, error) {
	if decorated == nil {
		return nil, ErrNilAdapter
	}
	// If tracerProvider is nil
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	// Build and return decorator
	return &WebsocketConnectionAdapterInstrumentationDecorator{
		decorated: decorated,
		tracer:    tracerProvider.Tracer(pkgName, trace.WithInstrumentationVersion(pkgVersion)),
	}, nil
}

// Decorate and instrument the Dial method of a WebsocketConnectionAdapterInterface implementation.
func (decorator *WebsocketConnectionAdapterInstrumentationDecorator) Dial(ctx context.Context, target url.URL) (*http.Response, error) {
	// Start span
	ctx, span := decorator.tracer.Start(ctx, spanDial,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrUrl, target.String()),
		))
	defer span.End()
	// Call decorated Dial method
	resp, err := decorator.decorated.Dial(ctx, target)
	if resp != nil {
		span.SetAttributes(attribute.Int(attrHttpStatusCode, resp.StatusCode))
	}
	if err != nil {
		// Trace error
		span.RecordError(err)
		span.SetStatus(codes.Error, codes.Error.String())
	} else {
		span.SetStatus(codes.Ok, codes.Ok.String())
	}
	// Return results
	return resp, err
}

// Decorate and instrument the Close method of a WebsocketConnectionAdapterInterface implementation.
func (decorator *WebsocketConnectionAdapterInstrumentationDecorator) Close(ctx context.Context, code StatusCode, reason string) error {
	// Start span
	ctx, span := decorator.tracer.Start(ctx, spanClose,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int(attrCloseCode, int(code)),
			attribute.String(attrCloseReason, reason),
		))
	defer span.End()
	// Call decorated Close method
	err := decorator.decorated.Close(ctx, code, reason)
	if err != nil {
		// Trace error
		span.RecordError(err)
		span.SetStatus(codes.Error, codes.Error.String())
	} else {
		span.SetStatus(codes.Ok, codes.Ok.String())
	}
	// Return decorated results
	return err
}
