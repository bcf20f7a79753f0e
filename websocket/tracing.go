package websocket

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

/*************************************************************************************************/
/* TRACING RELATED CONSTANTS                                                                     */
/*************************************************************************************************/

// Constants used for tracing and metrics.
const (
	// Package name used by library tracer and meter
	pkgName = "gowsconn.websocket"
	// Package version
	pkgVersion = "0.0.0"

	// Namespace used by spans, events, metrics and attributes
	namespace = "websocket"
	// Sub-namespace used by spans related to lifecycle tasks
	lifecycleNamespace = namespace + ".lifecycle"

	// Name of span used to trace Close public method
	spanClose = namespace + ".close"
	// Name of span used to trace the start of the opening handshake on the owner loop
	spanLifecycleOpen = lifecycleNamespace + ".open"
	// Name of span used to trace the end of the opening handshake on the owner loop
	spanLifecycleOpened = lifecycleNamespace + ".opened"
	// Name of span used to trace the start of the closing handshake on the owner loop
	spanLifecycleClose = lifecycleNamespace + ".close"
	// Name of span used to trace the end of the closing handshake on the owner loop
	spanLifecycleClosed = lifecycleNamespace + ".closed"

	// Name of the background work which performs the opening handshake
	backgroundDial = namespace + ".dial"
	// Name of the background work which performs the closing handshake
	backgroundClose = namespace + ".close"

	// Event used in span to signal a ready state change
	eventStateChanged = namespace + ".state_changed"
	// Event used in span to signal an event has been fired
	eventFired = namespace + ".event_fired"

	// Counter of ready state transitions
	metricTransitions = namespace + ".transitions"
	// Counter of fired events
	metricEvents = namespace + ".events"

	// Attribute used to store the connection ID
	attrConnectionId = namespace + ".connection_id"
	// Attribute used to store the connection URL
	attrUrl = "url.full"
	// Attribute used to store the ready state before a transition
	attrStateFrom = namespace + ".state.from"
	// Attribute used to store the ready state after a transition
	attrStateTo = namespace + ".state.to"
	// Attribute used to store the type of a fired event
	attrEventType = namespace + ".event.type"
	// Attribute used to indicate close reason code
	attrCloseCode = namespace + ".close_code"
	// Attribute used to indicate close reason
	attrCloseReason = namespace + ".close_reason"
	// Attribute used to indicate whether the closing handshake completed
	attrWasClean = namespace + ".was_clean"
)

// # Description
//
// The function records the input error in the provided span using span.RecordError(err) and set
// the span status with the provided code and description. The function returns the provided error.
//
// # Usage tips
//
// The function is meant to replace code blocks like this one:
//
//	if err != nil {
//			span.RecordError(err)
//			span.SetStatus(code, description)
//			return err
//	}
//
// By:
//
//	if err != nil {
//			return handleError(err, span, code, description)
//	}
func handleError(err error, span trace.Span, code codes.Code, description string) error {
	span.RecordError(err)
	span.SetStatus(code, description)
	return err
}

// # Description
//
// If the error is not nil, the function records the input error in the provided span and set the
// span status with an error code and description. In the other case, the span status is set with
// a Ok code. The function returns the provided error in all cases.
func handlePotentialError(err error, span trace.Span) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, codes.Error.String())
		return err
	}
	span.SetStatus(codes.Ok, codes.Ok.String())
	return nil
}
