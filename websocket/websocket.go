// This package contains the client side lifecycle of a websocket connection: opening handshake,
// ready state tracking, close requests validation, closing handshake and open/close/error events.
//
// A WebSocket is owned by a taskloop.Loop. Handshakes run on background goroutines and their
// results are posted back to the owner loop, which performs every state transition (except the
// synchronous Connecting -> Closing one performed by Close) and fires every event.
package websocket

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gbdevw/gowsconn/events"
	"github.com/gbdevw/gowsconn/taskloop"
	"github.com/gbdevw/gowsconn/wsadapters"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Maximum length of a close reason, in bytes.
const maxCloseReasonLength = 123

// Close request built from CloseOption.
type closeRequest struct {
	// Status code to send
	code uint16
	// Whether a status code has been provided
	hasCode bool
	// Close reason to send
	reason string
}

// Option used to customize a close request.
type CloseOption func(req *closeRequest)

// Set the status code sent in the close message. Must be 1000 or in range [3000, 4999].
func WithCode(code uint16) CloseOption {
	return func(req *closeRequest) {
		req.code = code
		req.hasCode = true
	}
}

// Set the reason sent in the close message. Must not be longer than 123 bytes.
func WithReason(reason string) CloseOption {
	return func(req *closeRequest) {
		req.reason = reason
	}
}

// A client websocket connection.
//
// Listeners and handler attributes are registered through the embedded EventTarget. Events are
// always fired on the owner loop.
type WebSocket struct {
	*events.EventTarget
	// Unique identifier of the connection
	id uuid.UUID
	// Target URL
	url *url.URL
	// Ready state. Only moves forward.
	readyState atomic.Uint32
	// Set once a close task has been scheduled
	closeScheduled atomic.Bool
	// Close request recorded by Close while connecting
	pendingClose atomic.Pointer[closeRequest]
	// Serializes Close calls
	closeMu sync.Mutex
	// Connection adapter used to perform the handshakes
	conn wsadapters.WebsocketConnectionAdapterInterface
	// Established session. Owner loop only: set once the opening handshake has succeeded.
	session wsadapters.WebsocketConnectionAdapterInterface
	// Whether the close event has been fired. Owner loop only.
	closeFired bool
	// Handle used to post lifecycle tasks to the owner loop
	handle taskloop.Handle[WebSocket]
	// Configuration options
	opts *WebsocketOptions
	// Logger
	logger *zap.Logger
	// Tracer
	tracer trace.Tracer
	// Number of ready state transitions
	transitionsCounter metric.Int64Counter
	// Number of fired events
	eventsCounter metric.Int64Counter
}

// # Description
//
// Factory - Create a new websocket connection and schedule its opening handshake on the provided
// owner loop. The returned connection is in the Connecting state.
//
// # Inputs
//
//   - loop: Owner loop. Lifecycle tasks are executed and events are fired on this loop.
//   - rawUrl: Target URL. Scheme must be ws or wss and the URL must not contain a fragment.
//   - conn: Connection adapter used to perform the handshakes. It is automatically decorated
//     to be instrumented.
//   - opts: Configuration options. If nil, default options are used.
//   - logger: Logger to use. If nil, a Nop logger is used.
//   - tracerProvider: OpenTelemetry tracer provider to use. If nil, global TracerProvider is used.
//   - meterProvider: OpenTelemetry meter provider to use. If nil, global MeterProvider is used.
//
// # Return
//
// The new connection or an error if:
//   - The URL is invalid (SyntaxError)
//   - loop or conn is nil, or options are invalid
//   - The opening handshake could not be scheduled on the owner loop
func New(
	loop *taskloop.Loop,
	rawUrl string,
	conn wsadapters.WebsocketConnectionAdapterInterface,
	opts *WebsocketOptions,
	logger *zap.Logger,
	tracerProvider trace.TracerProvider,
	meterProvider metric.MeterProvider) (*WebSocket, error) {
	if loop == nil {
		return nil, fmt.Errorf("provided loop is nil")
	}
	if conn == nil {
		return nil, wsadapters.ErrNilAdapter
	}
	target, err := parseUrl(rawUrl)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = NewWebsocketOptions()
	}
	if err := Validate(opts); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	// Decorate provided connection adapter if needed
	_, ok := conn.(*wsadapters.WebsocketConnectionAdapterInstrumentationDecorator)
	if !ok {
		conn, err = wsadapters.NewWebsocketConnectionAdapterInstrumentationDecorator(conn, tracerProvider)
		if err != nil {
			return nil, err
		}
	}
	meter := meterProvider.Meter(pkgName, metric.WithInstrumentationVersion(pkgVersion))
	transitions, err := meter.Int64Counter(metricTransitions,
		metric.WithDescription("Number of websocket ready state transitions"))
	if err != nil {
		return nil, err
	}
	fired, err := meter.Int64Counter(metricEvents,
		metric.WithDescription("Number of websocket events fired"))
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	ws := &WebSocket{
		EventTarget: events.NewEventTarget(logger, tracerProvider),
		id:          id,
		url:         target,
		conn:        conn,
		opts:        opts,
		logger: logger.With(
			zap.String("connection", id.String()),
			zap.String("url", target.String())),
		tracer:             tracerProvider.Tracer(pkgName, trace.WithInstrumentationVersion(pkgVersion)),
		transitionsCounter: transitions,
		eventsCounter:      fired,
	}
	ws.readyState.Store(uint32(Connecting))
	ws.handle = taskloop.NewHandle(loop, ws)
	// Schedule the opening handshake
	err = ws.handle.Post(&lifecycleTask{handle: ws.handle.Clone(), op: opOpen})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule the opening handshake: %w", err)
	}
	ws.logger.Debug("opening handshake scheduled")
	return ws, nil
}

// Return the unique identifier of the connection.
func (ws *WebSocket) Id() uuid.UUID {
	return ws.id
}

// Return the connection URL.
func (ws *WebSocket) URL() string {
	return ws.url.String()
}

// Return the current ready state.
func (ws *WebSocket) ReadyState() ReadyState {
	return ReadyState(ws.readyState.Load())
}

// Set the handler attribute invoked when the connection opens. A nil handler clears it.
func (ws *WebSocket) OnOpen(handler events.Listener) {
	ws.SetEventHandler(events.EventOpen, handler)
}

// Set the handler attribute invoked when the connection closes. A nil handler clears it.
func (ws *WebSocket) OnClose(handler events.Listener) {
	ws.SetEventHandler(events.EventClose, handler)
}

// Set the handler attribute invoked when the connection fails. A nil handler clears it.
func (ws *WebSocket) OnError(handler events.Listener) {
	ws.SetEventHandler(events.EventError, handler)
}

// # Description
//
// Request the connection to be closed. Close never waits for the closing handshake: listen to
// the close event to know when the connection is closed.
//
//   - Connecting: the state is set to Closing and the connection is dropped once the pending
//     opening handshake completes. No open event is fired.
//   - Open: the closing handshake is scheduled on the owner loop. Only the first call schedules
//     it. If no code is provided, 1000 is sent.
//   - Closing or Closed: nothing happens.
//
// # Inputs
//
//   - opts: WithCode and WithReason options.
//
// # Return
//
// nil on success. InvalidAccessError if the code is neither 1000 nor in range [3000, 4999],
// SyntaxError if the reason is longer than 123 bytes. When the connection is open and the
// closing handshake cannot be posted to the owner loop, an error wrapping the loop error is
// returned (taskloop.ErrLoopStopped or taskloop.LoopFullError) and a later call can retry. The
// state is not changed when an error is returned.
func (ws *WebSocket) Close(opts ...CloseOption) error {
	req := &closeRequest{}
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	ctx, span := ws.tracer.Start(context.Background(), spanClose,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(attrConnectionId, ws.id.String()),
			attribute.Int(attrCloseCode, int(req.code)),
			attribute.String(attrCloseReason, req.reason),
		))
	defer span.End()
	// Validate request
	if req.hasCode && !isValidCloseCode(req.code) {
		return handleError(InvalidAccessError{Code: req.code}, span, codes.Error, "invalid close code")
	}
	if len(req.reason) > maxCloseReasonLength {
		err := SyntaxError{Message: fmt.Sprintf("close reason is %d bytes long, maximum is %d", len(req.reason), maxCloseReasonLength)}
		return handleError(err, span, codes.Error, "invalid close reason")
	}
	ws.closeMu.Lock()
	defer ws.closeMu.Unlock()
	for {
		switch ws.ReadyState() {
		case Connecting:
			// Record request for the pending opening handshake
			ws.pendingClose.Store(req)
			if ws.transition(ctx, Connecting, Closing) {
				ws.logger.Info("close requested while connecting")
				return handlePotentialError(nil, span)
			}
			// Opening handshake completed meanwhile
			ws.pendingClose.Store(nil)
		case Open:
			if !ws.closeScheduled.CompareAndSwap(false, true) {
				return handlePotentialError(nil, span)
			}
			err := ws.handle.Post(&lifecycleTask{handle: ws.handle.Clone(), op: opClose, request: req})
			if err != nil {
				ws.closeScheduled.Store(false)
				return handlePotentialError(fmt.Errorf("failed to schedule the closing handshake: %w", err), span)
			}
			ws.logger.Debug("closing handshake scheduled")
			return handlePotentialError(nil, span)
		default:
			// Closing or closed
			return handlePotentialError(nil, span)
		}
	}
}

/*************************************************************************************************/
/* UTILS                                                                                         */
/*************************************************************************************************/

// Parse and check the connection URL.
func parseUrl(rawUrl string) (*url.URL, error) {
	target, err := url.Parse(rawUrl)
	if err != nil {
		return nil, SyntaxError{Message: "invalid url", Err: err}
	}
	if target.Scheme != "ws" && target.Scheme != "wss" {
		return nil, SyntaxError{Message: fmt.Sprintf("url scheme must be ws or wss, got %q", target.Scheme)}
	}
	if target.Host == "" {
		return nil, SyntaxError{Message: "url has no host"}
	}
	if target.Fragment != "" || target.RawFragment != "" {
		return nil, SyntaxError{Message: "url must not contain a fragment"}
	}
	return target, nil
}

// A close code is valid if it is 1000 or in the range reserved for applications.
func isValidCloseCode(code uint16) bool {
	return code == uint16(wsadapters.NormalClosure) ||
		(code >= uint16(wsadapters.ApplicationCodesStart) && code <= uint16(wsadapters.ApplicationCodesEnd))
}

// Move the ready state from one state to another. Return false if the state is not from.
func (ws *WebSocket) transition(ctx context.Context, from ReadyState, to ReadyState) bool {
	if !ws.readyState.CompareAndSwap(uint32(from), uint32(to)) {
		return false
	}
	ws.recordTransition(ctx, from, to)
	return true
}

// Move the ready state forward to the provided state. Return false if the state is already
// equal or past it.
func (ws *WebSocket) advance(ctx context.Context, to ReadyState) bool {
	for {
		from := ws.ReadyState()
		if from >= to {
			return false
		}
		if ws.readyState.CompareAndSwap(uint32(from), uint32(to)) {
			ws.recordTransition(ctx, from, to)
			return true
		}
	}
}

// Log, count and trace a ready state transition.
func (ws *WebSocket) recordTransition(ctx context.Context, from ReadyState, to ReadyState) {
	ws.logger.Info("ready state changed", zap.Stringer("from", from), zap.Stringer("state", to))
	attrs := []attribute.KeyValue{
		attribute.String(attrStateFrom, from.String()),
		attribute.String(attrStateTo, to.String()),
	}
	ws.transitionsCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	trace.SpanFromContext(ctx).AddEvent(eventStateChanged, trace.WithAttributes(attrs...))
}

// Dispatch an event to the listeners. Owner loop only.
func (ws *WebSocket) fire(ctx context.Context, event *events.Event) {
	ws.logger.Debug("firing event", zap.Stringer("event", event))
	attr := attribute.String(attrEventType, string(event.Type))
	ws.eventsCounter.Add(ctx, 1, metric.WithAttributes(attr))
	trace.SpanFromContext(ctx).AddEvent(eventFired, trace.WithAttributes(attr))
	ws.Dispatch(ctx, event)
}
