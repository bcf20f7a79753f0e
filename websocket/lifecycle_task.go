package websocket

import (
	"context"
	"time"

	"github.com/gbdevw/gowsconn/events"
	"github.com/gbdevw/gowsconn/taskloop"
	"github.com/gbdevw/gowsconn/wsadapters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Lifecycle operation performed by a lifecycleTask
type operation int

const (
	// Opening handshake
	opOpen operation = iota
	// Closing handshake
	opClose
)

func (op operation) String() string {
	switch op {
	case opOpen:
		return "open"
	case opClose:
		return "close"
	default:
		return "unknown"
	}
}

// Task run by the owner loop to drive the connection lifecycle.
//
// A task first starts the handshake on a background goroutine. The background goroutine then
// posts a completed task of the same operation carrying the handshake result.
type lifecycleTask struct {
	// Handle to the connection
	handle taskloop.Handle[WebSocket]
	// Operation to perform
	op operation
	// Close request. Only used by close operations.
	request *closeRequest
	// Whether the handshake has completed
	completed bool
	// Handshake result
	err error
}

// Run the task on the owner loop.
func (task *lifecycleTask) Run(scope *taskloop.Scope) {
	ws, err := task.handle.Resolve(scope)
	if err != nil {
		// Lifecycle tasks are only posted through the connection handle
		otel.Handle(err)
		return
	}
	switch {
	case task.op == opOpen && !task.completed:
		ws.startOpen(scope)
	case task.op == opOpen:
		ws.finishOpen(scope, task.err)
	case !task.completed:
		ws.startClose(scope, task.request)
	default:
		ws.finishClose(scope, task.request, task.err)
	}
}

/*************************************************************************************************/
/* OPENING HANDSHAKE                                                                             */
/*************************************************************************************************/

// Start the opening handshake in background unless Close has been called meanwhile.
func (ws *WebSocket) startOpen(scope *taskloop.Scope) {
	ctx, span := ws.startSpan(scope.Context(), spanLifecycleOpen, attribute.String(attrUrl, ws.URL()))
	defer span.End()
	if ws.ReadyState() != Connecting {
		// Close called before the handshake has started: do not connect
		ws.logger.Info("connection closed before the opening handshake started")
		ws.closeConnection(ctx, events.NewCloseEvent(uint16(wsadapters.AbnormalClosure), "", false))
		span.SetStatus(codes.Ok, codes.Ok.String())
		return
	}
	// Background work must not use the connection: copy what it needs
	conn := ws.conn
	target := *ws.url
	timeout := time.Duration(ws.opts.HandshakeTimeoutMs) * time.Millisecond
	handle := ws.handle.Clone()
	scope.Background(backgroundDial, func(ctx context.Context) taskloop.Task {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := conn.Dial(ctx, target)
		if res != nil && res.Body != nil {
			res.Body.Close()
		}
		return &lifecycleTask{handle: handle, op: opOpen, completed: true, err: err}
	})
	span.SetStatus(codes.Ok, codes.Ok.String())
}

// Process the opening handshake result.
func (ws *WebSocket) finishOpen(scope *taskloop.Scope, err error) {
	ctx, span := ws.startSpan(scope.Context(), spanLifecycleOpened, attribute.String(attrUrl, ws.URL()))
	defer span.End()
	if err != nil {
		connectErr := ConnectError{Url: ws.URL(), Err: err}
		handleError(connectErr, span, codes.Error, "opening handshake failed")
		ws.logger.Warn("opening handshake failed", zap.Error(err))
		ws.advance(ctx, Closed)
		ws.fire(ctx, events.NewErrorEvent(connectErr))
		ws.closeConnection(ctx, events.NewCloseEvent(uint16(wsadapters.AbnormalClosure), "", false))
		return
	}
	ws.session = ws.conn
	if ws.transition(ctx, Connecting, Open) {
		ws.logger.Info("connection open")
		ws.fire(ctx, events.NewOpenEvent())
		span.SetStatus(codes.Ok, codes.Ok.String())
		return
	}
	// Close was called while connecting: no open event, drop the session
	req := &closeRequest{code: uint16(wsadapters.GoingAway), hasCode: true}
	if pending := ws.pendingClose.Load(); pending != nil {
		if pending.hasCode {
			req.code = pending.code
		}
		req.reason = pending.reason
	}
	ws.logger.Info("close requested while connecting, dropping the connection", zap.Uint16("code", req.code))
	ws.closingHandshake(ctx, scope, req)
	span.SetStatus(codes.Ok, codes.Ok.String())
}

/*************************************************************************************************/
/* CLOSING HANDSHAKE                                                                             */
/*************************************************************************************************/

// Move to Closing and start the closing handshake in background.
func (ws *WebSocket) startClose(scope *taskloop.Scope, req *closeRequest) {
	ctx, span := ws.startSpan(scope.Context(), spanLifecycleClose)
	defer span.End()
	if !ws.transition(ctx, Open, Closing) {
		span.SetStatus(codes.Ok, codes.Ok.String())
		return
	}
	resolved := &closeRequest{code: uint16(wsadapters.NormalClosure), hasCode: true}
	if req != nil {
		if req.hasCode {
			resolved.code = req.code
		}
		resolved.reason = req.reason
	}
	ws.closingHandshake(ctx, scope, resolved)
	span.SetStatus(codes.Ok, codes.Ok.String())
}

// Close the session in background. The close request must carry a status code.
func (ws *WebSocket) closingHandshake(ctx context.Context, scope *taskloop.Scope, req *closeRequest) {
	session := ws.session
	ws.session = nil
	if session == nil {
		ws.closeConnection(ctx, events.NewCloseEvent(uint16(wsadapters.AbnormalClosure), "", false))
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int(attrCloseCode, int(req.code)),
		attribute.String(attrCloseReason, req.reason))
	timeout := time.Duration(ws.opts.CloseTimeoutMs) * time.Millisecond
	handle := ws.handle.Clone()
	scope.Background(backgroundClose, func(ctx context.Context) taskloop.Task {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := session.Close(ctx, wsadapters.StatusCode(req.code), req.reason)
		return &lifecycleTask{handle: handle, op: opClose, request: req, completed: true, err: err}
	})
}

// Process the closing handshake result.
func (ws *WebSocket) finishClose(scope *taskloop.Scope, req *closeRequest, err error) {
	ctx, span := ws.startSpan(scope.Context(), spanLifecycleClosed,
		attribute.Int(attrCloseCode, int(req.code)),
		attribute.String(attrCloseReason, req.reason))
	defer span.End()
	event := events.NewCloseEvent(req.code, req.reason, true)
	if err != nil {
		closeErr := CloseError{Code: req.code, Err: err}
		handleError(closeErr, span, codes.Error, "closing handshake failed")
		ws.logger.Warn("closing handshake failed", zap.Error(closeErr))
		event = events.NewCloseEvent(uint16(wsadapters.AbnormalClosure), "", false)
	} else {
		span.SetStatus(codes.Ok, codes.Ok.String())
	}
	ws.closeConnection(ctx, event)
}

/*************************************************************************************************/
/* UTILS                                                                                         */
/*************************************************************************************************/

// Move to Closed and fire the close event once.
func (ws *WebSocket) closeConnection(ctx context.Context, event *events.Event) {
	ws.advance(ctx, Closed)
	if ws.closeFired {
		return
	}
	ws.closeFired = true
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(attrWasClean, event.WasClean))
	ws.logger.Info("connection closed",
		zap.Uint16("code", event.Code),
		zap.String("reason", event.Reason),
		zap.Bool("clean", event.WasClean))
	ws.fire(ctx, event)
}

// Start a span bound to the connection.
func (ws *WebSocket) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(attrConnectionId, ws.id.String()))
	return ws.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}
