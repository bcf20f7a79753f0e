// Package which contains a WebsocketConnectionAdapterInterface implementation for
// gorilla/websocket library (https://github.com/gorilla/websocket).
package wsadaptergorilla

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gbdevw/gowsconn/wsadapters"
	"github.com/gorilla/websocket"
)

// Delay used to complete the closing handshake when the provided context has no deadline.
const defaultCloseTimeout = 5 * time.Second

// Adapter for gorilla/websocket library
type GorillaWebsocketConnectionAdapter struct {
	// Underlying websocket connection
	conn *websocket.Conn
	// Dialer to use when opening a connection
	dialer *websocket.Dialer
	// Headers to use when opening a connection
	requestHeader http.Header
	// Internal mutex
	mu sync.Mutex
}

// # Description
//
// Factory which creates a new GorillaWebsocketConnectionAdapter.
//
// # Inputs
//
//   - dialer: Optional dialer to use when using Dial method. If nil, the default dialer
//     defined by gorilla library will be used.
//
//   - requestHeader: Headers which will be used during Dial to specify the origin (Origin) and
//     cookies (Cookie). Can be nil.
//
// # Returns
//
// New GorillaWebsocketConnectionAdapter
func NewGorillaWebsocketConnectionAdapter(dialer *websocket.Dialer, requestHeader http.Header) *GorillaWebsocketConnectionAdapter {
	if dialer == nil {
		// Use default dialer if nil
		dialer = websocket.DefaultDialer
	}
	return &GorillaWebsocketConnectionAdapter{
		conn:          nil,
		dialer:        dialer,
		requestHeader: requestHeader,
		mu:            sync.Mutex{},
	}
}

// # Description
//
// Dial opens a connection to the websocket server and performs a WebSocket handshake.
//
// # Inputs
//
//   - ctx: Context used for tracing/timeout purpose
//   - target: Target server URL
//
// # Returns
//
// The server response to websocket handshake or an error if any.
func (adapter *GorillaWebsocketConnectionAdapter) Dial(ctx context.Context, target url.URL) (*http.Response, error) {
	select {
	case <-ctx.Done():
		// Shortcut if context is done (timeout/cancel)
		return nil, ctx.Err()
	default:
		// Lock internal mutex before accessing internal state
		adapter.mu.Lock()
		defer adapter.mu.Unlock()
		// Check whether there is already a connection set
		if adapter.conn != nil {
			return nil, wsadapters.ErrAlreadyConnected
		}
		// Open websocket connection
		conn, res, err := adapter.dialer.DialContext(ctx, target.String(), adapter.requestHeader)
		if err != nil {
			// Return response and error
			return res, err
		}
		// Persist connection internally and return
		adapter.conn = conn
		return res, nil
	}
}

// # Description
//
// Perform the closing handshake: write a close message, then read and discard incoming messages
// until the server close message is received. The connection is dropped in any case.
//
// # Inputs
//
//   - ctx: Context used for tracing/timeout purpose. If ctx has no deadline, the handshake must
//     complete within 5 seconds.
//   - code: Status code to use in close message
//   - reason: Optional reason joined in close message. Can be empty.
//
// # Returns
//
//   - nil in case of success
//   - error: server unreachable, timeout, connection already closed, ...
func (adapter *GorillaWebsocketConnectionAdapter) Close(ctx context.Context, code wsadapters.StatusCode, reason string) error {
	// Take the connection and void it in any case
	adapter.mu.Lock()
	conn := adapter.conn
	adapter.conn = nil
	adapter.mu.Unlock()
	if conn == nil {
		return wsadapters.ErrNotConnected
	}
	defer conn.Close()
	deadline, ctxDeadline := ctx.Deadline()
	if !ctxDeadline {
		deadline = time.Now().Add(defaultCloseTimeout)
	}
	// Send close message
	err := conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(int(code), reason), deadline)
	if err != nil {
		return wsadapters.WebsocketCloseError{Code: code, Reason: reason, Err: err}
	}
	// Drop the connection if ctx is canceled while waiting for the server close message
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	// Wait for the server close message
	if err := conn.SetReadDeadline(deadline); err != nil {
		return wsadapters.WebsocketCloseError{Code: code, Reason: reason, Err: err}
	}
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			// Discard data messages received before the close message
			continue
		}
		closeErr := new(websocket.CloseError)
		if errors.As(err, &closeErr) {
			return nil
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		} else if ctxDeadline && errors.Is(err, os.ErrDeadlineExceeded) {
			// Read deadline is the ctx deadline
			err = context.DeadlineExceeded
		}
		return wsadapters.WebsocketCloseError{Code: code, Reason: reason, Err: err}
	}
}
