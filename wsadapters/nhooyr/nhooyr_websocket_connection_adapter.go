// Package which contains a WebsocketConnectionAdapterInterface implementation for
// nhooyr/websocket library (https://github.com/nhooyr/websocket).
package wsadapternhooyr

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/gbdevw/gowsconn/wsadapters"
	"nhooyr.io/websocket"
)

// Adapter for nhooyr/websocket library
type NhooyrWebsocketConnectionAdapter struct {
	// Underlying websocket connection
	conn *websocket.Conn
	// Dial options to use when opening a connection
	opts *websocket.DialOptions
	// Internal mutex
	mu sync.Mutex
}

// # Description
//
// Factory which creates a new NhooyrWebsocketConnectionAdapter.
//
// # Inputs
//
//   - opts: Optional dial options to use when calling Dial method. Can be nil.
//
// # Returns
//
// New NhooyrWebsocketConnectionAdapter
func NewNhooyrWebsocketConnectionAdapter(opts *websocket.DialOptions) *NhooyrWebsocketConnectionAdapter {
	return &NhooyrWebsocketConnectionAdapter{
		conn: nil,
		opts: opts,
		mu:   sync.Mutex{},
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
func (adapter *NhooyrWebsocketConnectionAdapter) Dial(ctx context.Context, target url.URL) (*http.Response, error) {
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
		conn, res, err := websocket.Dial(ctx, target.String(), adapter.opts)
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
// Perform the closing handshake. The library sends the close message and waits for the server
// close message on its own (no concurrent reader is needed). If ctx is done first, Close returns
// the context error while the library finishes the handshake with its own timeout.
//
// # Inputs
//
//   - ctx: Context used for tracing/timeout purpose
//   - code: Status code to use in close message
//   - reason: Optional reason joined in close message. Can be empty.
//
// # Returns
//
//   - nil in case of success
//   - error: server unreachable, timeout, connection already closed, ...
func (adapter *NhooyrWebsocketConnectionAdapter) Close(ctx context.Context, code wsadapters.StatusCode, reason string) error {
	// Take the connection and void it in any case
	adapter.mu.Lock()
	conn := adapter.conn
	adapter.conn = nil
	adapter.mu.Unlock()
	if conn == nil {
		return wsadapters.ErrNotConnected
	}
	// Run the blocking handshake on a separate goroutine to honour ctx
	result := make(chan error, 1)
	go func() {
		result <- conn.Close(websocket.StatusCode(code), reason)
	}()
	select {
	case err := <-result:
		if err == nil {
			return nil
		}
		return wsadapters.WebsocketCloseError{Code: code, Reason: reason, Err: err}
	case <-ctx.Done():
		return wsadapters.WebsocketCloseError{Code: code, Reason: reason, Err: ctx.Err()}
	}
}
