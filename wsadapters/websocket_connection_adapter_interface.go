// The package defines an interface to adapt 3rd parties websocket libraries to the websocket
// connection lifecycle.
package wsadapters

import (
	"context"
	"net/http"
	"net/url"
)

// Interface which describes the adapter methods and behaviour that a websocket connection
// expects from the underlying websocket library.
//
// A connection uses an adapter from a single background goroutine at a time: Dial during the
// opening handshake and then, once the connection is open, Close during the closing handshake.
// Adapters must nevertheless be safe for concurrent use.
type WebsocketConnectionAdapterInterface interface {
	// # Description
	//
	// Dial opens a connection to the websocket server and performs a WebSocket handshake.
	//
	// # Expected behaviour
	//
	//	- Dial MUST block until websocket handshake is complete, the context is done or an error
	//	  occurs. TLS must be handled seamlessly by the adapter or the underlying library.
	//
	//	- Dial MUST NOT return the underlying websocket connection. The connection is kept
	//	  internally to be used later by Close.
	//
	//	- Dial MUST return an error in case a connection has already been established and Close
	//	  method has not been called yet.
	//
	// # Inputs
	//
	//	- ctx: Context used for tracing/timeout purpose
	//	- target: Target server URL
	//
	// # Returns
	//
	// The server response to websocket handshake or an error if any.
	Dial(ctx context.Context, target url.URL) (*http.Response, error)
	// # Description
	//
	// Perform the closing handshake: send a close message with the provided status code and
	// optional reason, wait for the server close message and drop the connection.
	//
	// # Expected behaviour
	//
	//	- Close MUST block until the server acknowledged the close message, an error occurs or
	//	  the context is done. In these two later cases, the connection MUST be dropped anyway.
	//	- Close MUST return ErrNotConnected in case no connection is established.
	//
	// # Inputs
	//
	//	- ctx: Context used for tracing/timeout purpose
	//	- code: Status code to use in close message
	//	- reason: Optional reason joined in close message. Can be empty.
	//
	// # Returns
	//
	//	- nil in case of success
	//	- error: server unreachable, timeout, connection already closed, ...
	Close(ctx context.Context, code StatusCode, reason string) error
}
