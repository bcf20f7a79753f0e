package wsadapters

import (
	"errors"
	"fmt"
)

var (
	// Returned by Dial when a connection is already established.
	ErrAlreadyConnected = errors.New("a connection has already been established")
	// Returned by Close when no connection is established.
	ErrNotConnected = errors.New("no connection is established")
	// Returned when a nil adapter is provided.
	ErrNilAdapter = errors.New("provided adapter is nil")
)

/*************************************************************************************************/
/* WEBSOCKET CLOSE ERROR                                                                         */
/*************************************************************************************************/

// Error returned by Close when the closing handshake did not complete: the server did not
// acknowledge the close message, replied with an unexpected message or the connection failed.
type WebsocketCloseError struct {
	// Status code sent in the close message.
	//
	// https://www.rfc-editor.org/rfc/rfc6455.html#section-7.1.5
	Code StatusCode
	// Close reason sent in the close message.
	//
	// https://www.rfc-editor.org/rfc/rfc6455.html#section-7.1.6
	Reason string
	// Embedded error returned by the underlying websocket library, if any.
	Err error
}

func (err WebsocketCloseError) Error() string {
	return fmt.Sprintf("closing handshake failed: %d - %s: %v", err.Code, err.Reason, err.Err)
}

func (err WebsocketCloseError) Unwrap() error {
	return err.Err
}
