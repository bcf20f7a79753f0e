package websocket

import (
	"fmt"
)

/*************************************************************************************************/
/* INVALID ACCESS ERROR                                                                          */
/*************************************************************************************************/

// Error returned by Close when the provided status code is neither 1000 nor in the range
// reserved to applications [3000, 4999].
type InvalidAccessError struct {
	// Rejected status code
	Code uint16
}

func (err InvalidAccessError) Error() string {
	return fmt.Sprintf("invalid close code %d: code must be 1000 or in range [3000, 4999]", err.Code)
}

/*************************************************************************************************/
/* SYNTAX ERROR                                                                                  */
/*************************************************************************************************/

// Error returned when a URL or a close reason is malformed.
type SyntaxError struct {
	// Description of the problem
	Message string
	// Underlying error, if any
	Err error
}

func (err SyntaxError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("syntax error: %s: %v", err.Message, err.Err)
	}
	return fmt.Sprintf("syntax error: %s", err.Message)
}

func (err SyntaxError) Unwrap() error {
	return err.Err
}

/*************************************************************************************************/
/* CONNECT ERROR                                                                                 */
/*************************************************************************************************/

// Error carried by the error event when the opening handshake fails.
type ConnectError struct {
	// Target URL
	Url string
	// Error returned by the connection adapter
	Err error
}

func (err ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", err.Url, err.Err)
}

func (err ConnectError) Unwrap() error {
	return err.Err
}

/*************************************************************************************************/
/* CLOSE ERROR                                                                                   */
/*************************************************************************************************/

// Error reported when the closing handshake fails. It is logged and traced, never returned: the
// connection is closed anyway and the close event is not clean.
type CloseError struct {
	// Status code sent in the close message
	Code uint16
	// Error returned by the connection adapter
	Err error
}

func (err CloseError) Error() string {
	return fmt.Sprintf("closing handshake with code %d failed: %v", err.Code, err.Err)
}

func (err CloseError) Unwrap() error {
	return err.Err
}
