package websocket

import (
	"github.com/go-playground/validator/v10"
)

// Defines configuration options for a websocket connection.
//
// Use the factory function to get a new instance of the struct with nice defaults and then modify
// settings using With*** methods.
type WebsocketOptions struct {
	// Timeout (milliseconds) for the opening handshake. A timeout is a handshake failure.
	//
	// Defaults to 30000 ms. Must be at least 0. 0 disables the timeout.
	HandshakeTimeoutMs int64 `validate:"gte=0"`
	// Timeout (milliseconds) for the closing handshake. When it expires, the connection is
	// dropped and the close event is not clean.
	//
	// Defaults to 5000 ms. Must be at least 0. 0 disables the timeout.
	CloseTimeoutMs int64 `validate:"gte=0"`
}

// # Description
//
// Set opts.HandshakeTimeoutMs and return the modified object. Method does not validate inputs.
//
// # Return
//
// The modified options.
func (opts *WebsocketOptions) WithHandshakeTimeoutMs(value int64) *WebsocketOptions {
	opts.HandshakeTimeoutMs = value
	return opts
}

// # Description
//
// Set opts.CloseTimeoutMs and return the modified object. Method does not validate inputs.
//
// # Return
//
// The modified options.
func (opts *WebsocketOptions) WithCloseTimeoutMs(value int64) *WebsocketOptions {
	opts.CloseTimeoutMs = value
	return opts
}

// # Description
//
// Factory which creates a new WebsocketOptions object with nice defaults.
//
// # Default settings
//
//   - HandshakeTimeoutMs = 30000 , opening handshake must complete within 30 seconds.
//   - CloseTimeoutMs = 5000 , closing handshake must complete within 5 seconds.
func NewWebsocketOptions() *WebsocketOptions {
	return &WebsocketOptions{
		HandshakeTimeoutMs: 30000,
		CloseTimeoutMs:     5000,
	}
}

// # Description
//
// Helper function which validates WebsocketOptions. Options are valid if opts is not nil and
// timeouts are greater or equal to 0.
//
// # Returns
//
// InvalidValidationError for bad values passed in and nil or ValidationErrors as error otherwise.
func Validate(opts *WebsocketOptions) error {
	return validator.New().Struct(opts)
}
