package websocket

// Readiness state of a websocket connection. The state only moves forward:
// Connecting -> Open -> Closing -> Closed or Connecting -> Closing -> Closed.
type ReadyState uint32

const (
	// The opening handshake has not completed yet
	Connecting ReadyState = 0
	// The opening handshake has succeeded
	Open ReadyState = 1
	// The closing handshake has been requested
	Closing ReadyState = 2
	// The connection is closed or could not be opened
	Closed ReadyState = 3
)

func (state ReadyState) String() string {
	switch state {
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
