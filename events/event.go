// This package contains a minimal event target: typed events are dispatched to an optional
// handler attribute and to the listeners registered for the event type.
package events

import (
	"fmt"
	"time"
)

// Type of an event
type EventType string

// Event types fired by a websocket connection
const (
	// Fired once the opening handshake has succeeded
	EventOpen EventType = "open"
	// Fired once the connection is closed
	EventClose EventType = "close"
	// Fired when the connection could not be established
	EventError EventType = "error"
)

// An event dispatched to listeners.
type Event struct {
	// Event type
	Type EventType
	// Time the event has been created
	Timestamp time.Time
	// Close status code. Only set for close events.
	Code uint16
	// Close reason. Only set for close events.
	Reason string
	// Whether the closing handshake has completed. Only set for close events.
	WasClean bool
	// Error which caused the event. Only set for error events.
	Err error
}

// Create a new open event.
func NewOpenEvent() *Event {
	return &Event{Type: EventOpen, Timestamp: time.Now()}
}

// Create a new close event.
func NewCloseEvent(code uint16, reason string, wasClean bool) *Event {
	return &Event{
		Type:      EventClose,
		Timestamp: time.Now(),
		Code:      code,
		Reason:    reason,
		WasClean:  wasClean,
	}
}

// Create a new error event.
func NewErrorEvent(err error) *Event {
	return &Event{Type: EventError, Timestamp: time.Now(), Err: err}
}

func (e *Event) String() string {
	switch e.Type {
	case EventClose:
		return fmt.Sprintf("%s (code: %d, reason: %q, clean: %t)", e.Type, e.Code, e.Reason, e.WasClean)
	case EventError:
		return fmt.Sprintf("%s (%v)", e.Type, e.Err)
	default:
		return string(e.Type)
	}
}
