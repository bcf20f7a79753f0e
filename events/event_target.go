package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Callback invoked when an event is dispatched.
type Listener func(ctx context.Context, event *Event)

// A registered listener
type registration struct {
	id       uuid.UUID
	listener Listener
}

// Event target which maps event types to a handler attribute and a list of listeners.
//
// Dispatch invokes the handler attribute first, then the listeners in registration order. The
// lists are copied before invocation: listeners can add or remove listeners while being invoked.
type EventTarget struct {
	// Handler attributes (onopen, onclose, onerror)
	handlers map[EventType]Listener
	// Registered listeners
	listeners map[EventType][]registration
	// Mutex protecting handlers and listeners
	mu sync.RWMutex
	// Tracer
	tracer trace.Tracer
	// Logger
	logger *zap.Logger
}

// # Description
//
// Factory which creates a new EventTarget without any listener.
//
// # Inputs
//
//   - logger: Logger used to report panicking listeners. If nil, a Nop logger is used.
//   - tracerProvider: Tracer provider used to trace dispatches. If nil, the global tracer
//     provider is used.
//
// # Returns
//
// A new EventTarget.
func NewEventTarget(logger *zap.Logger, tracerProvider trace.TracerProvider) *EventTarget {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	return &EventTarget{
		handlers:  make(map[EventType]Listener),
		listeners: make(map[EventType][]registration),
		mu:        sync.RWMutex{},
		tracer:    tracerProvider.Tracer(pkgName, trace.WithInstrumentationVersion(pkgVersion)),
		logger:    logger,
	}
}

// # Description
//
// Register a listener for the provided event type.
//
// # Returns
//
// The ID of the registration which can be used to remove the listener. uuid.Nil is returned
// and nothing is registered when listener is nil.
func (target *EventTarget) AddEventListener(eventType EventType, listener Listener) uuid.UUID {
	if listener == nil {
		return uuid.Nil
	}
	id := uuid.New()
	target.mu.Lock()
	defer target.mu.Unlock()
	target.listeners[eventType] = append(target.listeners[eventType], registration{id: id, listener: listener})
	return id
}

// # Description
//
// Remove the listener registered with the provided ID.
//
// # Returns
//
// True if a listener has been removed.
func (target *EventTarget) RemoveEventListener(eventType EventType, id uuid.UUID) bool {
	target.mu.Lock()
	defer target.mu.Unlock()
	regs := target.listeners[eventType]
	for i, reg := range regs {
		if reg.id == id {
			// Build a new slice: snapshots taken by ongoing dispatches must not change
			updated := make([]registration, 0, len(regs)-1)
			updated = append(updated, regs[:i]...)
			updated = append(updated, regs[i+1:]...)
			target.listeners[eventType] = updated
			return true
		}
	}
	return false
}

// Set the handler attribute for the provided event type. A nil handler clears the attribute.
func (target *EventTarget) SetEventHandler(eventType EventType, handler Listener) {
	target.mu.Lock()
	defer target.mu.Unlock()
	if handler == nil {
		delete(target.handlers, eventType)
		return
	}
	target.handlers[eventType] = handler
}

// Get the handler attribute for the provided event type. Nil if not set.
func (target *EventTarget) EventHandler(eventType EventType) Listener {
	target.mu.RLock()
	defer target.mu.RUnlock()
	return target.handlers[eventType]
}

// # Description
//
// Dispatch the event: the handler attribute is invoked first, then the listeners in
// registration order. A panicking listener is logged and does not prevent the next ones from
// being invoked.
//
// # Inputs
//
//   - ctx: Context passed to the listeners.
//   - event: Event to dispatch. Nothing happens if nil.
//
// # Returns
//
// The number of invoked listeners, handler attribute included.
func (target *EventTarget) Dispatch(ctx context.Context, event *Event) int {
	if event == nil {
		return 0
	}
	// Snapshot listeners
	target.mu.RLock()
	invoked := make([]Listener, 0, len(target.listeners[event.Type])+1)
	if handler, ok := target.handlers[event.Type]; ok {
		invoked = append(invoked, handler)
	}
	for _, reg := range target.listeners[event.Type] {
		invoked = append(invoked, reg.listener)
	}
	target.mu.RUnlock()
	ctx, span := target.tracer.Start(ctx, spanDispatch,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(attrEventType, string(event.Type)),
			attribute.Int(attrListenerCount, len(invoked)),
		))
	defer span.End()
	for _, listener := range invoked {
		if err := target.invoke(ctx, listener, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, codes.Error.String())
			target.logger.Error("event listener panicked",
				zap.String("event", string(event.Type)),
				zap.Error(err))
		}
	}
	return len(invoked)
}

// Invoke the listener and convert a panic into an error.
func (target *EventTarget) invoke(ctx context.Context, listener Listener, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	listener(ctx, event)
	return nil
}
