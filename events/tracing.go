package events

// Constants used for tracing purpose
const (
	// Package name used by library tracer
	pkgName = "gowsconn.events"
	// Package version
	pkgVersion = "0.0.0"
	// Namespace used by spans and attributes
	namespace = "events"

	// Name of the span used to trace an event dispatch
	spanDispatch = namespace + ".dispatch"

	// Attribute used to store the type of the dispatched event
	attrEventType = namespace + ".type"
	// Attribute used to store the number of invoked listeners
	attrListenerCount = namespace + ".listener_count"
)
