package wsadapters

// Constants used for tracing purpose
const (
	// Instrumentation library package name
	pkgName = "gowsconn.wsadapters"
	// Instrumentation library package version
	pkgVersion = "0.0.0"
	// Namespace used by the spans, attributes and events
	namespace = "websocket"
	// Name of the span used to instrument Dial method call
	spanDial = namespace + "." + "dial"
	// Name of the span used to instrument Close method call
	spanClose = namespace + "." + "close"

	// Name of the attribute used to provide a url
	attrUrl = "url.full"
	// Name of the attribute used to provide the HTTP status code of the handshake response
	attrHttpStatusCode = "http.status_code"
	// Name of the attribute used to provide a close connection code
	attrCloseCode = namespace + "." + "close.code"
	// Name of the attribute used to provide a close connection reason
	attrCloseReason = namespace + "." + "close.reason"
)
