package wsadapters

/*************************************************************************************************/
/* WEBSOCKET RELATED CONSTANTS                                                                   */
/*************************************************************************************************/

// Close status codes. Values are the RFC6455 codes so any uint16 code, application codes in the
// 3000-4999 range included, can be converted to and from StatusCode.
//
// RFC: https://www.rfc-editor.org/rfc/rfc6455.html#section-7.4.1
//
// Code names are inspired by: https://www.iana.org/assignments/websocket/websocket.xhtml
type StatusCode int

const (
	// 1000 indicates a normal closure, meaning that the purpose for
	// which the connection was established has been fulfilled.
	NormalClosure StatusCode = 1000
	// 1001 indicates that an endpoint is "going away", such as a server
	// going down or a browser having navigated away from a page.
	GoingAway StatusCode = 1001
	// 1002 indicates that an endpoint is terminating the connection due
	// to a protocol error.
	ProtocolError StatusCode = 1002
	// 1005 is reserved and MUST NOT be set in a Close control frame. Used when no status code
	// was actually present.
	NoStatusReceived StatusCode = 1005
	// 1006 is reserved and MUST NOT be set in a Close control frame. Used when the connection
	// was closed abnormally, without sending or receiving a Close control frame.
	AbnormalClosure StatusCode = 1006
	// 1011 indicates that a server is terminating the connection because
	// it encountered an unexpected condition that prevented it from
	// fulfilling the request.
	InternalError StatusCode = 1011
	// 1015 is reserved and MUST NOT be set in a Close control frame. Used when the connection
	// was closed due to a failure to perform a TLS handshake.
	TLSHandshake StatusCode = 1015
	// First code of the range reserved for use by libraries, frameworks and applications.
	ApplicationCodesStart StatusCode = 3000
	// Last code of the private use range.
	ApplicationCodesEnd StatusCode = 4999
)
