// Package bridge implements the remote-control bridge: a WebSocket endpoint
// that feeds TV remote key codes and host-shell messages into the
// controller, and reports navigation state back.
//
// # Messages
//
// All messages are JSON text frames with a "type" field.
//
// Inbound:
//
//	{"type":"KEY","keyCode":39,"action":"down"}        raw key code; action is down, up or press
//	{"type":"TV_EVENT","eventType":"select"}           D-pad event name, mapped to a key code
//	{"type":"BACK_PRESSED"}                            hardware BACK of the host shell
//	{"type":"GET_DEVICE_INFO"}                         answered with DEVICE_INFO
//	{"type":"LOG","message":"..."}                     written to the log
//
// Outbound:
//
//	{"type":"DEVICE_INFO","deviceCode":"ABCD2345","platform":"vega","brand":"Amazon Fire TV"}
//	{"type":"NAVIGATION_STATE","screen":"liveTv","canGoBack":true}
//	{"type":"EXIT_APP"}
//
// Malformed JSON and unknown types are logged and dropped; the connection
// stays open.
//
// # Endpoints
//
//	/remote    WebSocket
//	/healthz   liveness, with the number of connected remotes
//
// The Server is safe for concurrent use. Each connection has a reader and a
// writer goroutine; Shutdown closes every connection and waits for them.
package bridge
