// Package transport moves framed media between the engine and the media
// gateway. It provides UDP and WebSocket transports behind a common
// interface and a dispatcher that routes received frames into call
// sessions.
package transport
