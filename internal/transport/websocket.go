package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig parameterizes the WebSocket transport.
type WebSocketConfig struct {
	URL string // ws:// or wss:// endpoint of the media gateway
}

// WebSocketTransport exchanges media frames with the gateway as binary
// WebSocket messages over a single dialed connection.
type WebSocketTransport struct {
	config  WebSocketConfig
	logger  *slog.Logger
	handler FrameHandler

	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla permits one concurrent writer

	done   chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewWebSocketTransport creates a WebSocket transport delivering received
// frames to the handler.
func NewWebSocketTransport(config WebSocketConfig, handler FrameHandler, logger *slog.Logger) *WebSocketTransport {
	return &WebSocketTransport{
		config:  config,
		logger:  logger,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Start dials the gateway and begins receiving.
func (t *WebSocketTransport) Start() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.Dial(t.config.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", t.config.URL, err)
	}
	t.conn = conn

	t.logger.Info("WebSocket transport connected",
		slog.String("url", t.config.URL),
	)

	go t.readLoop()

	return nil
}

// Send transmits one frame as a binary message.
func (t *WebSocketTransport) Send(data []byte) error {
	if t.conn == nil {
		return fmt.Errorf("transport not started")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to send WebSocket frame: %w", err)
	}
	return nil
}

// Stop closes the connection and waits for the read loop to finish.
func (t *WebSocketTransport) Stop() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.logger.Info("Stopping WebSocket transport...")

	if t.conn != nil {
		t.writeMu.Lock()
		err := t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.writeMu.Unlock()
		if err != nil {
			t.logger.Debug("Error sending close message", slog.String("error", err.Error()))
		}

		if err := t.conn.Close(); err != nil {
			t.logger.Warn("Error closing WebSocket connection", slog.String("error", err.Error()))
		}

		<-t.done
	}

	t.logger.Info("WebSocket transport stopped")
	return nil
}

// readLoop receives binary messages until the connection closes.
func (t *WebSocketTransport) readLoop() {
	defer close(t.done)

	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()

			if !closed {
				t.logger.Error("WebSocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		if msgType != websocket.BinaryMessage {
			t.logger.Debug("Ignoring non-binary message",
				slog.Int("message_type", msgType),
			)
			continue
		}

		t.handler.HandleFrame(data)
	}
}
