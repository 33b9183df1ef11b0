package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// UDPConfig parameterizes the UDP transport.
type UDPConfig struct {
	BindAddress string
	RemoteAddr  string
	BufferSize  int
}

// UDPTransport exchanges media frames with the gateway over UDP. A
// receive loop hands each datagram to a pool of workers so a slow
// handler cannot stall the socket.
type UDPTransport struct {
	config  UDPConfig
	logger  *slog.Logger
	handler FrameHandler

	conn   *net.UDPConn
	remote *net.UDPAddr

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	frameChan chan []byte

	framesReceived uint64
	framesDropped  uint64
	mu             sync.RWMutex
}

// NewUDPTransport creates a UDP transport delivering received frames to
// the handler.
func NewUDPTransport(config UDPConfig, handler FrameHandler, logger *slog.Logger) *UDPTransport {
	ctx, cancel := context.WithCancel(context.Background())

	return &UDPTransport{
		config:    config,
		logger:    logger,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		frameChan: make(chan []byte, 1000),
	}
}

// Start binds the local socket and begins receiving.
func (t *UDPTransport) Start() error {
	local, err := net.ResolveUDPAddr("udp", t.config.BindAddress)
	if err != nil {
		return fmt.Errorf("failed to resolve bind address: %w", err)
	}

	remote, err := net.ResolveUDPAddr("udp", t.config.RemoteAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve remote address: %w", err)
	}
	t.remote = remote

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}
	t.conn = conn

	if err := t.conn.SetReadBuffer(t.config.BufferSize); err != nil {
		t.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("buffer_size", t.config.BufferSize),
			slog.String("error", err.Error()),
		)
	}

	t.logger.Info("UDP transport started",
		slog.String("bind_address", local.String()),
		slog.String("remote_addr", remote.String()),
		slog.Int("buffer_size", t.config.BufferSize),
	)

	numWorkers := 4
	for i := 0; i < numWorkers; i++ {
		t.wg.Add(1)
		go t.frameWorker(i)
	}

	t.wg.Add(1)
	go t.receiveLoop()

	return nil
}

// Send transmits one frame to the gateway.
func (t *UDPTransport) Send(data []byte) error {
	if t.conn == nil {
		return fmt.Errorf("transport not started")
	}
	if _, err := t.conn.WriteToUDP(data, t.remote); err != nil {
		return fmt.Errorf("failed to send UDP frame: %w", err)
	}
	return nil
}

// Stop gracefully stops the transport.
func (t *UDPTransport) Stop() error {
	t.logger.Info("Stopping UDP transport...")

	t.cancel()

	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			t.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	close(t.frameChan)
	t.wg.Wait()

	t.mu.RLock()
	received := t.framesReceived
	dropped := t.framesDropped
	t.mu.RUnlock()

	t.logger.Info("UDP transport stopped",
		slog.Uint64("frames_received", received),
		slog.Uint64("frames_dropped", dropped),
	)

	return nil
}

// receiveLoop is the main datagram receiving loop
func (t *UDPTransport) receiveLoop() {
	defer t.wg.Done()

	buffer := make([]byte, t.config.BufferSize)

	for {
		select {
		case <-t.ctx.Done():
			return
		default:
		}

		// Deadline keeps the loop responsive to shutdown.
		if err := t.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			t.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, _, err := t.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}

			select {
			case <-t.ctx.Done():
				return
			default:
				t.logger.Error("Failed to read UDP frame", slog.String("error", err.Error()))
				continue
			}
		}

		t.mu.Lock()
		t.framesReceived++
		t.mu.Unlock()

		// The read buffer is reused, so hand workers a copy.
		frame := make([]byte, n)
		copy(frame, buffer[:n])

		select {
		case t.frameChan <- frame:
		default:
			t.mu.Lock()
			t.framesDropped++
			t.mu.Unlock()

			t.logger.Warn("Frame queue full, dropping frame",
				slog.Int("frame_size", n),
			)
		}
	}
}

// frameWorker processes frames from the frame channel
func (t *UDPTransport) frameWorker(workerID int) {
	defer t.wg.Done()

	t.logger.Debug("Frame worker started", slog.Int("worker_id", workerID))

	for frame := range t.frameChan {
		t.handler.HandleFrame(frame)
	}

	t.logger.Debug("Frame worker stopped", slog.Int("worker_id", workerID))
}
