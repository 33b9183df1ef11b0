package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/outbound-ai/softphone-media/internal/config"
	"github.com/outbound-ai/softphone-media/internal/engine"
	"github.com/outbound-ai/softphone-media/internal/metrics"
	"github.com/outbound-ai/softphone-media/internal/server"
	"github.com/outbound-ai/softphone-media/internal/session"
	"github.com/outbound-ai/softphone-media/internal/transport"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "softphone-media"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	playback := flag.Bool("playback", false, "Play received call audio through the system output")
	toneHz := flag.Float64("tone", 0, "Send a test tone of the given frequency instead of silence")
	flag.Parse()

	// Load configuration, falling back to defaults when no file exists
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("transport", cfg.Network.Transport),
		slog.String("remote_addr", cfg.Network.RemoteAddr),
		slog.String("bind_address", cfg.Network.BindAddress),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("block_size", cfg.Audio.BlockSize),
		slog.Int("queue_window_ms", cfg.Audio.QueueWindowMS),
		slog.Bool("recording_enabled", cfg.Recording.Enabled),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Audio device attachments, torn down on shutdown
	devices := &deviceRegistry{logger: logger}

	// Initialize session manager
	sessionMgr, err := session.NewManager(logger, session.ManagerConfig{
		QueueCapacity:    cfg.Audio.QueueCapacitySamples(),
		SampleRate:       cfg.Audio.SampleRate,
		IdleTimeout:      cfg.Network.SessionIdleTimeout(),
		RecordingEnabled: cfg.Recording.Enabled,
		RecordingDir:     cfg.Recording.Directory,
		OnSessionCreated: func(s *session.Session) {
			go devices.attach(s, cfg.Audio, *playback, *toneHz)
		},
	}, appMetrics)
	if err != nil {
		logger.Error("Failed to create session manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Session manager initialized",
		slog.Int("queue_capacity_samples", cfg.Audio.QueueCapacitySamples()),
		slog.Duration("session_idle_timeout", cfg.Network.SessionIdleTimeout()),
	)

	// Wire dispatcher and transport; the dispatcher needs the transport's
	// sender, so bind it through a closure resolved after construction.
	var mediaTransport transport.Transport

	dispatcher := transport.NewDispatcher(sessionMgr, func(data []byte) error {
		return mediaTransport.Send(data)
	}, logger, appMetrics)

	switch cfg.Network.Transport {
	case config.TransportWebSocket:
		mediaTransport = transport.NewWebSocketTransport(transport.WebSocketConfig{
			URL: cfg.Network.RemoteAddr,
		}, dispatcher, logger)
	default:
		mediaTransport = transport.NewUDPTransport(transport.UDPConfig{
			BindAddress: cfg.Network.BindAddress,
			RemoteAddr:  cfg.Network.RemoteAddr,
			BufferSize:  cfg.Network.BufferSize,
		}, dispatcher, logger)
	}

	// Initialize HTTP API server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, sessionMgr, appMetrics)
		logger.Info("HTTP API server initialized",
			slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		)
	}

	// Start transport
	if err := mediaTransport.Start(); err != nil {
		logger.Error("Failed to start media transport", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start HTTP server (if enabled)
	if httpServer != nil {
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	// Stop transport (stop accepting new frames)
	if err := mediaTransport.Stop(); err != nil {
		logger.Error("Error stopping media transport", slog.String("error", err.Error()))
	}

	// Stop session manager (tear down sessions, finalize recordings)
	sessionMgr.Stop()

	// Release audio devices
	devices.closeAll()

	logger.Info("Service stopped")
}

// deviceRegistry tracks the audio device attachments of live sessions so
// shutdown can release them.
type deviceRegistry struct {
	mu       sync.Mutex
	logger   *slog.Logger
	speakers []*engine.Speaker
	captures []*engine.Capture
}

// attach connects the local audio leg to a new session: playback through
// the system output when requested, and a capture loop feeding either a
// test tone or silence.
func (d *deviceRegistry) attach(s *session.Session, audioCfg config.AudioConfig, playback bool, toneHz float64) {
	if playback {
		speaker, err := engine.NewSpeaker(audioCfg.SampleRate, s.Inbound, d.logger)
		if err != nil {
			d.logger.Error("Failed to start playback",
				slog.Uint64("stream_id", uint64(s.StreamID)),
				slog.String("error", err.Error()),
			)
		} else {
			d.mu.Lock()
			d.speakers = append(d.speakers, speaker)
			d.mu.Unlock()
		}
	}

	var source engine.Source
	if toneHz > 0 {
		source = engine.NewToneSource(toneHz, 0.5, audioCfg.SampleRate, audioCfg.Channels)
	} else {
		source = engine.NewSilenceSource(audioCfg.Channels)
	}

	capture := engine.NewCapture(source, s.Outbound, audioCfg.SampleRate, audioCfg.BlockSize, d.logger)
	capture.Start()

	d.mu.Lock()
	d.captures = append(d.captures, capture)
	d.mu.Unlock()
}

func (d *deviceRegistry) closeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.captures {
		c.Stop()
	}
	for _, s := range d.speakers {
		if err := s.Close(); err != nil {
			d.logger.Warn("Error closing speaker", slog.String("error", err.Error()))
		}
	}
	d.captures = nil
	d.speakers = nil
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
