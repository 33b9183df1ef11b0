package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport kinds accepted by the network section.
const (
	TransportUDP       = "udp"
	TransportWebSocket = "websocket"
)

// Config is the complete engine configuration.
type Config struct {
	Network   NetworkConfig   `yaml:"network"`
	Audio     AudioConfig     `yaml:"audio"`
	Recording RecordingConfig `yaml:"recording"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NetworkConfig selects and parameterizes the media transport.
type NetworkConfig struct {
	Transport   string `yaml:"transport"`    // "udp" or "websocket"
	RemoteAddr  string `yaml:"remote_addr"`  // media gateway address
	BindAddress string `yaml:"bind_address"` // local UDP bind address
	BufferSize  int    `yaml:"buffer_size"`  // socket read buffer, bytes
	SessionIdle int    `yaml:"session_idle"` // seconds before an idle session is reaped
}

// AudioConfig contains the fixed audio-graph parameters.
type AudioConfig struct {
	SampleRate    int `yaml:"sample_rate"`     // 8000 Hz, telephony narrowband
	Channels      int `yaml:"channels"`        // mono
	BlockSize     int `yaml:"block_size"`      // samples per engine callback, commonly 128
	QueueWindowMS int `yaml:"queue_window_ms"` // playback queue bound in milliseconds
}

// RecordingConfig controls WAV capture of decoded inbound audio.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// HTTPConfig contains the monitoring API server configuration.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Transport:   TransportUDP,
			RemoteAddr:  "127.0.0.1:9640",
			BindAddress: "0.0.0.0:9641",
			BufferSize:  65536,
			SessionIdle: 60,
		},
		Audio: AudioConfig{
			SampleRate:    8000,
			Channels:      1,
			BlockSize:     128,
			QueueWindowMS: 400,
		},
		Recording: RecordingConfig{Enabled: false, Directory: "recordings"},
		HTTP:      HTTPConfig{Enabled: true, Address: "127.0.0.1", Port: 8080},
		Logging:   LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
	}
}

// Validate performs validation of the whole configuration.
func (c *Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Recording.Validate(); err != nil {
		return fmt.Errorf("recording config: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates the network configuration.
func (n *NetworkConfig) Validate() error {
	if n.Transport != TransportUDP && n.Transport != TransportWebSocket {
		return fmt.Errorf("transport must be %q or %q, got %q", TransportUDP, TransportWebSocket, n.Transport)
	}
	if n.RemoteAddr == "" {
		return fmt.Errorf("remote_addr cannot be empty")
	}
	if n.Transport == TransportUDP && n.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty for udp transport")
	}
	if n.BufferSize < 1024 {
		return fmt.Errorf("buffer_size must be at least 1024 bytes, got %d", n.BufferSize)
	}
	if n.SessionIdle < 1 {
		return fmt.Errorf("session_idle must be at least 1 second, got %d", n.SessionIdle)
	}
	return nil
}

// Validate validates the audio configuration.
func (a *AudioConfig) Validate() error {
	if a.SampleRate != 8000 {
		return fmt.Errorf("sample_rate must be 8000 Hz for the G.711 media leg, got %d", a.SampleRate)
	}
	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", a.Channels)
	}
	if a.BlockSize < 16 || a.BlockSize > 8192 {
		return fmt.Errorf("block_size must be between 16 and 8192 samples, got %d", a.BlockSize)
	}
	if a.QueueWindowMS < 20 {
		return fmt.Errorf("queue_window_ms must be at least 20 ms, got %d", a.QueueWindowMS)
	}
	return nil
}

// Validate validates the recording configuration.
func (r *RecordingConfig) Validate() error {
	if r.Enabled && r.Directory == "" {
		return fmt.Errorf("directory cannot be empty when recording is enabled")
	}
	return nil
}

// Validate validates the HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}
		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}
	return nil
}

// Validate validates the logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// QueueCapacitySamples converts the queue window into a sample count at the
// configured rate.
func (a *AudioConfig) QueueCapacitySamples() int {
	return a.SampleRate * a.QueueWindowMS / 1000
}

// BlockDuration returns the wall-clock period of one engine callback block.
func (a *AudioConfig) BlockDuration() time.Duration {
	return time.Duration(a.BlockSize) * time.Second / time.Duration(a.SampleRate)
}

// SessionIdleTimeout returns the idle reap threshold as a time.Duration.
func (n *NetworkConfig) SessionIdleTimeout() time.Duration {
	return time.Duration(n.SessionIdle) * time.Second
}
