package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/outbound-ai/softphone-media/internal/pipeline"
)

// Source produces blocks of capture audio, one channel per slice. Only
// the first channel reaches the outbound pipeline; a multi-channel
// source still works, its extra channels are ignored.
type Source interface {
	ReadInputs(blockSize int) [][]float32
}

// Capture drives a session's outbound pipeline from a source at the
// audio block rate.
type Capture struct {
	source   Source
	outbound *pipeline.Outbound
	logger   *slog.Logger

	blockSize   int
	blockPeriod time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCapture creates a capture loop emitting blockSize-sample blocks at
// the real-time rate for the given sample rate.
func NewCapture(source Source, outbound *pipeline.Outbound, sampleRate, blockSize int, logger *slog.Logger) *Capture {
	ctx, cancel := context.WithCancel(context.Background())

	return &Capture{
		source:      source,
		outbound:    outbound,
		logger:      logger,
		blockSize:   blockSize,
		blockPeriod: time.Duration(blockSize) * time.Second / time.Duration(sampleRate),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins the capture loop.
func (c *Capture) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop halts the capture loop and waits for it to finish.
func (c *Capture) Stop() {
	c.cancel()
	c.wg.Wait()
}

func (c *Capture) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.blockPeriod)
	defer ticker.Stop()

	c.logger.Debug("Capture loop started",
		slog.Int("block_size", c.blockSize),
		slog.Duration("block_period", c.blockPeriod),
	)

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Debug("Capture loop stopping")
			return

		case <-ticker.C:
			inputs := c.source.ReadInputs(c.blockSize)
			if !c.outbound.OnCaptureInputs(inputs) {
				c.logger.Debug("Capture loop stopping, outbound pipeline closed")
				return
			}
		}
	}
}

// ToneSource generates a sine tone, useful for line tests and echo
// checks when no microphone is available.
type ToneSource struct {
	sampleIndex uint64
	mu          sync.Mutex
	frequency   float64
	amplitude   float64
	sampleRate  int
	channels    int
}

// NewToneSource creates a tone source. Amplitude is linear full-scale,
// typically 0.5 to leave headroom.
func NewToneSource(frequency, amplitude float64, sampleRate, channels int) *ToneSource {
	if channels < 1 {
		channels = 1
	}
	return &ToneSource{
		frequency:  frequency,
		amplitude:  amplitude,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// ReadInputs generates the next block of the tone in every channel.
func (s *ToneSource) ReadInputs(blockSize int) [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputs := make([][]float32, s.channels)
	for ch := range inputs {
		inputs[ch] = make([]float32, blockSize)
	}

	for i := 0; i < blockSize; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := float32(s.amplitude * math.Sin(2*math.Pi*s.frequency*t))
		for ch := range inputs {
			inputs[ch][i] = sample
		}
	}

	s.sampleIndex += uint64(blockSize)
	return inputs
}

// SilenceSource produces all-zero capture blocks, used when the call has
// no local audio to send.
type SilenceSource struct {
	channels int
}

// NewSilenceSource creates a silence source with the given channel count.
func NewSilenceSource(channels int) *SilenceSource {
	if channels < 1 {
		channels = 1
	}
	return &SilenceSource{channels: channels}
}

// ReadInputs returns zeroed blocks.
func (s *SilenceSource) ReadInputs(blockSize int) [][]float32 {
	inputs := make([][]float32, s.channels)
	for ch := range inputs {
		inputs[ch] = make([]float32, blockSize)
	}
	return inputs
}
