package engine

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/ebitengine/oto/v3"

	"github.com/outbound-ai/softphone-media/internal/g711"
	"github.com/outbound-ai/softphone-media/internal/pipeline"
)

// Speaker plays a session's received audio through the system output
// device. The device driver pulls from the playback pipeline, so gaps in
// network audio come out as silence rather than stalls.
type Speaker struct {
	otoCtx *oto.Context
	player *oto.Player
	logger *slog.Logger
}

// NewSpeaker initializes the output device for mono 16-bit playback at
// the given rate and starts draining the pipeline.
func NewSpeaker(sampleRate int, inbound *pipeline.Inbound, logger *slog.Logger) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-readyChan

	player := ctx.NewPlayer(&pullReader{inbound: inbound})
	player.Play()

	logger.Info("Audio playback started",
		slog.Int("sample_rate", sampleRate),
	)

	return &Speaker{
		otoCtx: ctx,
		player: player,
		logger: logger,
	}, nil
}

// Close stops playback and releases the device.
func (s *Speaker) Close() error {
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("failed to close audio player: %w", err)
	}
	s.otoCtx.Suspend()
	s.logger.Info("Audio playback stopped")
	return nil
}

// pullReader adapts a playback pipeline to the io.Reader the audio
// device consumes, converting pulled float samples to little-endian
// 16-bit PCM. It reports io.EOF once the pipeline closes.
type pullReader struct {
	inbound *pipeline.Inbound
	scratch []float32
}

func (r *pullReader) Read(p []byte) (int, error) {
	numSamples := len(p) / 2
	if numSamples == 0 {
		return 0, nil
	}

	if cap(r.scratch) < numSamples {
		r.scratch = make([]float32, numSamples)
	}
	block := r.scratch[:numSamples]

	if ok := r.inbound.Pull(block); !ok {
		return 0, io.EOF
	}

	for i, sample := range block {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(g711.FloatToLinear(sample)))
	}

	return numSamples * 2, nil
}
