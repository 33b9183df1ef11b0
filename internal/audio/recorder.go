package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recorder accumulates decoded call audio and writes it out as a mono
// 16-bit WAV file when the call ends. All methods are safe for
// concurrent use.
type Recorder struct {
	mu         sync.Mutex
	samples    []int16
	callID     string
	directory  string
	sampleRate int
	startTime  time.Time
	finalized  bool
	logger     *slog.Logger
}

// NewRecorder creates a recorder for one call.
func NewRecorder(callID, directory string, sampleRate int, logger *slog.Logger) (*Recorder, error) {
	if callID == "" {
		return nil, fmt.Errorf("call ID cannot be empty")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory %s: %w", directory, err)
	}

	return &Recorder{
		samples:    make([]int16, 0, sampleRate*10),
		callID:     callID,
		directory:  directory,
		sampleRate: sampleRate,
		startTime:  time.Now(),
		logger:     logger,
	}, nil
}

// Append adds decoded samples to the recording. Samples arriving after
// Finalize are discarded.
func (r *Recorder) Append(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}
	r.samples = append(r.samples, samples...)
}

// Len returns the number of samples accumulated so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Finalize encodes the accumulated audio and writes the WAV file. It
// returns the written path. Calling Finalize again, or finalizing a
// recording with no audio, is not an error; it returns an empty path.
func (r *Recorder) Finalize() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return "", nil
	}
	r.finalized = true

	if len(r.samples) == 0 {
		r.logger.Debug("No audio captured, skipping recording",
			slog.String("call_id", r.callID))
		return "", nil
	}

	data, err := EncodeWAV(r.samples, r.sampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode recording for call %s: %w", r.callID, err)
	}

	filename := fmt.Sprintf("%s_%s.wav", r.startTime.Format("20060102_150405"), r.callID)
	path := filepath.Join(r.directory, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write recording %s: %w", path, err)
	}

	duration, _ := WAVDuration(data)
	r.logger.Info("Call recording written",
		slog.String("call_id", r.callID),
		slog.String("path", path),
		slog.Int("samples", len(r.samples)),
		slog.Float64("duration_seconds", duration))

	r.samples = nil
	return path, nil
}
