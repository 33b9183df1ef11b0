package engine

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/outbound-ai/softphone-media/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToneSourceGeneratesContinuousSine(t *testing.T) {
	source := NewToneSource(440.0, 0.5, 8000, 1)

	first := source.ReadInputs(128)
	second := source.ReadInputs(128)

	if len(first) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(first))
	}
	if len(first[0]) != 128 {
		t.Fatalf("expected 128 samples, got %d", len(first[0]))
	}

	// Blocks continue the waveform rather than restarting the phase.
	expected := float32(0.5 * math.Sin(2*math.Pi*440.0*float64(128)/8000.0))
	if diff := second[0][0] - expected; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected phase-continuous sample %f, got %f", expected, second[0][0])
	}

	// Amplitude stays within the requested bound.
	for i, s := range first[0] {
		if s > 0.5 || s < -0.5 {
			t.Fatalf("sample %d out of range: %f", i, s)
		}
	}
}

func TestToneSourceMultiChannel(t *testing.T) {
	source := NewToneSource(300.0, 0.25, 8000, 2)

	inputs := source.ReadInputs(64)
	if len(inputs) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(inputs))
	}
	for i := range inputs[0] {
		if inputs[0][i] != inputs[1][i] {
			t.Fatalf("expected identical channels, sample %d differs", i)
		}
	}
}

func TestSilenceSource(t *testing.T) {
	source := NewSilenceSource(1)

	inputs := source.ReadInputs(32)
	if len(inputs) != 1 || len(inputs[0]) != 32 {
		t.Fatalf("unexpected block shape: %d channels", len(inputs))
	}
	for i, s := range inputs[0] {
		if s != 0 {
			t.Fatalf("expected silence at sample %d, got %f", i, s)
		}
	}
}

// blockCounter counts frames the capture loop emits.
type blockCounter struct {
	mu     sync.Mutex
	blocks int
	sizes  []int
}

func (b *blockCounter) WriteFrame(payload []byte, seq uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocks++
	b.sizes = append(b.sizes, len(payload))
	return nil
}

func (b *blockCounter) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blocks
}

func TestCaptureLoopEmitsBlocks(t *testing.T) {
	sink := &blockCounter{}
	outbound := pipeline.NewOutbound(sink)
	source := NewToneSource(440.0, 0.5, 8000, 1)

	// 128 samples at 8 kHz gives a 16 ms block period.
	capture := NewCapture(source, outbound, 8000, 128, testLogger())
	capture.Start()

	deadline := time.After(2 * time.Second)
	for sink.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 blocks, got %d", sink.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
	capture.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, size := range sink.sizes {
		if size != 256 {
			t.Errorf("expected 256-byte payloads for 128-sample blocks, got %d", size)
		}
	}
}

func TestCaptureLoopStopsOnClosedPipeline(t *testing.T) {
	sink := &blockCounter{}
	outbound := pipeline.NewOutbound(sink)
	outbound.Close()

	capture := NewCapture(NewSilenceSource(1), outbound, 8000, 16, testLogger())
	capture.Start()

	// Stop must return even though the loop exits on its own.
	done := make(chan struct{})
	go func() {
		capture.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("capture loop did not stop")
	}

	if sink.count() != 0 {
		t.Errorf("expected no blocks through a closed pipeline, got %d", sink.count())
	}
}
