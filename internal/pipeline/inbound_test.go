package pipeline

import (
	"testing"

	"github.com/outbound-ai/softphone-media/internal/g711"
)

func TestInboundDecodesInOrder(t *testing.T) {
	in, err := NewInbound(256)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	frame := []byte{0x00, 0x80, 0xFF, 0x9F}
	in.OnBytesReceived(frame)

	dst := make([]float32, len(frame))
	if !in.Pull(dst) {
		t.Fatal("Pull reported stopped pipeline before teardown")
	}

	for i, code := range frame {
		if expected := g711.ULawToFloat(code); dst[i] != expected {
			t.Errorf("sample %d: got %f, expected decode of 0x%02X = %f", i, dst[i], code, expected)
		}
	}
}

func TestInboundUnderrunFillsSilence(t *testing.T) {
	in, err := NewInbound(256)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	in.OnBytesReceived([]byte{0x00})

	dst := []float32{9, 9, 9}
	in.Pull(dst)

	if dst[0] != g711.ULawToFloat(0x00) {
		t.Errorf("dst[0] = %f, expected decoded sample", dst[0])
	}
	if dst[1] != 0 || dst[2] != 0 {
		t.Errorf("shortfall not silence-filled: %v", dst)
	}

	stats := in.Stats()
	if stats.UnderrunSamples != 2 {
		t.Errorf("UnderrunSamples = %d, expected 2", stats.UnderrunSamples)
	}
	if stats.SamplesDecoded != 1 {
		t.Errorf("SamplesDecoded = %d, expected 1", stats.SamplesDecoded)
	}
}

func TestInboundPullNeverFailsOnEmptyQueue(t *testing.T) {
	in, err := NewInbound(64)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	dst := make([]float32, 128)
	for i := 0; i < 10; i++ {
		if !in.Pull(dst) {
			t.Fatal("Pull reported stopped pipeline on underrun")
		}
		for j, v := range dst {
			if v != 0 {
				t.Fatalf("pull %d: dst[%d] = %f, expected silence", i, j, v)
			}
		}
	}
}

func TestInboundCloseDiscardsQueueAndStopsContinuation(t *testing.T) {
	in, err := NewInbound(64)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	in.OnBytesReceived([]byte{0x00, 0x00, 0x00})
	in.Close()

	dst := []float32{9, 9}
	if in.Pull(dst) {
		t.Error("Pull after Close returned true continuation flag")
	}
	if dst[0] != 0 || dst[1] != 0 {
		t.Errorf("Pull after Close returned queued audio: %v", dst)
	}

	// Frames arriving after teardown are dropped.
	in.OnBytesReceived([]byte{0x80})
	if depth := in.Stats().QueueDepth; depth != 0 {
		t.Errorf("queue depth after post-close receive = %d, expected 0", depth)
	}
}

func TestInboundOverflowEvictsOldest(t *testing.T) {
	in, err := NewInbound(2)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	in.OnBytesReceived([]byte{0x00, 0x9F, 0x80})

	dst := make([]float32, 2)
	in.Pull(dst)

	if dst[0] != g711.ULawToFloat(0x9F) || dst[1] != g711.ULawToFloat(0x80) {
		t.Errorf("overflow kept wrong samples: %v", dst)
	}
	if in.Stats().SamplesDropped != 1 {
		t.Errorf("SamplesDropped = %d, expected 1", in.Stats().SamplesDropped)
	}
}
