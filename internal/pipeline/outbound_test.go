package pipeline

import (
	"bytes"
	"errors"
	"testing"
)

// captureSink records every emitted frame for inspection.
type captureSink struct {
	payloads [][]byte
	seqs     []uint32
	err      error
}

func (s *captureSink) WriteFrame(payload []byte, seq uint32) error {
	s.payloads = append(s.payloads, payload)
	s.seqs = append(s.seqs, seq)
	return s.err
}

func TestSerializeLinearBigEndian(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		expected []byte
	}{
		{"reference value", []int16{0x1234}, []byte{0x12, 0x34}},
		{"positive full scale", []int16{32767}, []byte{0x7F, 0xFF}},
		{"negative full scale", []int16{-32768}, []byte{0x80, 0x00}},
		{"zero", []int16{0}, []byte{0x00, 0x00}},
		{"two samples", []int16{0x1234, -2}, []byte{0x12, 0x34, 0xFF, 0xFE}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SerializeLinear(tt.samples)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("SerializeLinear(%v) = %v, expected %v", tt.samples, got, tt.expected)
			}
		})
	}
}

func TestOutboundSequenceMonotonicity(t *testing.T) {
	sink := &captureSink{}
	out := NewOutbound(sink)

	const blocks = 10
	block := make([]float32, 128)
	for i := 0; i < blocks; i++ {
		if !out.OnCaptureBlock(block) {
			t.Fatalf("block %d: continuation flag false before teardown", i)
		}
	}

	if len(sink.seqs) != blocks {
		t.Fatalf("sink received %d frames, expected %d", len(sink.seqs), blocks)
	}
	for i, seq := range sink.seqs {
		if seq != uint32(i) {
			t.Errorf("block %d carried sequence %d", i, seq)
		}
	}
	if out.Sequence() != blocks {
		t.Errorf("next sequence = %d, expected %d", out.Sequence(), blocks)
	}
}

func TestOutboundBufferSizeAndContent(t *testing.T) {
	sink := &captureSink{}
	out := NewOutbound(sink)

	out.OnCaptureBlock([]float32{1.0, -1.0, 0.0})

	if len(sink.payloads) != 1 {
		t.Fatalf("sink received %d frames, expected 1", len(sink.payloads))
	}
	payload := sink.payloads[0]
	if len(payload) != 6 {
		t.Fatalf("payload length = %d, expected 2x sample count = 6", len(payload))
	}

	expected := []byte{0x7F, 0xFF, 0x80, 0x00, 0x00, 0x00}
	if !bytes.Equal(payload, expected) {
		t.Errorf("payload = %v, expected %v", payload, expected)
	}
}

func TestOutboundSinkFailureIsFireAndForget(t *testing.T) {
	sink := &captureSink{err: errors.New("transport not ready")}
	out := NewOutbound(sink)

	block := make([]float32, 4)
	out.OnCaptureBlock(block)
	out.OnCaptureBlock(block)

	stats := out.Stats()
	if stats.SendFailures != 2 {
		t.Errorf("SendFailures = %d, expected 2", stats.SendFailures)
	}
	// Failures still consume sequence numbers; the stream has no gaps from
	// the sender's point of view.
	if got := sink.seqs; got[0] != 0 || got[1] != 1 {
		t.Errorf("sequences with failing sink = %v, expected [0 1]", got)
	}
}

func TestOutboundChannelPolicyTakesFirstChannel(t *testing.T) {
	sink := &captureSink{}
	out := NewOutbound(sink)

	first := []float32{1.0}
	second := []float32{-1.0}
	if !out.OnCaptureInputs([][]float32{first, second}) {
		t.Fatal("continuation flag false before teardown")
	}

	if len(sink.payloads) != 1 {
		t.Fatalf("sink received %d frames, expected 1", len(sink.payloads))
	}
	if !bytes.Equal(sink.payloads[0], []byte{0x7F, 0xFF}) {
		t.Errorf("payload = %v, expected first-channel encoding [0x7F 0xFF]", sink.payloads[0])
	}

	// No channels at all emits nothing but keeps the pipeline alive.
	if !out.OnCaptureInputs(nil) {
		t.Error("empty input flipped continuation flag")
	}
	if len(sink.payloads) != 1 {
		t.Errorf("empty input emitted a frame")
	}
}

func TestOutboundCloseStopsEmission(t *testing.T) {
	sink := &captureSink{}
	out := NewOutbound(sink)

	out.OnCaptureBlock(make([]float32, 2))
	out.Close()

	if out.OnCaptureBlock(make([]float32, 2)) {
		t.Error("OnCaptureBlock after Close returned true continuation flag")
	}
	if len(sink.payloads) != 1 {
		t.Errorf("sink received %d frames after close, expected emission to stop at 1", len(sink.payloads))
	}
}
