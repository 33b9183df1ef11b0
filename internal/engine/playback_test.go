package engine

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/outbound-ai/softphone-media/internal/pipeline"
)

func TestPullReaderConvertsToLittleEndianPCM(t *testing.T) {
	inbound, err := pipeline.NewInbound(3200)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	// 0x00 decodes to -32124, 0xFF decodes to 0.
	inbound.OnBytesReceived([]byte{0x00, 0xFF})

	reader := &pullReader{inbound: inbound}
	buf := make([]byte, 4)

	n, err := reader.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}

	first := int16(binary.LittleEndian.Uint16(buf[0:2]))
	if first != -32124 {
		t.Errorf("expected first sample -32124, got %d", first)
	}
	second := int16(binary.LittleEndian.Uint16(buf[2:4]))
	if second != 0 {
		t.Errorf("expected second sample 0, got %d", second)
	}
}

func TestPullReaderFillsSilenceOnUnderrun(t *testing.T) {
	inbound, err := pipeline.NewInbound(3200)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	reader := &pullReader{inbound: inbound}
	buf := make([]byte, 8)

	n, err := reader.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}
	for i := 0; i < n; i += 2 {
		if sample := int16(binary.LittleEndian.Uint16(buf[i:])); sample != 0 {
			t.Errorf("expected silence at byte %d, got %d", i, sample)
		}
	}
}

func TestPullReaderEOFAfterClose(t *testing.T) {
	inbound, err := pipeline.NewInbound(3200)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}
	inbound.Close()

	reader := &pullReader{inbound: inbound}
	if _, err := reader.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("expected io.EOF from a closed pipeline, got %v", err)
	}
}

func TestPullReaderZeroLengthRead(t *testing.T) {
	inbound, err := pipeline.NewInbound(3200)
	if err != nil {
		t.Fatalf("NewInbound failed: %v", err)
	}

	reader := &pullReader{inbound: inbound}
	n, err := reader.Read(nil)
	if n != 0 || err != nil {
		t.Errorf("expected (0, nil) for empty read, got (%d, %v)", n, err)
	}
}
