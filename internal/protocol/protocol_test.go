package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expected    Header
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid signaling header",
			data: []byte{
				0x01,       // PacketType: Signaling
				0x00, 0xAC, // PacketLen: 172 (8 + 164)
				0x00, 0x00, 0x30, 0x39, // StreamID: 12345
				0x01, // Direction: RX
			},
			expected: Header{
				PacketType: PacketTypeSignaling,
				PacketLen:  172,
				StreamID:   12345,
				Direction:  DirectionRX,
			},
		},
		{
			name: "valid audio header",
			data: []byte{
				0x02,       // PacketType: Audio
				0x01, 0x00, // PacketLen: 256
				0x12, 0x34, 0x56, 0x78, // StreamID: 305419896
				0x02, // Direction: TX
			},
			expected: Header{
				PacketType: PacketTypeAudio,
				PacketLen:  256,
				StreamID:   305419896,
				Direction:  DirectionTX,
			},
		},
		{
			name:        "header too short",
			data:        []byte{0x01, 0x00},
			expectError: true,
			errorMsg:    "header too short",
		},
		{
			name:        "unknown packet type",
			data:        []byte{0x07, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x01},
			expectError: true,
			errorMsg:    "invalid packet type",
		},
		{
			name:        "unknown direction",
			data:        []byte{0x02, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x05},
			expectError: true,
			errorMsg:    "invalid direction",
		},
		{
			name:        "signaling payload size mismatch",
			data:        []byte{0x01, 0x00, 0x20, 0x00, 0x00, 0x00, 0x01, 0x01},
			expectError: true,
			errorMsg:    "signaling payload size mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseHeader(tt.data)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			} else if result != tt.expected {
				t.Errorf("Expected header %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestAudioPacketRoundTrip(t *testing.T) {
	data := []byte{0xFF, 0x7F, 0x00, 0x80}
	wire, err := MarshalAudioPacket(42, DirectionRX, 7, data)
	if err != nil {
		t.Fatalf("MarshalAudioPacket failed: %v", err)
	}

	if len(wire) != HeaderSize+AudioPayloadHeaderSize+len(data) {
		t.Fatalf("wire length = %d, expected %d", len(wire), HeaderSize+AudioPayloadHeaderSize+len(data))
	}

	pkt, err := ParsePacket(wire)
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}

	if pkt.Header.PacketType != PacketTypeAudio {
		t.Errorf("packet type = 0x%02x, expected audio", pkt.Header.PacketType)
	}
	if pkt.Header.StreamID != 42 {
		t.Errorf("stream ID = %d, expected 42", pkt.Header.StreamID)
	}
	if pkt.Header.Direction != DirectionRX {
		t.Errorf("direction = 0x%02x, expected RX", pkt.Header.Direction)
	}
	if pkt.Audio == nil {
		t.Fatal("audio payload not set")
	}
	if pkt.Audio.Sequence != 7 {
		t.Errorf("sequence = %d, expected 7", pkt.Audio.Sequence)
	}
	if !bytes.Equal(pkt.Audio.Data, data) {
		t.Errorf("audio data = %v, expected %v", pkt.Audio.Data, data)
	}
}

func TestAudioPacketSequenceIsBigEndian(t *testing.T) {
	wire, err := MarshalAudioPacket(1, DirectionTX, 0x01020304, []byte{0x00})
	if err != nil {
		t.Fatalf("MarshalAudioPacket failed: %v", err)
	}

	seqBytes := wire[HeaderSize : HeaderSize+AudioPayloadHeaderSize]
	if !bytes.Equal(seqBytes, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("sequence bytes = %v, expected big-endian [1 2 3 4]", seqBytes)
	}
}

func TestSignalingPacketRoundTrip(t *testing.T) {
	wire, err := MarshalSignalingPacket(99, DirectionRX,
		"SIP/1001-00000001", "1001", "Alice", "Bob", 1701234567)
	if err != nil {
		t.Fatalf("MarshalSignalingPacket failed: %v", err)
	}

	if len(wire) != HeaderSize+SignalingPayloadSize {
		t.Fatalf("wire length = %d, expected %d", len(wire), HeaderSize+SignalingPayloadSize)
	}

	pkt, err := ParsePacket(wire)
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if pkt.Signaling == nil {
		t.Fatal("signaling payload not set")
	}

	sig := pkt.Signaling
	if sig.GetCallID() != "SIP/1001-00000001" {
		t.Errorf("call ID = %q", sig.GetCallID())
	}
	if sig.GetExtension() != "1001" {
		t.Errorf("extension = %q", sig.GetExtension())
	}
	if sig.GetCallerID() != "Alice" {
		t.Errorf("caller ID = %q", sig.GetCallerID())
	}
	if sig.GetCalledID() != "Bob" {
		t.Errorf("called ID = %q", sig.GetCalledID())
	}
	if sig.Timestamp != 1701234567 {
		t.Errorf("timestamp = %d", sig.Timestamp)
	}
}

func TestMarshalSignalingRejectsOversizedFields(t *testing.T) {
	_, err := MarshalSignalingPacket(1, DirectionRX,
		strings.Repeat("x", CallIDSize+1), "", "", "", 0)
	if err == nil {
		t.Error("expected error for oversized call ID")
	}

	_, err = MarshalSignalingPacket(1, DirectionRX,
		"ok", strings.Repeat("x", ExtensionSize+1), "", "", 0)
	if err == nil {
		t.Error("expected error for oversized extension")
	}
}

func TestParsePacketLengthMismatch(t *testing.T) {
	wire, err := MarshalAudioPacket(1, DirectionRX, 0, []byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("MarshalAudioPacket failed: %v", err)
	}

	_, err = ParsePacket(wire[:len(wire)-1])
	if err == nil || !strings.Contains(err.Error(), "length mismatch") {
		t.Errorf("expected length mismatch error, got %v", err)
	}
}

func TestMarshalAudioPacketRejectsOversizedPayload(t *testing.T) {
	_, err := MarshalAudioPacket(1, DirectionTX, 0, make([]byte, 0x10000))
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}
