package protocol

import (
	"encoding/binary"
	"fmt"
)

// Packet framing constants
const (
	// Packet types
	PacketTypeSignaling = 0x01
	PacketTypeAudio     = 0x02

	// Direction types
	DirectionRX = 0x01 // Audio received from the far end (µ-law)
	DirectionTX = 0x02 // Audio transmitted to the far end (linear16 BE)

	// Structure sizes
	HeaderSize             = 8   // 1 + 2 + 4 + 1 bytes
	SignalingPayloadSize   = 164 // 64 + 32 + 32 + 32 + 4 bytes
	AudioPayloadHeaderSize = 4   // Sequence number (4 bytes)

	// Fixed string field sizes in the signaling payload
	CallIDSize    = 64
	ExtensionSize = 32
	CallerIDSize  = 32
	CalledIDSize  = 32
)

// Header is the 8-byte packet header.
// Layout: [PacketType:1][PacketLen:2][StreamID:4][Direction:1], big-endian.
type Header struct {
	PacketType uint8  // 0x01=Signaling, 0x02=Audio
	PacketLen  uint16 // Total packet size (header + payload)
	StreamID   uint32 // Stream this packet belongs to
	Direction  uint8  // 0x01=RX, 0x02=TX
}

// SignalingPayload is the fixed 164-byte call setup payload.
/// Layout: [CallID:64][Extension:32][CallerID:32][CalledID:32][Timestamp:4].
// String fields are null-terminated within their fixed slots.
type SignalingPayload struct {
	CallID    [CallIDSize]byte
	Extension [ExtensionSize]byte
	CallerID  [CallerIDSize]byte
	CalledID  [CalledIDSize]byte
	Timestamp uint32 // Unix timestamp
}

// AudioPayload is a sequence-tagged block of audio data.
// Layout: [Sequence:4][Data:N]. The data format depends on the header
// direction: RX is µ-law, TX is 16-bit big-endian linear PCM.
type AudioPayload struct {
	Sequence uint32
	Data     []byte
}

// Packet is a fully parsed frame; exactly one payload field is set.
type Packet struct {
	Header    Header
	Signaling *SignalingPayload
	Audio     *AudioPayload
}

// ParseHeader parses and validates the 8-byte packet header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: expected %d bytes, got %d", HeaderSize, len(data))
	}

	h := Header{
		PacketType: data[0],
		PacketLen:  binary.BigEndian.Uint16(data[1:3]),
		StreamID:   binary.BigEndian.Uint32(data[3:7]),
		Direction:  data[7],
	}

	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks the header fields against the framing rules.
func (h Header) Validate() error {
	if h.PacketType != PacketTypeSignaling && h.PacketType != PacketTypeAudio {
		return fmt.Errorf("invalid packet type: 0x%02x", h.PacketType)
	}
	if h.Direction != DirectionRX && h.Direction != DirectionTX {
		return fmt.Errorf("invalid direction: 0x%02x", h.Direction)
	}
	if int(h.PacketLen) < HeaderSize {
		return fmt.Errorf("packet length too small: %d (minimum %d)", h.PacketLen, HeaderSize)
	}

	payloadSize := int(h.PacketLen) - HeaderSize
	switch h.PacketType {
	case PacketTypeSignaling:
		if payloadSize != SignalingPayloadSize {
			return fmt.Errorf("signaling payload size mismatch: expected %d, got %d",
				SignalingPayloadSize, payloadSize)
		}
	case PacketTypeAudio:
		if payloadSize < AudioPayloadHeaderSize {
			return fmt.Errorf("audio payload too small: expected at least %d, got %d",
				AudioPayloadHeaderSize, payloadSize)
		}
	}
	return nil
}

// ParsePacket parses a complete frame (header + payload).
func ParsePacket(data []byte) (*Packet, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if int(header.PacketLen) != len(data) {
		return nil, fmt.Errorf("packet length mismatch: header says %d bytes, got %d bytes",
			header.PacketLen, len(data))
	}

	pkt := &Packet{Header: header}
	payload := data[HeaderSize:]

	switch header.PacketType {
	case PacketTypeSignaling:
		sig := &SignalingPayload{}
		offset := 0
		offset += copy(sig.CallID[:], payload[offset:offset+CallIDSize])
		offset += copy(sig.Extension[:], payload[offset:offset+ExtensionSize])
		offset += copy(sig.CallerID[:], payload[offset:offset+CallerIDSize])
		offset += copy(sig.CalledID[:], payload[offset:offset+CalledIDSize])
		sig.Timestamp = binary.BigEndian.Uint32(payload[offset:])
		pkt.Signaling = sig

	case PacketTypeAudio:
		audio := &AudioPayload{Sequence: binary.BigEndian.Uint32(payload[:AudioPayloadHeaderSize])}
		if len(payload) > AudioPayloadHeaderSize {
			audio.Data = make([]byte, len(payload)-AudioPayloadHeaderSize)
			copy(audio.Data, payload[AudioPayloadHeaderSize:])
		}
		pkt.Audio = audio
	}

	return pkt, nil
}

// MarshalAudioPacket frames one audio payload for the wire.
func MarshalAudioPacket(streamID uint32, direction uint8, seq uint32, data []byte) ([]byte, error) {
	total := HeaderSize + AudioPayloadHeaderSize + len(data)
	if total > 0xFFFF {
		return nil, fmt.Errorf("audio packet too large: %d bytes exceeds 16-bit length field", total)
	}
	if direction != DirectionRX && direction != DirectionTX {
		return nil, fmt.Errorf("invalid direction: 0x%02x", direction)
	}

	buf := make([]byte, total)
	buf[0] = PacketTypeAudio
	binary.BigEndian.PutUint16(buf[1:3], uint16(total))
	binary.BigEndian.PutUint32(buf[3:7], streamID)
	buf[7] = direction
	binary.BigEndian.PutUint32(buf[HeaderSize:], seq)
	copy(buf[HeaderSize+AudioPayloadHeaderSize:], data)

	return buf, nil
}

// MarshalSignalingPacket frames one call setup payload for the wire.
func MarshalSignalingPacket(streamID uint32, direction uint8, callID, extension, callerID, calledID string, timestamp uint32) ([]byte, error) {
	if len(callID) > CallIDSize {
		return nil, fmt.Errorf("call ID too long: %d bytes (maximum %d)", len(callID), CallIDSize)
	}
	if len(extension) > ExtensionSize || len(callerID) > CallerIDSize || len(calledID) > CalledIDSize {
		return nil, fmt.Errorf("signaling string field exceeds its fixed slot")
	}

	total := HeaderSize + SignalingPayloadSize
	buf := make([]byte, total)
	buf[0] = PacketTypeSignaling
	binary.BigEndian.PutUint16(buf[1:3], uint16(total))
	binary.BigEndian.PutUint32(buf[3:7], streamID)
	buf[7] = direction

	offset := HeaderSize
	copy(buf[offset:offset+CallIDSize], callID)
	offset += CallIDSize
	copy(buf[offset:offset+ExtensionSize], extension)
	offset += ExtensionSize
	copy(buf[offset:offset+CallerIDSize], callerID)
	offset += CallerIDSize
	copy(buf[offset:offset+CalledIDSize], calledID)
	offset += CalledIDSize
	binary.BigEndian.PutUint32(buf[offset:], timestamp)

	return buf, nil
}

// extractString returns the null-terminated string held in a fixed slot.
func extractString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// GetCallID extracts the call ID as a string.
func (s *SignalingPayload) GetCallID() string { return extractString(s.CallID[:]) }

// GetExtension extracts the dialed extension as a string.
func (s *SignalingPayload) GetExtension() string { return extractString(s.Extension[:]) }

// GetCallerID extracts the caller ID as a string.
func (s *SignalingPayload) GetCallerID() string { return extractString(s.CallerID[:]) }

// GetCalledID extracts the called party ID as a string.
func (s *SignalingPayload) GetCalledID() string { return extractString(s.CalledID[:]) }

// DirectionString converts a direction code to a human-readable label.
func DirectionString(direction uint8) string {
	switch direction {
	case DirectionRX:
		return "RX"
	case DirectionTX:
		return "TX"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", direction)
	}
}

// String returns a human-readable representation of the header.
func (h Header) String() string {
	var packetType string
	switch h.PacketType {
	case PacketTypeSignaling:
		packetType = "Signaling"
	case PacketTypeAudio:
		packetType = "Audio"
	default:
		packetType = fmt.Sprintf("Unknown(0x%02x)", h.PacketType)
	}
	return fmt.Sprintf("Header{Type:%s, Len:%d, StreamID:%d, Direction:%s}",
		packetType, h.PacketLen, h.StreamID, DirectionString(h.Direction))
}
