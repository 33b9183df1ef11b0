// Package protocol implements the binary framing spoken with the media
// gateway: an 8-byte big-endian header followed by either a fixed-size call
// signaling payload or a sequence-tagged audio payload. Received (RX) audio
// frames carry µ-law bytes, one per sample; transmitted (TX) frames carry
// 16-bit big-endian linear PCM, two bytes per sample.
package protocol
