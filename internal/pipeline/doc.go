// Package pipeline implements the real-time audio stream processors that sit
// between the network layer and the audio engine: an inbound path that
// decodes µ-law frames into a bounded float sample queue drained by the
// engine's pull clock, and an outbound path that serializes captured float
// blocks into sequence-tagged big-endian PCM frames.
package pipeline
