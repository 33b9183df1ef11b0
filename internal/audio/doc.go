// Package audio handles call recording. It encodes accumulated PCM-16
// audio to mono WAV files when a call session is torn down.
package audio
