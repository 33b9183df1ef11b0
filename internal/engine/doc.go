// Package engine bridges call sessions to the audio device. The speaker
// drains a session's playback pipeline into the system output, and the
// capture loop feeds microphone or generated blocks into the session's
// outbound pipeline at the audio block rate.
package engine
