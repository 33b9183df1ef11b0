// Package session manages the lifecycle of active call sessions. Each
// session owns a playback pipeline for received audio, a capture pipeline
// for transmitted audio, and an optional call recorder. The manager tracks
// sessions by stream ID and reaps the ones that go idle.
package session
