package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/outbound-ai/softphone-media/internal/audio"
	"github.com/outbound-ai/softphone-media/internal/g711"
	"github.com/outbound-ai/softphone-media/internal/pipeline"
	"github.com/outbound-ai/softphone-media/internal/protocol"
)

// Session represents one active call leg. It owns the playback pipeline
// for audio received from the gateway and the capture pipeline for audio
// sent back to it.
type Session struct {
	StreamID     uint32
	CallID       string
	Extension    string
	CallerID     string
	CalledID     string
	StartTime    time.Time
	LastActivity time.Time

	Inbound  *pipeline.Inbound
	Outbound *pipeline.Outbound

	recorder *audio.Recorder
	closed   bool
	mu       sync.RWMutex
}

// OnMediaFrame feeds a received mu-law payload into the playback pipeline
// and, when recording is enabled, into the call recorder.
func (s *Session) OnMediaFrame(data []byte) {
	s.mu.Lock()
	s.LastActivity = time.Now()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}

	s.Inbound.OnBytesReceived(data)

	if s.recorder != nil {
		s.recorder.Append(g711.DecodeULawBuffer(data))
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActivity = time.Now()
	s.mu.Unlock()
}

// Close tears down both pipelines and finalizes the recording. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Inbound.Close()
	s.Outbound.Close()
}

// FinalizeRecording writes the call recording, if any, and returns its path.
func (s *Session) FinalizeRecording() (string, error) {
	if s.recorder == nil {
		return "", nil
	}
	return s.recorder.Finalize()
}

// Info returns a monitoring snapshot of the session.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in := s.Inbound.Stats()
	out := s.Outbound.Stats()

	return Info{
		StreamID:        s.StreamID,
		CallID:          s.CallID,
		Extension:       s.Extension,
		CallerID:        s.CallerID,
		CalledID:        s.CalledID,
		StartTime:       s.StartTime,
		LastActivity:    s.LastActivity,
		Duration:        time.Since(s.StartTime),
		QueueDepth:      in.QueueDepth,
		QueueCapacity:   in.QueueCapacity,
		SamplesDecoded:  in.SamplesDecoded,
		SamplesDropped:  in.SamplesDropped,
		UnderrunSamples: in.UnderrunSamples,
		BlocksEmitted:   out.BlocksEmitted,
		SendFailures:    out.SendFailures,
		NextSequence:    out.NextSequence,
	}
}

// Info represents session information for monitoring and APIs
type Info struct {
	StreamID     uint32        `json:"stream_id"`
	CallID       string        `json:"call_id"`
	Extension    string        `json:"extension"`
	CallerID     string        `json:"caller_id"`
	CalledID     string        `json:"called_id"`
	StartTime    time.Time     `json:"start_time"`
	LastActivity time.Time     `json:"last_activity"`
	Duration     time.Duration `json:"duration"`

	QueueDepth      int    `json:"queue_depth"`
	QueueCapacity   int    `json:"queue_capacity"`
	SamplesDecoded  uint64 `json:"samples_decoded"`
	SamplesDropped  uint64 `json:"samples_dropped"`
	UnderrunSamples uint64 `json:"underrun_samples"`
	BlocksEmitted   uint64 `json:"blocks_emitted"`
	SendFailures    uint64 `json:"send_failures"`
	NextSequence    uint32 `json:"next_sequence"`
}

// Metadata carries the signaling fields that describe a call. The zero
// value is usable for sessions created without a signaling packet.
type Metadata struct {
	CallID    string
	Extension string
	CallerID  string
	CalledID  string
}

// MetadataFromSignaling extracts call metadata from a parsed signaling
// payload, generating a call ID when the gateway did not supply one.
func MetadataFromSignaling(p *protocol.SignalingPayload) Metadata {
	md := Metadata{
		CallID:    p.GetCallID(),
		Extension: p.GetExtension(),
		CallerID:  p.GetCallerID(),
		CalledID:  p.GetCalledID(),
	}
	if md.CallID == "" {
		md.CallID = uuid.NewString()
	}
	return md
}

func (md Metadata) String() string {
	return fmt.Sprintf("call=%s ext=%s from=%s to=%s", md.CallID, md.Extension, md.CallerID, md.CalledID)
}
