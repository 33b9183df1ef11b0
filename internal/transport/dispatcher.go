package transport

import (
	"log/slog"

	"github.com/outbound-ai/softphone-media/internal/metrics"
	"github.com/outbound-ai/softphone-media/internal/pipeline"
	"github.com/outbound-ai/softphone-media/internal/protocol"
	"github.com/outbound-ai/softphone-media/internal/session"
)

// Sender transmits one serialized frame to the gateway.
type Sender func(data []byte) error

// Dispatcher parses received frames and routes them into call sessions.
// Signaling packets create or refresh sessions; audio packets feed the
// matching session's playback pipeline. Each created session gets a
// capture sink that marshals its outbound blocks into TX audio packets
// and hands them to the sender.
type Dispatcher struct {
	sessions *session.Manager
	logger   *slog.Logger
	metrics  *metrics.Metrics
	send     Sender
}

// NewDispatcher creates a dispatcher routing frames through the given
// session manager. The sender is used for the outbound leg of every
// session the dispatcher creates.
func NewDispatcher(sessions *session.Manager, send Sender, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		logger:   logger,
		metrics:  m,
		send:     send,
	}
}

// HandleFrame parses one received frame and routes it.
func (d *Dispatcher) HandleFrame(data []byte) {
	packet, err := protocol.ParsePacket(data)
	if err != nil {
		if d.metrics != nil {
			d.metrics.RecordParseError()
		}
		d.logger.Error("Failed to parse frame",
			slog.Int("frame_size", len(data)),
			slog.String("error", err.Error()),
		)
		return
	}

	if d.metrics != nil {
		d.metrics.RecordFrameReceived()
	}

	switch packet.Header.PacketType {
	case protocol.PacketTypeSignaling:
		d.handleSignaling(packet.Header, packet.Signaling)
	case protocol.PacketTypeAudio:
		d.handleAudio(packet.Header, packet.Audio)
	default:
		d.logger.Error("Unknown packet type",
			slog.Uint64("stream_id", uint64(packet.Header.StreamID)),
			slog.Int("packet_type", int(packet.Header.PacketType)),
		)
	}
}

func (d *Dispatcher) handleSignaling(header protocol.Header, payload *protocol.SignalingPayload) {
	md := session.MetadataFromSignaling(payload)

	d.logger.Debug("Processing signaling packet",
		slog.Uint64("stream_id", uint64(header.StreamID)),
		slog.String("call_id", md.CallID),
		slog.String("caller_id", md.CallerID),
		slog.String("called_id", md.CalledID),
	)

	if _, err := d.sessions.CreateSession(header.StreamID, md, d.captureSink(header.StreamID)); err != nil {
		d.logger.Error("Failed to create session",
			slog.Uint64("stream_id", uint64(header.StreamID)),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) handleAudio(header protocol.Header, payload *protocol.AudioPayload) {
	if header.Direction != protocol.DirectionRX {
		// The gateway should never echo our own TX frames back.
		d.logger.Warn("Ignoring audio frame with unexpected direction",
			slog.Uint64("stream_id", uint64(header.StreamID)),
			slog.String("direction", protocol.DirectionString(header.Direction)),
		)
		return
	}

	sess, exists := d.sessions.GetSession(header.StreamID)
	if !exists {
		d.logger.Warn("Received audio for unknown stream",
			slog.Uint64("stream_id", uint64(header.StreamID)),
			slog.Uint64("sequence", uint64(payload.Sequence)),
			slog.Int("audio_size", len(payload.Data)),
		)
		return
	}

	sess.OnMediaFrame(payload.Data)

	if d.metrics != nil {
		d.metrics.RecordSamplesDecoded(len(payload.Data))
		d.metrics.SetQueueDepth(sess.Inbound.Stats().QueueDepth)
	}
}

// captureSink builds the outbound frame sink for one stream.
func (d *Dispatcher) captureSink(streamID uint32) pipeline.FrameSink {
	return pipeline.FrameSinkFunc(func(payload []byte, seq uint32) error {
		frame, err := protocol.MarshalAudioPacket(streamID, protocol.DirectionTX, seq, payload)
		if err != nil {
			return err
		}

		if d.metrics != nil {
			d.metrics.RecordBlockEmitted()
		}

		if err := d.send(frame); err != nil {
			if d.metrics != nil {
				d.metrics.RecordSendFailure()
			}
			return err
		}

		if d.metrics != nil {
			d.metrics.RecordFrameSent()
		}
		return nil
	})
}
