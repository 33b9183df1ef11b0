package pipeline

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/outbound-ai/softphone-media/internal/g711"
)

// FrameSink receives encoded capture blocks tagged with their sequence
// number. Implementations must not block; a sink that is not ready drops the
// frame and the send path owns any loss from there.
type FrameSink interface {
	WriteFrame(payload []byte, seq uint32) error
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(payload []byte, seq uint32) error

// WriteFrame calls f.
func (f FrameSinkFunc) WriteFrame(payload []byte, seq uint32) error {
	return f(payload, seq)
}

// Outbound converts captured float blocks to big-endian 16-bit PCM frames
// and emits them to the network sink, one sequence number per block. The
// counter starts at 0 at session start and increments by exactly 1 per
// block, failures included, so the receiver can detect loss downstream.
type Outbound struct {
	sink FrameSink

	seq           atomic.Uint32
	closed        atomic.Bool
	blocksEmitted atomic.Uint64
	sendFailures  atomic.Uint64
}

// OutboundStats is a snapshot of outbound pipeline counters for monitoring.
type OutboundStats struct {
	BlocksEmitted uint64 `json:"blocks_emitted"`
	SendFailures  uint64 `json:"send_failures"`
	NextSequence  uint32 `json:"next_sequence"`
}

// NewOutbound creates an outbound pipeline emitting to sink with its
// sequence counter at 0.
func NewOutbound(sink FrameSink) *Outbound {
	return &Outbound{sink: sink}
}

// SerializeLinear packs linear samples as big-endian 16-bit PCM, high byte
// first, into a buffer of exactly 2x the sample count.
func SerializeLinear(samples []int16) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.BigEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// OnCaptureBlock encodes one block of captured float samples and emits
// (buffer, sequence) to the sink, fire-and-forget: a sink error is counted
// but the block is neither buffered nor retried. The return value is the
// continuation flag: false once the owning session has been torn down.
func (out *Outbound) OnCaptureBlock(samples []float32) bool {
	if out.closed.Load() {
		return false
	}

	linear := make([]int16, len(samples))
	for i, f := range samples {
		linear[i] = g711.FloatToLinear(f)
	}
	seq := out.seq.Load()
	if err := out.sink.WriteFrame(SerializeLinear(linear), seq); err != nil {
		out.sendFailures.Add(1)
	}
	out.seq.Store(seq + 1)
	out.blocksEmitted.Add(1)

	return true
}

// OnCaptureInputs applies the capture channel policy: the first channel of
// the first input device is taken, any other channels are ignored (not
// mixed). Mono telephony audio has no use for the duplicate channel some
// capture graphs report.
func (out *Outbound) OnCaptureInputs(channels [][]float32) bool {
	if len(channels) == 0 {
		return !out.closed.Load()
	}
	return out.OnCaptureBlock(channels[0])
}

// Sequence returns the sequence number the next emitted block will carry.
func (out *Outbound) Sequence() uint32 {
	return out.seq.Load()
}

// Close tears the pipeline down; subsequent capture blocks are ignored and
// report a false continuation flag.
func (out *Outbound) Close() {
	out.closed.Store(true)
}

// Stats returns a snapshot of the pipeline counters.
func (out *Outbound) Stats() OutboundStats {
	return OutboundStats{
		BlocksEmitted: out.blocksEmitted.Load(),
		SendFailures:  out.sendFailures.Load(),
		NextSequence:  out.seq.Load(),
	}
}
