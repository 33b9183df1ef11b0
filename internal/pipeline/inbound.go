package pipeline

import (
	"sync/atomic"

	"github.com/outbound-ai/softphone-media/internal/g711"
)

// Inbound decodes µ-law byte frames arriving from the network into float
// samples queued for playback. Decode runs on the transport worker; the
// audio engine drains the queue on its own clock via Pull.
type Inbound struct {
	queue *SampleQueue

	closed          atomic.Bool
	samplesDecoded  atomic.Uint64
	underrunSamples atomic.Uint64
}

// InboundStats is a snapshot of inbound pipeline counters for monitoring.
type InboundStats struct {
	QueueDepth      int    `json:"queue_depth_samples"`
	QueueCapacity   int    `json:"queue_capacity_samples"`
	SamplesDecoded  uint64 `json:"samples_decoded"`
	SamplesDropped  uint64 `json:"samples_dropped"`
	UnderrunSamples uint64 `json:"underrun_samples"`
}

// NewInbound creates an inbound pipeline with a queue bounded to
// queueCapacity samples.
func NewInbound(queueCapacity int) (*Inbound, error) {
	q, err := NewSampleQueue(queueCapacity)
	if err != nil {
		return nil, err
	}
	return &Inbound{queue: q}, nil
}

// OnBytesReceived decodes one network frame of µ-law samples, in order, and
// appends the result to the playback queue. Overflow silently evicts the
// oldest queued audio; no backpressure is signalled upstream.
func (in *Inbound) OnBytesReceived(data []byte) {
	if in.closed.Load() || len(data) == 0 {
		return
	}

	samples := make([]float32, len(data))
	for i, code := range data {
		samples[i] = g711.ULawToFloat(code)
	}
	in.queue.Push(samples)
	in.samplesDecoded.Add(uint64(len(data)))
}

// Pull fills dst with up to len(dst) queued samples in FIFO order,
// zero-filling any shortfall so playback stays glitch-free. It never blocks
// or allocates. The return value is the continuation flag: false once the
// owning session has been torn down.
func (in *Inbound) Pull(dst []float32) bool {
	n := in.queue.Pull(dst)
	if short := len(dst) - n; short > 0 {
		in.underrunSamples.Add(uint64(short))
	}
	return !in.closed.Load()
}

// Close tears the pipeline down: queued samples are discarded and subsequent
// pulls report a false continuation flag (after one final silent fill).
func (in *Inbound) Close() {
	in.closed.Store(true)
	in.queue.Reset()
}

// Stats returns a snapshot of the pipeline counters.
func (in *Inbound) Stats() InboundStats {
	return InboundStats{
		QueueDepth:      in.queue.Len(),
		QueueCapacity:   in.queue.Cap(),
		SamplesDecoded:  in.samplesDecoded.Load(),
		SamplesDropped:  in.queue.Dropped(),
		UnderrunSamples: in.underrunSamples.Load(),
	}
}
