package pipeline

import (
	"fmt"
	"sync"
)

// SampleQueue is a bounded FIFO of float samples shared between the network
// decode worker (producer) and the real-time audio callback (consumer). It
// never blocks on either side: overflow drops the oldest queued samples,
// underflow is reported to the caller for silence fill. The fixed capacity
// replaces the unbounded playback array that let a fast sender grow memory
// without limit.
type SampleQueue struct {
	mu      sync.Mutex
	buf     []float32
	head    int
	size    int
	dropped uint64
}

// NewSampleQueue creates a queue holding at most capacity samples.
func NewSampleQueue(capacity int) (*SampleQueue, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("queue capacity must be at least 1 sample, got %d", capacity)
	}
	return &SampleQueue{buf: make([]float32, capacity)}, nil
}

// Push appends samples in order, evicting the oldest queued samples when the
// queue is full. Returns the number of samples dropped. Never blocks.
func (q *SampleQueue) Push(samples []float32) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	capacity := len(q.buf)
	in := samples
	dropped := 0

	// An oversized push can only ever retain its newest tail.
	if len(in) > capacity {
		dropped = len(in) - capacity
		in = in[dropped:]
	}

	// Evict oldest queued samples to make room.
	if over := q.size + len(in) - capacity; over > 0 {
		q.head = (q.head + over) % capacity
		q.size -= over
		dropped += over
	}

	tail := (q.head + q.size) % capacity
	n := copy(q.buf[tail:], in)
	copy(q.buf, in[n:])
	q.size += len(in)
	q.dropped += uint64(dropped)

	return dropped
}

// Pull pops up to len(dst) samples in FIFO order and zero-fills any
// shortfall. Returns the number of real samples written. Never blocks and
// never allocates; it runs on the real-time audio thread.
func (q *SampleQueue) Pull(dst []float32) int {
	q.mu.Lock()
	n := q.size
	if n > len(dst) {
		n = len(dst)
	}

	end := q.head + n
	if end <= len(q.buf) {
		copy(dst[:n], q.buf[q.head:end])
	} else {
		k := copy(dst[:n], q.buf[q.head:])
		copy(dst[k:n], q.buf[:end-len(q.buf)])
	}
	q.head = (q.head + n) % len(q.buf)
	q.size -= n
	q.mu.Unlock()

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n
}

// Len returns the number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the fixed queue capacity in samples.
func (q *SampleQueue) Cap() int {
	return len(q.buf)
}

// Dropped returns the total number of samples evicted by overflow.
func (q *SampleQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Reset discards all queued samples. Used at session teardown; in-flight
// audio is inherently lossy on stop, so nothing is drained.
func (q *SampleQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.head = 0
	q.size = 0
}
