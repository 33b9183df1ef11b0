package transport

// FrameHandler consumes raw frames received from the gateway.
type FrameHandler interface {
	HandleFrame(data []byte)
}

// FrameHandlerFunc adapts a function to the FrameHandler interface.
type FrameHandlerFunc func(data []byte)

// HandleFrame calls f(data).
func (f FrameHandlerFunc) HandleFrame(data []byte) { f(data) }

// Transport carries framed media to and from the gateway. Start begins
// delivering received frames to the handler; Send transmits one frame.
// Implementations must tolerate Send being called from multiple
// goroutines.
type Transport interface {
	Start() error
	Send(data []byte) error
	Stop() error
}
