package llm

// StreamEvent is one element of a vendor streaming response, delivered over
// a channel by the model client. Exactly one of the concrete types below is
// sent per element; a StreamStop or StreamError is terminal and is the last
// event before the channel closes.
type StreamEvent interface {
	streamEvent()
}

// ContentDelta carries one incremental text fragment. Deltas are
// order-significant: concatenated in receipt order they form the full
// assistant message. Empty fragments are legal and preserved.
type ContentDelta struct {
	Text string
}

// StreamStop terminates a stream normally. Usage is nil when the vendor did
// not deliver token counts before stopping.
type StreamStop struct {
	StopReason string
	Usage      *Usage
}

// StreamError terminates a stream after a mid-stream vendor failure.
// Deltas already delivered remain valid partial output.
type StreamError struct {
	Err error
}

func (ContentDelta) streamEvent() {}
func (StreamStop) streamEvent()   {}
func (StreamError) streamEvent()  {}
