package sse

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer frames outgoing SSE payloads onto an io.Writer. Each frame is a
// single "data: <payload>\n\n" block. The Writer does no buffering of its
// own: every frame reaches the underlying writer immediately, which matters
// for latency when the writer backs a pipe into a chunked HTTP response.
type Writer struct {
	dest io.Writer
}

// NewWriter returns a Writer emitting frames to dest.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// WriteData writes a single frame carrying the given payload verbatim.
func (w *Writer) WriteData(payload string) error {
	if _, err := fmt.Fprintf(w.dest, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing sse frame: %w", err)
	}
	return nil
}

// WriteJSON marshals v and writes it as a single data frame.
func (w *Writer) WriteJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding sse payload: %w", err)
	}
	return w.WriteData(string(payload))
}
