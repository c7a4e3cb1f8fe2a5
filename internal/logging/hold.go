package logging

import (
	"bytes"
	"io"
	"sync"
)

// HoldWriter passes writes through to an underlying writer except while
// held. Held output is queued and written in order on Release. Playback holds
// it so log lines do not land on top of the picture.
type HoldWriter struct {
	mu   sync.Mutex
	w    io.Writer
	held bool
	buf  bytes.Buffer
}

// NewHoldWriter wraps w.
func NewHoldWriter(w io.Writer) *HoldWriter {
	return &HoldWriter{w: w}
}

// Write implements io.Writer.
func (h *HoldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held {
		return h.buf.Write(p)
	}
	return h.w.Write(p)
}

// Hold starts queueing writes.
func (h *HoldWriter) Hold() {
	h.mu.Lock()
	h.held = true
	h.mu.Unlock()
}

// Release writes the queued output and resumes passing writes through.
func (h *HoldWriter) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.held = false
	if h.buf.Len() == 0 {
		return nil
	}
	_, err := h.buf.WriteTo(h.w)
	h.buf.Reset()
	return err
}
