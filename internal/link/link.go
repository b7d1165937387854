// Package link carries panel frames to the simulator host over a byte
// stream. The real implementation is a serial port; the fake implementation
// allows testing without hardware.
package link

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrClosed  = errors.New("link: closed")
	ErrStalled = errors.New("link: write stalled")
)

// Transport is a non-blocking byte stream.
type Transport interface {
	// ReadReady reports whether Read would return at least one byte.
	ReadReady() bool
	Read(p []byte) (int, error)
	// WriteReady reports whether the link can accept output.
	WriteReady() bool
	Write(p []byte) (int, error)
}

// DefaultMaxStalls bounds consecutive zero-progress writes within a frame.
const DefaultMaxStalls = 64

// Writer writes whole frames with a bounded retry loop. Service, if set, runs
// before every attempt. It is only needed for USB stacks that must be polled
// to make progress; the host serial port and the TinyGo CDC driver service
// themselves, so neither binary sets it.
type Writer struct {
	T         Transport
	Service   func()
	MaxStalls int
}

// WriteFrame writes b until it is drained. A failed write abandons the rest of
// the frame; nothing is queued for retry.
func (w *Writer) WriteFrame(b []byte) error {
	limit := w.MaxStalls
	if limit <= 0 {
		limit = DefaultMaxStalls
	}

	stalls := 0
	for len(b) > 0 {
		if w.Service != nil {
			w.Service()
		}
		n, err := w.T.Write(b)
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if n <= 0 {
			stalls++
			if stalls >= limit {
				return fmt.Errorf("write frame: %d bytes left: %w", len(b), ErrStalled)
			}
			continue
		}
		stalls = 0
		b = b[n:]
	}
	return nil
}

// ReadCommand returns one inbound byte if one is waiting.
func ReadCommand(t Transport) (byte, bool) {
	if !t.ReadReady() {
		return 0, false
	}
	var buf [1]byte
	if n, err := t.Read(buf[:]); err != nil || n != 1 {
		return 0, false
	}
	return buf[0], true
}
