//go:build !tinygo

package link

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., /dev/ttyACM0, /dev/serial0)
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout of the background reader
	ReadTimeout time.Duration
}

// DefaultConfig returns a Config for the given device.
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 50 * time.Millisecond,
	}
}

// inboundDepth is the number of host bytes buffered between ticks.
const inboundDepth = 256

// outboundDepth is the number of writes queued for the port. A host that
// stops reading fills the queue, after which the port reports no capacity.
const outboundDepth = 64

// Serial is a Transport over a serial port. Background goroutines read and
// write the port so no Transport method ever blocks the poll loop.
type Serial struct {
	port io.ReadWriteCloser
	in   chan byte
	out  chan []byte

	mu     sync.Mutex
	err    error
	closed bool
	done   chan struct{}
	wdone  chan struct{}
}

// OpenSerial opens the serial port described by cfg.
func OpenSerial(cfg Config) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}
	return NewSerial(port), nil
}

// NewSerial wraps an open port and starts the reader.
func NewSerial(port io.ReadWriteCloser) *Serial {
	s := &Serial{
		port: port,
		in:    make(chan byte, inboundDepth),
		out:   make(chan []byte, outboundDepth),
		done:  make(chan struct{}),
		wdone: make(chan struct{}),
	}
	go s.readLoop()
	go s.writeLoop()
	return s
}

func (s *Serial) readLoop() {
	defer close(s.done)
	var buf [64]byte
	overflow := false
	for {
		n, err := s.port.Read(buf[:])
		for _, b := range buf[:n] {
			select {
			case s.in <- b:
				overflow = false
			default:
				if !overflow {
					log.Printf("link: inbound buffer full (%d bytes), dropping", inboundDepth)
					overflow = true
				}
			}
		}
		if err == nil || errors.Is(err, io.EOF) && !s.isClosed() {
			// Read timeouts surface as EOF
			continue
		}
		s.fail(err)
		return
	}
}

func (s *Serial) writeLoop() {
	defer close(s.wdone)
	for b := range s.out {
		if _, err := s.port.Write(b); err != nil {
			s.fail(err)
		}
	}
}

func (s *Serial) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Serial) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil && !s.closed {
		s.err = err
		log.Printf("link: port error: %v", err)
	}
}

// Err returns the error that stopped the port, if any.
func (s *Serial) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ReadReady implements Transport.
func (s *Serial) ReadReady() bool {
	return len(s.in) > 0
}

// Read implements Transport. It never blocks.
func (s *Serial) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		select {
		case b := <-s.in:
			p[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// WriteReady implements Transport. It is false once the outbound queue is
// full, so a host that stops reading never blocks the caller.
func (s *Serial) WriteReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.err == nil && len(s.out) < cap(s.out)
}

// Write implements Transport. It queues p for the writer goroutine and
// returns 0 without error when the queue is full.
func (s *Serial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.err != nil {
		return 0, ErrClosed
	}
	select {
	case s.out <- append([]byte(nil), p...):
		return len(p), nil
	default:
		return 0, nil
	}
}

// Close closes the port and waits for the reader to exit.
func (s *Serial) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.out)
	s.mu.Unlock()

	err := s.port.Close()
	<-s.done
	<-s.wdone
	return err
}
