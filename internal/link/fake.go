package link

import "bytes"

// FakeTransport is a test double that scripts inbound bytes and records
// outbound bytes.
type FakeTransport struct {
	// Inbound holds the bytes the host has sent and not yet been read.
	Inbound []byte

	// Out collects everything written.
	Out bytes.Buffer

	// NotWritable makes WriteReady report false.
	NotWritable bool

	// Chunk limits how many bytes one Write accepts (0 = all).
	Chunk int

	// FailAfter makes every Write after the first FailAfter calls return
	// WriteError (negative = never).
	FailAfter  int
	WriteError error

	// Stall makes Write accept nothing.
	Stall bool

	// Writes counts Write calls.
	Writes int
}

// NewFakeTransport creates a FakeTransport that never fails.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{FailAfter: -1, WriteError: ErrClosed}
}

// Send queues host bytes.
func (f *FakeTransport) Send(b ...byte) {
	f.Inbound = append(f.Inbound, b...)
}

// ReadReady implements Transport.
func (f *FakeTransport) ReadReady() bool {
	return len(f.Inbound) > 0
}

// Read implements Transport.
func (f *FakeTransport) Read(p []byte) (int, error) {
	n := copy(p, f.Inbound)
	f.Inbound = f.Inbound[n:]
	return n, nil
}

// WriteReady implements Transport.
func (f *FakeTransport) WriteReady() bool {
	return !f.NotWritable
}

// Write implements Transport.
func (f *FakeTransport) Write(p []byte) (int, error) {
	f.Writes++
	if f.FailAfter >= 0 && f.Writes > f.FailAfter {
		return 0, f.WriteError
	}
	if f.Stall {
		return 0, nil
	}
	if f.Chunk > 0 && len(p) > f.Chunk {
		p = p[:f.Chunk]
	}
	return f.Out.Write(p)
}

// Lines returns the written output split into lines, terminators included.
func (f *FakeTransport) Lines() []string {
	var out []string
	for _, l := range bytes.SplitAfter(f.Out.Bytes(), []byte{'\n'}) {
		if len(l) > 0 {
			out = append(out, string(l))
		}
	}
	return out
}
