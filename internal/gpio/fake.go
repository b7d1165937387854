package gpio

import (
	"errors"
	"fmt"
)

// FakeInput is a test double that returns scripted contact values.
type FakeInput struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples ...bool) *FakeInput {
	return &FakeInput{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeInput) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Hold replaces the script with a single value returned forever.
func (f *FakeInput) Hold(on bool) {
	f.Samples = []bool{on}
	f.index = 0
}

// Reset rewinds the script.
func (f *FakeInput) Reset() {
	f.index = 0
}

// FakeOutput records every state an indicator was set to.
type FakeOutput struct {
	States []bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// Set records the state.
func (f *FakeOutput) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	return nil
}

// On reports the last state set, false if never set.
func (f *FakeOutput) On() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}

// Changes returns the states with consecutive duplicates removed.
func (f *FakeOutput) Changes() []bool {
	var out []bool
	for _, s := range f.States {
		if len(out) == 0 || out[len(out)-1] != s {
			out = append(out, s)
		}
	}
	return out
}

// FakeBoard hands out fake lines keyed by logical pin.
type FakeBoard struct {
	Inputs  map[int]*FakeInput
	Outputs map[int]*FakeOutput
	Closed  bool
}

// NewFakeBoard creates an empty FakeBoard. Inputs default to released.
func NewFakeBoard() *FakeBoard {
	return &FakeBoard{Inputs: map[int]*FakeInput{}, Outputs: map[int]*FakeOutput{}}
}

// Input returns the fake input for pin, creating a released one on demand.
func (b *FakeBoard) Input(pin int) (Input, error) {
	if b.Closed {
		return nil, fmt.Errorf("request input pin %d: board closed", pin)
	}
	in, ok := b.Inputs[pin]
	if !ok {
		in = NewFakeInput(false)
		b.Inputs[pin] = in
	}
	return in, nil
}

// Output returns the fake output for pin, creating it on demand.
func (b *FakeBoard) Output(pin int) (Output, error) {
	if b.Closed {
		return nil, fmt.Errorf("request output pin %d: board closed", pin)
	}
	out, ok := b.Outputs[pin]
	if !ok {
		out = &FakeOutput{}
		b.Outputs[pin] = out
	}
	return out, nil
}

// Close marks the board as closed.
func (b *FakeBoard) Close() error {
	b.Closed = true
	return nil
}
