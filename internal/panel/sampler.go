package panel

import "errors"

// ErrNoValue means no position of a control is asserted, as when a knob
// rests between detents. It is not a read failure.
var ErrNoValue = errors.New("panel: no definite value")

// Input is one digital input. Read reports whether the contact is asserted.
type Input interface {
	Read() (bool, error)
}

// Sampler produces the raw symbolic value of a control. It returns
// ErrNoValue when nothing is asserted and the input error when a read fails.
type Sampler interface {
	Sample() (Value, error)
}

// Switch is a two-position control wired to a single input.
// Asserted reports '1', released reports '0'.
type Switch struct {
	In Input
}

// Sample implements Sampler.
func (s Switch) Sample() (Value, error) {
	on, err := s.In.Read()
	if err != nil {
		return 0, err
	}
	if on {
		return '1', nil
	}
	return ValueOff, nil
}

// Position maps one input of a selector to the value it reports.
type Position struct {
	In    Input
	Value Value
}

// Selector is a multi-position control with mutually exclusive inputs.
// Positions are checked in order and the first asserted one wins. When none
// is asserted, Default is reported if HasDefault is set.
type Selector struct {
	Positions  []Position
	Default    Value
	HasDefault bool
}

// Sample implements Sampler.
func (s Selector) Sample() (Value, error) {
	for _, p := range s.Positions {
		on, err := p.In.Read()
		if err != nil {
			return 0, err
		}
		if on {
			return p.Value, nil
		}
	}
	if s.HasDefault {
		return s.Default, nil
	}
	return 0, ErrNoValue
}
