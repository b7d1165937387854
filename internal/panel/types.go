// Package panel contains the pure logic of the switch panel: sampling,
// debouncing, resync scheduling, the standby annunciator and the host
// protocol. This package has NO external dependencies (no GPIO, serial, OS,
// or time.Sleep). Time is always injectable via time.Time parameters.
package panel

import "time"

// Value is the symbolic byte a control reports on the wire.
type Value byte

// ValueOff is the value every control reports in its rest position.
const ValueOff Value = '0'

// ValueTest is the standby switch position that starts the annunciator test.
const ValueTest Value = '?'

// Default timing.
const (
	DefaultSettle     = 8 * time.Millisecond
	DefaultResyncSlot = 10 * time.Second
	BlinkHalfPeriod   = 100 * time.Millisecond
)

// TestTag is the tag of the control that drives the annunciator test.
const TestTag = "sb"

// Reason says why a report was emitted.
type Reason string

const (
	ReasonChange Reason = "change"
	ReasonResync Reason = "resync"
)

// Report is one outbound tag=value frame.
type Report struct {
	Tag    string
	Value  Value
	Reason Reason
}

// Counters tracks totals since startup.
type Counters struct {
	Changes   int
	Resyncs   int
	Commands  int
	Identify  int
	Dropped   int
	Ignored   int
	ReadFails int // input read errors, not controls between positions
}

// ControlState is a read-only view of one control.
type ControlState struct {
	Tag       string
	Value     Value
	Confirmed bool
	Pending   bool
}
