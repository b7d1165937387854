package panel

import "time"

// DebounceMode selects how a pending transition is confirmed.
type DebounceMode int

const (
	// DebounceLatest accepts whatever is read once the settle deadline has
	// passed, even if it differs from the value that armed the deadline.
	DebounceLatest DebounceMode = iota
	// DebounceStable only accepts a candidate that held for the whole settle
	// window. A different candidate re-arms the deadline.
	DebounceStable
)

// ParseDebounceMode converts a flag value into a DebounceMode.
func ParseDebounceMode(s string) (DebounceMode, bool) {
	switch s {
	case "latest":
		return DebounceLatest, true
	case "stable":
		return DebounceStable, true
	}
	return 0, false
}

func (m DebounceMode) String() string {
	if m == DebounceStable {
		return "stable"
	}
	return "latest"
}

// Control is one logical switch or knob on the panel.
type Control struct {
	Tag     string
	Sampler Sampler

	value     Value
	confirmed bool

	candidate Value
	deadline  time.Time
	pending   bool
}

// NewControl creates an unconfirmed control.
func NewControl(tag string, s Sampler) *Control {
	return &Control{Tag: tag, Sampler: s}
}

// Confirmed returns the debounced value, if any.
func (c *Control) Confirmed() (Value, bool) {
	return c.value, c.confirmed
}

// Pending reports whether a transition is waiting for its settle deadline.
func (c *Control) Pending() bool {
	return c.pending
}

// Forget clears the confirmed value so the next accepted sample is reported
// as a change.
func (c *Control) Forget() {
	c.value = 0
	c.confirmed = false
}

// State returns a read-only view of the control.
func (c *Control) State() ControlState {
	return ControlState{Tag: c.Tag, Value: c.value, Confirmed: c.confirmed, Pending: c.pending}
}

// Debounce feeds one raw sample through the filter and reports whether the
// confirmed value changed on this tick.
func (c *Control) Debounce(raw Value, now time.Time, settle time.Duration, mode DebounceMode) bool {
	if c.confirmed && raw == c.value {
		// Bounce reverted before the deadline: abandon it
		c.pending = false
		return false
	}

	if !c.pending {
		c.arm(raw, now, settle)
		return false
	}

	if mode == DebounceStable && raw != c.candidate {
		c.arm(raw, now, settle)
		return false
	}

	if now.Before(c.deadline) {
		return false
	}

	c.pending = false
	c.value = raw
	c.confirmed = true
	return true
}

func (c *Control) arm(raw Value, now time.Time, settle time.Duration) {
	c.pending = true
	c.candidate = raw
	c.deadline = now.Add(settle)
}
