package panel

import "time"

// AnnunciatorState is the mode of the standby annunciator light.
type AnnunciatorState int

const (
	ForcedOff AnnunciatorState = iota
	ForcedOn
	AutoBlink
)

func (s AnnunciatorState) String() string {
	switch s {
	case ForcedOn:
		return "ON"
	case AutoBlink:
		return "BLINK"
	default:
		return "OFF"
	}
}

// Annunciator drives the standby power / test light.
type Annunciator struct {
	epoch time.Time
	state AnnunciatorState
}

// NewAnnunciator returns an annunciator in ForcedOff.
func NewAnnunciator(epoch time.Time) *Annunciator {
	return &Annunciator{epoch: epoch}
}

// State returns the current mode.
func (a *Annunciator) State() AnnunciatorState {
	return a.state
}

// Set forces a mode. Used by host commands.
func (a *Annunciator) Set(s AnnunciatorState) {
	a.state = s
}

// TestChanged is called when the test control confirms a new value.
func (a *Annunciator) TestChanged(v Value) {
	if v == ValueTest {
		a.state = AutoBlink
		return
	}
	if a.state == AutoBlink {
		a.state = ForcedOff
	}
}

// Lit reports whether the light is on at now.
func (a *Annunciator) Lit(now time.Time) bool {
	switch a.state {
	case ForcedOn:
		return true
	case AutoBlink:
		return blinkPhase(now.Sub(a.epoch))
	}
	return false
}

// Blinking reports whether the light is in AutoBlink and currently lit.
func (a *Annunciator) Blinking(now time.Time) bool {
	return a.state == AutoBlink && a.Lit(now)
}

func blinkPhase(elapsed time.Duration) bool {
	if elapsed < 0 {
		elapsed = 0
	}
	return (elapsed/BlinkHalfPeriod)%2 != 0
}
