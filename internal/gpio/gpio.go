// Package gpio provides panel inputs and indicator outputs with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Input reads one panel contact.
type Input interface {
	// Read reports whether the contact is asserted (closed to ground).
	Read() (bool, error)
}

// Output drives one indicator light.
type Output interface {
	Set(on bool) error
}

// Board opens the lines of a panel.
type Board interface {
	Input(pin int) (Input, error)
	Output(pin int) (Output, error)
	Close() error
}

// DefaultLineBase is the BCM offset of logical panel pin 0.
// Panel pins 0-21 map to BCM 4-25 and the two indicators to BCM 26-27.
const DefaultLineBase = 4
