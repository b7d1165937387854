// Package system provides the reset capability used by the host 'r' command.
package system

import (
	"fmt"
	"log"
	"os"
)

// Resetter restarts the device. On success Reboot does not return.
type Resetter interface {
	Reboot() error
}

// Exit restarts by ending the process and leaving the restart to the
// supervisor (systemd Restart=always).
type Exit struct {
	Code int

	// exit is os.Exit outside tests
	exit func(int)
}

// NewExit returns an Exit resetter with the given status code.
func NewExit(code int) *Exit {
	return &Exit{Code: code, exit: os.Exit}
}

// Reboot implements Resetter.
func (e *Exit) Reboot() error {
	log.Printf("reset: exiting with status %d for supervisor restart", e.Code)
	e.exit(e.Code)
	return nil
}

// Disabled refuses every reset request.
type Disabled struct{}

// Reboot implements Resetter.
func (Disabled) Reboot() error {
	return fmt.Errorf("reset: disabled")
}

// FromFlag builds the resetter named by the -reset flag.
func FromFlag(mode string) (Resetter, error) {
	switch mode {
	case "reboot":
		return NewHostReboot(), nil
	case "exit":
		return NewExit(3), nil
	case "off", "":
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown reset mode %q (want reboot, exit or off)", mode)
}

// FakeResetter records reboot requests.
type FakeResetter struct {
	Calls int
	Err   error
}

// Reboot implements Resetter.
func (f *FakeResetter) Reboot() error {
	f.Calls++
	return f.Err
}
