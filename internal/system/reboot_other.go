//go:build !linux

package system

import "errors"

// HostReboot is not available on non-Linux platforms.
type HostReboot struct{}

// NewHostReboot returns a HostReboot that always fails.
func NewHostReboot() *HostReboot {
	return &HostReboot{}
}

// Reboot is not implemented on non-Linux platforms.
func (h *HostReboot) Reboot() error {
	return errors.New("reboot: not supported on this platform (requires Linux)")
}
