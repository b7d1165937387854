//go:build linux

package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// HostReboot restarts the whole board. Requires CAP_SYS_BOOT.
type HostReboot struct {
	sync   func()
	reboot func(cmd int) error
}

// NewHostReboot returns a HostReboot using the reboot(2) system call.
func NewHostReboot() *HostReboot {
	return &HostReboot{sync: unix.Sync, reboot: unix.Reboot}
}

// Reboot implements Resetter.
func (h *HostReboot) Reboot() error {
	h.sync()
	if err := h.reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
