//go:build tinygo

// Command skyhawk-pico is the Raspberry Pi Pico firmware build of the panel.
// Panel pin n is GPn, the standby light is GP22 and the activity light is the
// on-board LED. The host link is the USB CDC serial port.
package main

import (
	"machine"
	"time"

	"github.com/sweeney/skyhawk-panel/internal/link"
	"github.com/sweeney/skyhawk-panel/internal/panel"
)

func main() {
	usb := newUSBLink()

	controls := panel.Build(panel.Skyhawk, func(pin int) panel.Input {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		return pullUp{p}
	})
	standby := output(machine.Pin(panel.PinStandbyLight))
	active := output(machine.LED)

	start := time.Now()
	engine := panel.NewEngine(controls, panel.Config{}, start)
	writer := &link.Writer{T: usb}

	for {
		now := time.Now()

		if b, ok := link.ReadCommand(usb); ok {
			switch cmd, _ := engine.HandleCommand(b); cmd {
			case panel.CmdIdentify:
				writer.WriteFrame([]byte(panel.Banner))
			case panel.CmdReboot:
				reset()
			}
		}

		if usb.WriteReady() {
			for _, r := range engine.Scan(now) {
				if writer.WriteFrame(r.Frame()) != nil {
					engine.NoteDropped()
				}
			}
		}

		s, a := engine.Render(now)
		standby.Set(s)
		active.Set(a)

		time.Sleep(100 * time.Microsecond)
	}
}

// pullUp reads a pulled-up input wired to ground through the switch.
type pullUp struct {
	pin machine.Pin
}

func (p pullUp) Read() (bool, error) {
	return !p.pin.Get(), nil
}

func output(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return p
}

// reset restarts the chip through the watchdog.
func reset() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
		time.Sleep(time.Millisecond)
	}
}
