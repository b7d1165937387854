//go:build tinygo

package main

import "machine"

// usbLink is the link.Transport over the USB CDC serial port.
type usbLink struct {
	port machine.Serialer
}

func newUSBLink() *usbLink {
	machine.Serial.Configure(machine.UARTConfig{})
	return &usbLink{port: machine.Serial}
}

func (u *usbLink) ReadReady() bool {
	return u.port.Buffered() > 0
}

func (u *usbLink) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && u.port.Buffered() > 0 {
		b, err := u.port.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

// WriteReady reports whether a host has the port open. Ports that cannot
// report DTR are assumed open.
func (u *usbLink) WriteReady() bool {
	if d, ok := u.port.(interface{ DTR() bool }); ok {
		return d.DTR()
	}
	return true
}

func (u *usbLink) Write(p []byte) (int, error) {
	return u.port.Write(p)
}
