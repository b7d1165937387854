//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealBoard opens panel lines on a Linux GPIO character device.
type RealBoard struct {
	chip  *gpiocdev.Chip
	base  int
	lines []*gpiocdev.Line
}

// NewRealBoard opens the named chip. Logical pin n maps to line base+n.
func NewRealBoard(chip string, base int) (*RealBoard, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealBoard{chip: c, base: base}, nil
}

// Input requests a panel contact. Contacts switch to ground, so lines are
// pulled up and read active-low.
func (b *RealBoard) Input(pin int) (Input, error) {
	offset := b.base + pin
	l, err := b.chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d (line %d): %w", pin, offset, err)
	}
	b.lines = append(b.lines, l)
	return realInput{line: l}, nil
}

// Output requests an indicator on logical pin n, initially dark.
func (b *RealBoard) Output(pin int) (Output, error) {
	offset := b.base + pin
	l, err := b.chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d (line %d): %w", pin, offset, err)
	}
	b.lines = append(b.lines, l)
	return realOutput{line: l}, nil
}

// Close releases every requested line.
// Lines are returned to plain inputs before closing so indicators go dark and
// nothing is left driven across a reboot.
func (b *RealBoard) Close() error {
	var errs []error
	for _, l := range b.lines {
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	b.lines = nil
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

type realInput struct {
	line *gpiocdev.Line
}

func (r realInput) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line %d: %w", r.line.Offset(), err)
	}
	return v == 1, nil
}

type realOutput struct {
	line *gpiocdev.Line
}

func (r realOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set line %d: %w", r.line.Offset(), err)
	}
	return nil
}
