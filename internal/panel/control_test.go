package panel

import (
	"errors"
	"testing"
	"time"
)

// pin is a settable Input for tests.
type pin struct {
	on  bool
	err error
}

func (p *pin) Read() (bool, error) { return p.on, p.err }

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// confirmedControl returns a control whose confirmed value is v.
func confirmedControl(t *testing.T, v Value) *Control {
	t.Helper()
	c := NewControl("x", nil)
	c.Debounce(v, t0, DefaultSettle, DebounceLatest)
	if !c.Debounce(v, t0.Add(DefaultSettle), DefaultSettle, DebounceLatest) {
		t.Fatal("setup: control did not confirm")
	}
	return c
}

func TestSwitchSample(t *testing.T) {
	p := &pin{}
	s := Switch{In: p}

	v, err := s.Sample()
	if err != nil || v != '0' {
		t.Errorf("released: got (%q, %v), want ('0', nil)", v, err)
	}

	p.on = true
	v, err = s.Sample()
	if err != nil || v != '1' {
		t.Errorf("asserted: got (%q, %v), want ('1', nil)", v, err)
	}

	p.err = errors.New("line gone")
	if _, err := s.Sample(); err != p.err {
		t.Errorf("got %v, want the read error", err)
	}
}

func TestSelectorPriority(t *testing.T) {
	a, b, c := &pin{}, &pin{}, &pin{}
	sel := Selector{Positions: []Position{{a, '-'}, {b, '+'}, {c, '*'}}}

	tests := []struct {
		name    string
		a, b    bool
		c       bool
		want    Value
		wantErr error
	}{
		{"none", false, false, false, 0, ErrNoValue},
		{"first", true, false, false, '-', nil},
		{"second", false, true, false, '+', nil},
		{"first wins over later", true, true, true, '-', nil},
		{"second wins over third", false, true, true, '+', nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.on, b.on, c.on = tt.a, tt.b, tt.c
			v, err := sel.Sample()
			if err != tt.wantErr || v != tt.want {
				t.Errorf("got (%q, %v), want (%q, %v)", v, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestSelectorDefault(t *testing.T) {
	a := &pin{}
	sel := Selector{Positions: []Position{{a, '-'}}, Default: '0', HasDefault: true}

	v, err := sel.Sample()
	if err != nil || v != '0' {
		t.Errorf("got (%q, %v), want ('0', nil)", v, err)
	}

	a.err = errors.New("boom")
	if _, err := sel.Sample(); err != a.err {
		t.Errorf("got %v, want the read error even with a default", err)
	}
}

func TestDebounceFirstSample(t *testing.T) {
	c := NewControl("bat", nil)

	if c.Debounce('1', t0, DefaultSettle, DebounceLatest) {
		t.Error("first sample must only arm the deadline")
	}
	if _, ok := c.Confirmed(); ok {
		t.Error("expected no confirmed value yet")
	}
	if !c.Pending() {
		t.Error("expected pending deadline")
	}

	if c.Debounce('1', t0.Add(DefaultSettle-time.Microsecond), DefaultSettle, DebounceLatest) {
		t.Error("accepted before settle duration")
	}
	if !c.Debounce('1', t0.Add(DefaultSettle), DefaultSettle, DebounceLatest) {
		t.Fatal("expected accept at settle duration")
	}
	if v, ok := c.Confirmed(); !ok || v != '1' {
		t.Errorf("confirmed: got (%q, %v), want ('1', true)", v, ok)
	}
	if c.Pending() {
		t.Error("deadline should be cleared after accept")
	}
}

func TestDebounceBounceCancelled(t *testing.T) {
	c := confirmedControl(t, '0')
	now := t0.Add(time.Second)

	c.Debounce('1', now, DefaultSettle, DebounceLatest)
	if c.Debounce('0', now.Add(3*time.Millisecond), DefaultSettle, DebounceLatest) {
		t.Error("revert to confirmed value must not report")
	}
	if c.Pending() {
		t.Error("revert must cancel the deadline")
	}

	// A later '1' starts a fresh window instead of completing the old one.
	if c.Debounce('1', now.Add(10*time.Millisecond), DefaultSettle, DebounceLatest) {
		t.Error("stale deadline was honoured")
	}
	if v, _ := c.Confirmed(); v != '0' {
		t.Errorf("confirmed: got %q, want '0'", v)
	}
}

func TestDebounceLatestAcceptsCurrentSample(t *testing.T) {
	c := confirmedControl(t, '0')
	now := t0.Add(time.Second)

	c.Debounce('1', now, DefaultSettle, DebounceLatest)
	c.Debounce('2', now.Add(2*time.Millisecond), DefaultSettle, DebounceLatest)
	if !c.Debounce('3', now.Add(DefaultSettle), DefaultSettle, DebounceLatest) {
		t.Fatal("expected accept at deadline")
	}
	if v, _ := c.Confirmed(); v != '3' {
		t.Errorf("confirmed: got %q, want '3'", v)
	}
}

func TestDebounceStableRequiresFullWindow(t *testing.T) {
	c := confirmedControl(t, '0')
	now := t0.Add(time.Second)

	c.Debounce('1', now, DefaultSettle, DebounceStable)
	c.Debounce('2', now.Add(4*time.Millisecond), DefaultSettle, DebounceStable)
	if c.Debounce('2', now.Add(DefaultSettle), DefaultSettle, DebounceStable) {
		t.Error("candidate '2' has only held for 4ms")
	}
	if !c.Debounce('2', now.Add(4*time.Millisecond+DefaultSettle), DefaultSettle, DebounceStable) {
		t.Fatal("expected accept once '2' held for the full window")
	}
	if v, _ := c.Confirmed(); v != '2' {
		t.Errorf("confirmed: got %q, want '2'", v)
	}
}

func TestForget(t *testing.T) {
	c := confirmedControl(t, '1')
	c.Forget()
	if _, ok := c.Confirmed(); ok {
		t.Error("expected unconfirmed after Forget")
	}
	// Same raw value as before must now be re-confirmed and reported.
	c.Debounce('1', t0.Add(time.Second), DefaultSettle, DebounceLatest)
	if !c.Debounce('1', t0.Add(time.Second+DefaultSettle), DefaultSettle, DebounceLatest) {
		t.Error("expected re-confirmation after Forget")
	}
}

func TestParseDebounceMode(t *testing.T) {
	if m, ok := ParseDebounceMode("stable"); !ok || m != DebounceStable {
		t.Errorf("stable: got (%v, %v)", m, ok)
	}
	if m, ok := ParseDebounceMode("latest"); !ok || m != DebounceLatest {
		t.Errorf("latest: got (%v, %v)", m, ok)
	}
	if _, ok := ParseDebounceMode("fast"); ok {
		t.Error("expected unknown mode to be rejected")
	}
}
