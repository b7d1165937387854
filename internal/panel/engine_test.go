package panel

import (
	"errors"
	"testing"
	"time"
)

// bench wires the Skyhawk layout to settable pins.
type bench struct {
	pins   map[int]*pin
	engine *Engine
	now    time.Time
}

func newBench(t *testing.T, layout []Wiring, cfg Config) *bench {
	t.Helper()
	b := &bench{pins: map[int]*pin{}, now: t0}
	controls := Build(layout, func(n int) Input {
		p := &pin{}
		b.pins[n] = p
		return p
	})
	b.engine = NewEngine(controls, cfg, t0)
	return b
}

// run scans every step until d has elapsed and returns all reports.
func (b *bench) run(d, step time.Duration) []Report {
	var out []Report
	end := b.now.Add(d)
	for !b.now.After(end) {
		out = append(out, b.engine.Scan(b.now)...)
		b.now = b.now.Add(step)
	}
	return out
}

func filter(reports []Report, tag string) []Report {
	var out []Report
	for _, r := range reports {
		if r.Tag == tag {
			out = append(out, r)
		}
	}
	return out
}

func TestParkingBrakeReportedOnce(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})
	b.pins[21].on = true // engage

	reports := b.run(20*time.Millisecond, time.Millisecond)
	pb := filter(reports, "pb")
	if len(pb) != 1 {
		t.Fatalf("expected 1 pb report, got %d: %v", len(pb), pb)
	}
	if got := string(pb[0].Frame()); got != "pb=1\n" {
		t.Errorf("frame: got %q, want %q", got, "pb=1\n")
	}
	if pb[0].Reason != ReasonChange {
		t.Errorf("reason: got %s, want change", pb[0].Reason)
	}

	more := filter(b.run(5*time.Second, time.Millisecond), "pb")
	if len(more) != 0 {
		t.Errorf("expected no repeat without change or resync, got %v", more)
	}
}

func TestNoReportBeforeSettle(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})

	reports := b.run(DefaultSettle-time.Millisecond, time.Millisecond)
	if len(reports) != 0 {
		t.Errorf("expected nothing before settle, got %v", reports)
	}
	reports = b.run(time.Millisecond, time.Millisecond)
	if len(filter(reports, "bat")) != 1 {
		t.Errorf("expected bat once settle elapsed, got %v", reports)
	}
}

func TestUndefinedControlNeverReported(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: 10 * time.Millisecond})

	// mag has no default and no position asserted.
	reports := b.run(time.Second, time.Millisecond)
	if got := filter(reports, "mag"); len(got) != 0 {
		t.Errorf("expected no mag reports, got %v", got)
	}
	if got := b.engine.Counters().ReadFails; got != 0 {
		t.Errorf("a control between positions is not a read failure, got %d", got)
	}
}

func TestReadErrorsCounted(t *testing.T) {
	b := newBench(t, []Wiring{{Tag: "bat", Pin: 0}}, Config{ResyncSlot: time.Hour})
	b.pins[0].err = errors.New("line gone")

	reports := b.run(20*time.Millisecond, time.Millisecond)
	if len(reports) != 0 {
		t.Errorf("expected no reports from a failing input, got %v", reports)
	}
	if got := b.engine.Counters().ReadFails; got != 21 {
		t.Errorf("ReadFails: got %d, want 21", got)
	}
}

func TestResyncCoversEveryControl(t *testing.T) {
	layout := []Wiring{{Tag: "a", Pin: 0}, {Tag: "b", Pin: 1}, {Tag: "c", Pin: 2}}
	b := newBench(t, layout, Config{ResyncSlot: 10 * time.Second})

	initial := b.run(20*time.Millisecond, time.Millisecond)
	if len(initial) != 3 {
		t.Fatalf("expected 3 initial change reports, got %v", initial)
	}

	cycle := b.engine.ResyncCycle()
	if cycle != 30*time.Second {
		t.Fatalf("cycle: got %v, want 30s", cycle)
	}

	reports := b.run(cycle, 100*time.Millisecond)
	for _, tag := range []string{"a", "b", "c"} {
		got := filter(reports, tag)
		if len(got) == 0 {
			t.Errorf("%s: not resent within one cycle", tag)
			continue
		}
		for _, r := range got {
			if r.Reason != ReasonResync || r.Value != '0' {
				t.Errorf("%s: unexpected report %+v", tag, r)
			}
		}
	}
}

func TestIdentifyForcesFullResync(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})
	b.pins[14].on = true // mag both
	b.pins[21].on = true // parking brake engaged
	b.run(20*time.Millisecond, time.Millisecond)

	b.engine.HandleCommand('!')
	cmd, ok := b.engine.HandleCommand('?')
	if !ok || cmd != CmdIdentify {
		t.Fatalf("got (%v, %v), want identify", cmd, ok)
	}
	if b.engine.Annunciator() != ForcedOff {
		t.Errorf("annunciator: got %v, want OFF", b.engine.Annunciator())
	}
	for _, c := range b.engine.Controls() {
		if c.Confirmed {
			t.Errorf("%s still confirmed after identify", c.Tag)
		}
	}

	reports := b.run(20*time.Millisecond, time.Millisecond)
	if len(reports) != len(Skyhawk) {
		t.Fatalf("expected %d reports after identify, got %d: %v", len(Skyhawk), len(reports), reports)
	}
	if got := filter(reports, "mag"); len(got) != 1 || got[0].Value != '3' {
		t.Errorf("mag: got %v, want one mag=3", got)
	}
}

func TestAnnunciatorCommandsEmitNoReports(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})
	b.run(20*time.Millisecond, time.Millisecond)

	b.engine.HandleCommand('!')
	if b.engine.Annunciator() != ForcedOn {
		t.Errorf("after '!': got %v, want ON", b.engine.Annunciator())
	}
	if r := b.run(10*time.Millisecond, time.Millisecond); len(r) != 0 {
		t.Errorf("'!' produced reports: %v", r)
	}
	if standby, _ := b.engine.Render(b.now); !standby {
		t.Error("standby light should be lit")
	}

	b.engine.HandleCommand('.')
	if b.engine.Annunciator() != ForcedOff {
		t.Errorf("after '.': got %v, want OFF", b.engine.Annunciator())
	}
	if r := b.run(10*time.Millisecond, time.Millisecond); len(r) != 0 {
		t.Errorf("'.' produced reports: %v", r)
	}
	if standby, _ := b.engine.Render(b.now); standby {
		t.Error("standby light should be dark")
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	b := newBench(t, Skyhawk, Config{})
	if _, ok := b.engine.HandleCommand('x'); ok {
		t.Error("expected 'x' to be ignored")
	}
	c := b.engine.Counters()
	if c.Ignored != 1 || c.Commands != 0 {
		t.Errorf("counters: got %+v", c)
	}
}

func TestTestSwitchDrivesAutoBlink(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})
	b.run(20*time.Millisecond, time.Millisecond)

	b.pins[19].on = true // test position
	b.run(20*time.Millisecond, time.Millisecond)
	if b.engine.Annunciator() != AutoBlink {
		t.Fatalf("got %v, want BLINK", b.engine.Annunciator())
	}

	// A host command overrides the blink but the switch wins again on its
	// next transition into test.
	b.engine.HandleCommand('!')
	b.pins[19].on = false
	b.run(20*time.Millisecond, time.Millisecond)
	if b.engine.Annunciator() != ForcedOn {
		t.Errorf("leaving test outside AutoBlink must not change state, got %v", b.engine.Annunciator())
	}

	b.pins[19].on = true
	b.run(20*time.Millisecond, time.Millisecond)
	b.pins[19].on = false
	b.run(20*time.Millisecond, time.Millisecond)
	if b.engine.Annunciator() != ForcedOff {
		t.Errorf("leaving test from AutoBlink: got %v, want OFF", b.engine.Annunciator())
	}
}

func TestRenderAnyActive(t *testing.T) {
	b := newBench(t, Skyhawk, Config{ResyncSlot: time.Hour})
	b.run(20*time.Millisecond, time.Millisecond)
	if _, active := b.engine.Render(b.now); active {
		t.Error("all controls off: expected aggregate dark")
	}

	b.pins[0].on = true
	b.run(20*time.Millisecond, time.Millisecond)
	if _, active := b.engine.Render(b.now); !active {
		t.Error("bat on: expected aggregate lit")
	}
}

func TestRenderBlinkPhase(t *testing.T) {
	b := newBench(t, []Wiring{{Tag: "x", Pin: 0}}, Config{})
	b.engine.annunciator.Set(AutoBlink)

	tests := []struct {
		at   time.Duration
		want bool
	}{
		{0, false},
		{50 * time.Millisecond, false},
		{100 * time.Millisecond, true},
		{199 * time.Millisecond, true},
		{200 * time.Millisecond, false},
		{350 * time.Millisecond, true},
	}
	for _, tt := range tests {
		standby, active := b.engine.Render(t0.Add(tt.at))
		if standby != tt.want || active != tt.want {
			t.Errorf("at %v: got (%v, %v), want %v", tt.at, standby, active, tt.want)
		}
	}
}
