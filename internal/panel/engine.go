package panel

import "time"

// Config holds the engine timing.
type Config struct {
	Settle     time.Duration
	ResyncSlot time.Duration
	Mode       DebounceMode
}

// Engine owns every control, the annunciator and the resync cursor.
// It is driven from a single loop and is not safe for concurrent use.
type Engine struct {
	controls    []*Control
	cfg         Config
	resync      *Resync
	annunciator *Annunciator
	counters    Counters
}

// NewEngine creates an engine over the given controls. epoch anchors the
// resync slots and the blink phase.
func NewEngine(controls []*Control, cfg Config, epoch time.Time) *Engine {
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.ResyncSlot <= 0 {
		cfg.ResyncSlot = DefaultResyncSlot
	}
	return &Engine{
		controls:    controls,
		cfg:         cfg,
		resync:      NewResync(epoch, cfg.ResyncSlot, len(controls)),
		annunciator: NewAnnunciator(epoch),
	}
}

// HandleCommand applies a host byte to the engine state and returns the
// decoded command. Writing the banner for CmdIdentify and rebooting for
// CmdReboot are left to the caller, which owns the transport and the reset
// capability.
func (e *Engine) HandleCommand(b byte) (Command, bool) {
	cmd, ok := ParseCommand(b)
	if !ok {
		e.counters.Ignored++
		return 0, false
	}
	e.counters.Commands++

	switch cmd {
	case CmdActivate:
		e.annunciator.Set(ForcedOn)
	case CmdDeactivate:
		e.annunciator.Set(ForcedOff)
	case CmdIdentify:
		e.counters.Identify++
		for _, c := range e.controls {
			c.Forget()
		}
		e.annunciator.Set(ForcedOff)
	}
	return cmd, true
}

// Scan runs one debounce pass over every control and returns the reports to
// transmit, in control order. Confirmed values are committed before the
// reports are handed out.
func (e *Engine) Scan(now time.Time) []Report {
	forced := e.resync.Advance(now)

	var reports []Report
	for i, c := range e.controls {
		raw, err := c.Sampler.Sample()
		if err != nil {
			if err != ErrNoValue {
				e.counters.ReadFails++
			}
			continue
		}

		prev, had := c.Confirmed()
		if raw != prev || !had {
			if !c.Debounce(raw, now, e.cfg.Settle, e.cfg.Mode) {
				continue
			}
			if c.Tag == TestTag {
				e.annunciator.TestChanged(raw)
			}
			e.counters.Changes++
			reports = append(reports, Report{Tag: c.Tag, Value: raw, Reason: ReasonChange})
			continue
		}

		c.Debounce(raw, now, e.cfg.Settle, e.cfg.Mode)
		if i == forced {
			e.counters.Resyncs++
			reports = append(reports, Report{Tag: c.Tag, Value: raw, Reason: ReasonResync})
		}
	}
	return reports
}

// Render returns the standby light state and the aggregate "any active"
// light state at now.
func (e *Engine) Render(now time.Time) (standby, anyActive bool) {
	standby = e.annunciator.Lit(now)
	if e.annunciator.Blinking(now) {
		return standby, true
	}
	for _, c := range e.controls {
		if v, ok := c.Confirmed(); ok && v != ValueOff {
			return standby, true
		}
	}
	return standby, false
}

// NoteDropped counts a frame the transport failed to deliver.
func (e *Engine) NoteDropped() {
	e.counters.Dropped++
}

// Annunciator returns the current annunciator mode.
func (e *Engine) Annunciator() AnnunciatorState {
	return e.annunciator.State()
}

// Counters returns a copy of the counters.
func (e *Engine) Counters() Counters {
	return e.counters
}

// Controls returns a view of every control in panel order.
func (e *Engine) Controls() []ControlState {
	out := make([]ControlState, len(e.controls))
	for i, c := range e.controls {
		out[i] = c.State()
	}
	return out
}

// ResyncCycle is the time after which every control has been re-sent.
func (e *Engine) ResyncCycle() time.Duration {
	return e.resync.Cycle()
}
