package panel

// Wire connects one input pin to the value it selects.
type Wire struct {
	Pin   int
	Value Value
}

// Wiring describes how one control is connected. A control with no
// Positions is a Switch on Pin; otherwise it is a Selector.
type Wiring struct {
	Tag        string
	Desc       string
	Pin        int
	Positions  []Wire
	Default    Value
	HasDefault bool
}

// Pins lists every input pin the control uses.
func (w Wiring) Pins() []int {
	if len(w.Positions) == 0 {
		return []int{w.Pin}
	}
	pins := make([]int, len(w.Positions))
	for i, p := range w.Positions {
		pins[i] = p.Pin
	}
	return pins
}

// Build creates the controls for a layout. open returns the input for a pin.
func Build(layout []Wiring, open func(pin int) Input) []*Control {
	controls := make([]*Control, len(layout))
	for i, w := range layout {
		if len(w.Positions) == 0 {
			controls[i] = NewControl(w.Tag, Switch{In: open(w.Pin)})
			continue
		}
		sel := Selector{Default: w.Default, HasDefault: w.HasDefault}
		for _, p := range w.Positions {
			sel.Positions = append(sel.Positions, Position{In: open(p.Pin), Value: p.Value})
		}
		controls[i] = NewControl(w.Tag, sel)
	}
	return controls
}

// Skyhawk is the electrical panel of a Cessna 172 SP. Pins are logical
// indices 0-21; the board support maps them to hardware lines.
var Skyhawk = []Wiring{
	{Tag: "bat", Desc: "battery", Pin: 0},
	{Tag: "alt", Desc: "alternator", Pin: 1},
	{Tag: "av1", Desc: "avionics bus 1", Pin: 2},
	{Tag: "av2", Desc: "avionics bus 2", Pin: 3},
	{Tag: "ph", Desc: "pitot heat", Pin: 4},
	{Tag: "fp", Desc: "electric fuel pump", Pin: 5},
	{Tag: "lb", Desc: "beacon light", Pin: 6},
	{Tag: "ll", Desc: "landing lights", Pin: 7},
	{Tag: "lt", Desc: "taxi light", Pin: 8},
	{Tag: "ln", Desc: "nav lights", Pin: 9},
	{Tag: "ls", Desc: "strobe lights", Pin: 10},
	{Tag: "mag", Desc: "magnetos", Positions: []Wire{
		{Pin: 11, Value: '0'}, // off
		{Pin: 12, Value: '1'}, // left
		{Pin: 13, Value: '2'}, // right
		{Pin: 14, Value: '3'}, // both
		{Pin: 15, Value: '4'}, // start
	}},
	{Tag: "fl", Desc: "flaps", Default: '0', HasDefault: true, Positions: []Wire{
		{Pin: 16, Value: '-'},
		{Pin: 17, Value: '+'},
	}},
	{Tag: TestTag, Desc: "standby power / annunciator test", Default: '0', HasDefault: true, Positions: []Wire{
		{Pin: 18, Value: '1'},
		{Pin: 19, Value: ValueTest},
	}},
	{Tag: "pb", Desc: "parking brake", Positions: []Wire{
		{Pin: 20, Value: '-'},
		{Pin: 21, Value: '1'},
	}},
}

// Indicator pins, in the same logical numbering as Skyhawk.
const (
	PinStandbyLight  = 22
	PinActivityLight = 23
)
