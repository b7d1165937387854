package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Reports contains all control reports that were published.
	Reports []ReportEvent

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishReport.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// DroppedCount controls the return value of Dropped.
	DroppedCount int

	commands chan byte
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{commands: make(chan byte, 64)}
}

// PublishReport records the report.
func (f *FakePublisher) PublishReport(event ReportEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Reports = append(f.Reports, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// SendCommand simulates a host command arriving on TopicCommand.
func (f *FakePublisher) SendCommand(b ...byte) {
	for _, c := range b {
		f.commands <- c
	}
}

// Commands implements CommandSource.
func (f *FakePublisher) Commands() <-chan byte {
	return f.commands
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Dropped returns DroppedCount.
func (f *FakePublisher) Dropped() int {
	return f.DroppedCount
}

// Frames returns the serial frames of every recorded report, in order.
func (f *FakePublisher) Frames() []string {
	out := make([]string, len(f.Reports))
	for i, r := range f.Reports {
		out[i] = string(r.Report.Frame())
	}
	return out
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Reports = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
	f.DroppedCount = 0
}
