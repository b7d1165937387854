package mqtt

import "log"

// outMsg is a serialized message waiting for the sender goroutine.
type outMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool

	// tag is the control a report belongs to, empty for system events
	tag string
}

// outbox is the bounded queue between the panel loop and the broker. A newer
// report for a control replaces the queued one, so a backlog never carries
// stale values. When full, the oldest message is dropped; the resync cycle
// re-sends every control anyway. Not safe for concurrent use.
type outbox struct {
	msgs     []outMsg
	limit    int
	dropped  int
	replaced int
	overflow bool // true while dropping, cleared once the queue empties
}

func newOutbox(limit int) *outbox {
	return &outbox{msgs: make([]outMsg, 0, limit), limit: limit}
}

func (o *outbox) push(m outMsg) {
	if m.tag != "" {
		for i := range o.msgs {
			if o.msgs[i].tag == m.tag {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				o.replaced++
				break
			}
		}
	}
	if len(o.msgs) == o.limit {
		if !o.overflow {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.limit)
			o.overflow = true
		}
		o.msgs = append(o.msgs[:0], o.msgs[1:]...)
		o.dropped++
	}
	o.msgs = append(o.msgs, m)
}

// pop removes and returns the oldest message.
func (o *outbox) pop() (outMsg, bool) {
	if len(o.msgs) == 0 {
		o.overflow = false
		return outMsg{}, false
	}
	m := o.msgs[0]
	o.msgs = append(o.msgs[:0], o.msgs[1:]...)
	return m, true
}

func (o *outbox) len() int {
	return len(o.msgs)
}
