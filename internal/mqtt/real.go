package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	// outboxLimit is the number of messages held while the broker is away
	// or slow.
	outboxLimit = 256

	publishTimeout = 5 * time.Second
	closeTimeout   = 2 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Publish calls only queue
// the message; a sender goroutine talks to the broker, so a slow or
// half-open connection never holds up the caller.
type RealPublisher struct {
	client   paho.Client
	commands chan byte

	mu     sync.Mutex
	outbox *outbox

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newRealPublisher() *RealPublisher {
	return &RealPublisher{
		commands: make(chan byte, 64),
		outbox:   newOutbox(outboxLimit),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background; messages published before it is up are
// queued and sent on connect.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := newRealPublisher()

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	go p.sendLoop()

	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, queueing until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		close(p.stop)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Printf("mqtt: connected")
	if token := c.Subscribe(TopicCommand, 1, p.onCommand); token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("mqtt: subscribe %s: %v", TopicCommand, token.Error())
	}

	p.mu.Lock()
	n := p.outbox.len()
	p.mu.Unlock()
	if n > 0 {
		log.Printf("mqtt: sending %d queued messages", n)
	}
	p.kick()
}

func (p *RealPublisher) onCommand(_ paho.Client, msg paho.Message) {
	for _, b := range msg.Payload() {
		select {
		case p.commands <- b:
		default:
			log.Printf("mqtt: command queue full, dropping %q", b)
		}
	}
}

// Commands implements CommandSource.
func (p *RealPublisher) Commands() <-chan byte {
	return p.commands
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Dropped counts messages discarded because the outbox was full.
func (p *RealPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.dropped
}

// PublishReport queues a control report for the broker.
func (p *RealPublisher) PublishReport(event ReportEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained; resync covers losses
	p.enqueue(outMsg{topic: TopicReports, payload: payload, tag: event.Report.Tag})
	return nil
}

// PublishSystem queues a system lifecycle event for the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.enqueue(outMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

func (p *RealPublisher) enqueue(m outMsg) {
	p.mu.Lock()
	p.outbox.push(m)
	p.mu.Unlock()
	p.kick()
}

func (p *RealPublisher) kick() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *RealPublisher) next() (outMsg, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.pop()
}

func (p *RealPublisher) sendLoop() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			p.flush()
			return
		case <-p.wake:
			p.flush()
		}
	}
}

// flush sends queued messages while the connection is up. Messages stay
// queued while it is down.
func (p *RealPublisher) flush() {
	for p.client.IsConnectionOpen() {
		m, ok := p.next()
		if !ok {
			return
		}
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("mqtt: publish %s: timeout", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish %s: %v", m.topic, err)
		}
	}
}

// Close sends what it can of the queue within a short grace period and
// disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		select {
		case <-p.done:
		case <-time.After(closeTimeout):
			log.Printf("mqtt: close: queue not drained")
		}
		p.client.Disconnect(1000) // 1 second timeout
	})
	return nil
}
