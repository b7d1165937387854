// Package status provides a thread-safe status tracker for the panel daemon.
// It is read by the HTTP handlers and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/skyhawk-panel/internal/panel"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs       int64
	SettleMs     int64
	ResyncSlotMs int64
	HeartbeatMs  int64
	DebounceMode string
	Serial       string
	Broker       string
	HTTPAddr     string
}

// Panel is the engine state copied out of the poll loop.
type Panel struct {
	Controls    []panel.ControlState
	Annunciator panel.AnnunciatorState
	Counters    panel.Counters
	StandbyLit  bool
	ActiveLit   bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Panel         Panel
	StartTime     time.Time
	Now           time.Time
	LinkUp        bool
	MQTTConnected bool
	MQTTDropped   int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether every control has a confirmed value.
func (s Snapshot) Ready() bool {
	if len(s.Panel.Controls) == 0 {
		return false
	}
	for _, c := range s.Panel.Controls {
		if !c.Confirmed {
			return false
		}
	}
	return true
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the panel state. The caller must not modify p.Controls
// afterwards.
func (t *Tracker) Update(p Panel) {
	t.mu.Lock()
	t.snap.Panel = p
	t.mu.Unlock()
}

// SetLinkUp sets whether the host link accepts writes.
func (t *Tracker) SetLinkUp(up bool) {
	t.mu.Lock()
	t.snap.LinkUp = up
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTDropped sets the number of MQTT messages dropped from a full queue.
func (t *Tracker) SetMQTTDropped(n int) {
	t.mu.Lock()
	t.snap.MQTTDropped = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
