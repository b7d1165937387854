package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Controls      []ControlJSON `json:"controls"`
	Annunciator   string        `json:"annunciator"`
	Lights        LightsJSON    `json:"lights"`
	Ready         bool          `json:"ready"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	Link          LinkStatus    `json:"link"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// ControlJSON is one control's state.
type ControlJSON struct {
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Pending bool   `json:"pending,omitempty"`
}

// LightsJSON reports the indicator outputs.
type LightsJSON struct {
	Standby bool `json:"standby"`
	Active  bool `json:"active"`
}

// LinkStatus reports the host serial link.
type LinkStatus struct {
	Up     bool   `json:"up"`
	Device string `json:"device"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Dropped   int    `json:"dropped"`
}

// CountsJSON is the JSON representation of engine counters.
type CountsJSON struct {
	Changes   int `json:"changes"`
	Resyncs   int `json:"resyncs"`
	Commands  int `json:"commands"`
	Identify  int `json:"identify"`
	Dropped   int `json:"dropped"`
	Ignored   int `json:"ignored"`
	ReadFails int `json:"read_fails"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs       int64  `json:"poll_ms"`
	SettleMs     int64  `json:"settle_ms"`
	ResyncSlotMs int64  `json:"resync_slot_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	DebounceMode string `json:"debounce_mode"`
	Serial       string `json:"serial"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
}

// ValueString renders a control value, UNKNOWN before it is confirmed.
func ValueString(v byte, confirmed bool) string {
	if !confirmed {
		return "UNKNOWN"
	}
	return string([]byte{v})
}

func buildInner(snap Snapshot) StatusInner {
	p := snap.Panel
	controls := make([]ControlJSON, len(p.Controls))
	for i, c := range p.Controls {
		controls[i] = ControlJSON{
			Tag:     c.Tag,
			Value:   ValueString(byte(c.Value), c.Confirmed),
			Pending: c.Pending,
		}
	}

	return StatusInner{
		Controls:      controls,
		Annunciator:   p.Annunciator.String(),
		Lights:        LightsJSON{Standby: p.StandbyLit, Active: p.ActiveLit},
		Ready:         snap.Ready(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Link:          LinkStatus{Up: snap.LinkUp, Device: snap.Config.Serial},
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker, Dropped: snap.MQTTDropped},
		Counts: CountsJSON{
			Changes:   p.Counters.Changes,
			Resyncs:   p.Counters.Resyncs,
			Commands:  p.Counters.Commands,
			Identify:  p.Counters.Identify,
			Dropped:   p.Counters.Dropped,
			Ignored:   p.Counters.Ignored,
			ReadFails: p.Counters.ReadFails,
		},
		Config: ConfigJSON{
			PollMs:       snap.Config.PollMs,
			SettleMs:     snap.Config.SettleMs,
			ResyncSlotMs: snap.Config.ResyncSlotMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			DebounceMode: snap.Config.DebounceMode,
			Serial:       snap.Config.Serial,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
