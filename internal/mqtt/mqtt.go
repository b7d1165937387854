// Package mqtt mirrors panel reports to MQTT and accepts host commands from
// a command topic, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/skyhawk-panel/internal/panel"
)

// TopicReports is the MQTT topic for control reports.
const TopicReports = "sim/skyhawk/panel/reports"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sim/skyhawk/panel/system"

// TopicCommand is the MQTT topic the panel takes host command bytes from.
const TopicCommand = "sim/skyhawk/panel/command"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishReport sends a control report to the broker. It must not block
	// the caller on the network.
	// Returns error if publishing fails (should not crash the process).
	PublishReport(event ReportEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports the state of the MQTT connection.
type ConnectionStatus interface {
	IsConnected() bool

	// Dropped counts messages discarded because the outbound queue was full.
	Dropped() int
}

// CommandSource delivers host command bytes received over MQTT.
type CommandSource interface {
	Commands() <-chan byte
}

// ReportEvent is a control report with the time it was emitted.
type ReportEvent struct {
	Timestamp time.Time
	Report    panel.Report
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "IDENTIFY"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Control ControlPayload `json:"control"`
}

// ControlPayload contains the report details.
type ControlPayload struct {
	Timestamp string `json:"timestamp"`
	Tag       string `json:"tag"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`
	Frame     string `json:"frame"`
}

// FormatPayload creates the JSON payload for a control report.
func FormatPayload(event ReportEvent) ([]byte, error) {
	r := event.Report
	payload := Payload{
		Control: ControlPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Tag:       r.Tag,
			Value:     string([]byte{byte(r.Value)}),
			Reason:    string(r.Reason),
			Frame:     string(r.Frame()),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
