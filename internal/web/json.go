package web

import (
	"time"

	"github.com/sweeney/skyhawk-panel/internal/panel"
)

// ReportMessage is one websocket feed message.
type ReportMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Tag       string `json:"tag,omitempty"`
	Value     string `json:"value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// NewReportMessage converts a report for the feed.
func NewReportMessage(at time.Time, r panel.Report) ReportMessage {
	return ReportMessage{
		Type:      "report",
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Tag:       r.Tag,
		Value:     string([]byte{byte(r.Value)}),
		Reason:    string(r.Reason),
	}
}

// NewIdentifyMessage tells feed clients the host asked for a full resync.
func NewIdentifyMessage(at time.Time) ReportMessage {
	return ReportMessage{Type: "identify", Timestamp: at.UTC().Format(time.RFC3339Nano)}
}
