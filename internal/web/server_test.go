package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sweeney/skyhawk-panel/internal/panel"
	"github.com/sweeney/skyhawk-panel/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *Hub) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:       1,
		SettleMs:     8,
		ResyncSlotMs: 10000,
		HeartbeatMs:  900000,
		DebounceMode: "latest",
		Serial:       "/dev/ttyACM0",
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":8080",
	}
	tr := status.NewTracker(start, cfg)
	hub := NewHub()
	srv := New(":0", tr, hub)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return ts, tr, hub
}

func testPanel() status.Panel {
	return status.Panel{
		Controls: []panel.ControlState{
			{Tag: "bat", Value: '1', Confirmed: true},
			{Tag: "sb", Value: '?', Confirmed: true},
			{Tag: "pb"},
		},
		Annunciator: panel.AutoBlink,
		Counters:    panel.Counters{Changes: 5, Resyncs: 2},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(testPanel())
	tr.SetMQTTConnected(true)
	tr.SetLinkUp(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if len(sj.Status.Controls) != 3 {
		t.Fatalf("controls: got %d, want 3", len(sj.Status.Controls))
	}
	if sj.Status.Controls[1].Value != "?" {
		t.Errorf("sb: got %q, want ?", sj.Status.Controls[1].Value)
	}
	if sj.Status.Controls[2].Value != "UNKNOWN" {
		t.Errorf("pb: got %q, want UNKNOWN", sj.Status.Controls[2].Value)
	}
	if sj.Status.Annunciator != "BLINK" {
		t.Errorf("annunciator: got %q, want BLINK", sj.Status.Annunciator)
	}
	if !sj.Status.MQTT.Connected || !sj.Status.Link.Up {
		t.Error("expected MQTT and link up")
	}
	if sj.Status.Counts.Changes != 5 {
		t.Errorf("Counts.Changes: got %d, want 5", sj.Status.Counts.Changes)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Config.Broker: got %q", sj.Status.Config.Broker)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(testPanel())
	tr.SetMQTTDropped(2)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`id="ctl-bat"`, `id="ctl-pb" class="unknown"`, "BLINK", "Skyhawk Panel", "(2 dropped)"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestWebsocketFeed(t *testing.T) {
	ts, _, hub := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.Len() != 1 {
		t.Fatalf("clients: got %d, want 1", hub.Len())
	}

	at := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	hub.Broadcast(NewReportMessage(at, panel.Report{Tag: "mag", Value: '4', Reason: panel.ReasonChange}))
	hub.Broadcast(NewIdentifyMessage(at))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg ReportMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := ReportMessage{Type: "report", Timestamp: "2026-01-01T00:00:01Z", Tag: "mag", Value: "4", Reason: "change"}
	if msg != want {
		t.Errorf("got %+v, want %+v", msg, want)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "identify" {
		t.Errorf("type: got %q, want identify", msg.Type)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	ts, _, hub := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hub.Close()
	if hub.Len() != 0 {
		t.Errorf("clients after close: got %d, want 0", hub.Len())
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read to fail after hub close")
	}

	// Broadcasting with no clients is a no-op.
	hub.Broadcast(NewIdentifyMessage(time.Now()))
}
