package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/skyhawk-panel/internal/panel"
	"github.com/sweeney/skyhawk-panel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"value": func(c panel.ControlState) string {
		return status.ValueString(byte(c.Value), c.Confirmed)
	},
	"valueClass": func(c panel.ControlState) string {
		switch {
		case !c.Confirmed:
			return "unknown"
		case c.Value == panel.ValueOff:
			return "off"
		}
		return "on"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Skyhawk Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Skyhawk Panel<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Controls</h2>
<table>
{{range .Panel.Controls}}<tr><th>{{.Tag}}</th><td id="ctl-{{.Tag}}" class="{{valueClass .}}">{{value .}}</td></tr>
{{end}}<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Annunciator</h2>
<table>
<tr><th>Mode</th><td>{{.Panel.Annunciator}}</td></tr>
<tr><th>Standby light</th><td class="{{if .Panel.StandbyLit}}on{{else}}off{{end}}">{{if .Panel.StandbyLit}}lit{{else}}dark{{end}}</td></tr>
<tr><th>Active light</th><td class="{{if .Panel.ActiveLit}}on{{else}}off{{end}}">{{if .Panel.ActiveLit}}lit{{else}}dark{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Host link</th><td class="{{if .LinkUp}}connected{{else}}disconnected{{end}}">{{if .LinkUp}}up{{else}}down{{end}} ({{.Config.Serial}})</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}{{if .MQTTDropped}} ({{.MQTTDropped}} dropped){{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Changes</th><td>{{.Panel.Counters.Changes}}</td></tr>
<tr><th>Resyncs</th><td>{{.Panel.Counters.Resyncs}}</td></tr>
<tr><th>Commands</th><td>{{.Panel.Counters.Commands}} ({{.Panel.Counters.Identify}} identify, {{.Panel.Counters.Ignored}} ignored)</td></tr>
<tr><th>Dropped frames</th><td>{{.Panel.Counters.Dropped}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleMs}}ms ({{.Config.DebounceMode}})</td></tr>
<tr><th>Resync slot</th><td>{{.Config.ResyncSlotMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var msg = JSON.parse(ev.data);
        if (msg.type === "identify") {
          var cells = document.querySelectorAll("[id^=ctl-]");
          for (var i = 0; i < cells.length; i++) {
            cells[i].textContent = "UNKNOWN";
            cells[i].className = "unknown";
          }
          return;
        }
        var el = document.getElementById("ctl-" + msg.tag);
        if (el) {
          el.textContent = msg.value;
          el.className = msg.value === "0" ? "off" : "on";
        }
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Ready() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	indexTmpl.Execute(w, data)
}
