package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/skyhawk-panel/internal/gpio"
	"github.com/sweeney/skyhawk-panel/internal/link"
	"github.com/sweeney/skyhawk-panel/internal/mqtt"
	"github.com/sweeney/skyhawk-panel/internal/panel"
	"github.com/sweeney/skyhawk-panel/internal/status"
	"github.com/sweeney/skyhawk-panel/internal/system"
	"github.com/sweeney/skyhawk-panel/internal/web"
)

// statusEvery bounds how often the status tracker is refreshed when nothing
// else happened on a tick.
const statusEvery = 250 * time.Millisecond

// loop is the single cooperative control loop. Every optional collaborator
// may be nil.
type loop struct {
	engine  *panel.Engine
	link    link.Transport
	writer  *link.Writer
	standby gpio.Output
	active  gpio.Output

	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	remote     <-chan byte
	hub        *web.Hub
	tracker    *status.Tracker
	resetter   system.Resetter

	heartbeat time.Duration
	verbose   bool
	now       func() time.Time

	lastHeartbeat time.Time
	lastStatus    time.Time
	lights        [2]bool
	lightsSet     bool
}

func (l *loop) run(tick <-chan time.Time, sig <-chan os.Signal) error {
	l.lastHeartbeat = l.now()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.publishLifecycle("SHUTDOWN", signalName)
			return nil

		case <-tick:
			l.step(l.now())
		}
	}
}

// step performs one pass: at most one inbound command, then a scan when the
// host can accept data, then the indicator refresh.
func (l *loop) step(t time.Time) {
	changed := false

	if b, ok := l.nextCommand(); ok {
		l.handleCommand(b, t)
		changed = true
	}

	writable := l.link.WriteReady()
	if writable {
		reports := l.engine.Scan(t)
		for _, r := range reports {
			l.send(r, t)
		}
		changed = changed || len(reports) > 0
	}

	standby, active := l.engine.Render(t)
	l.setLights(standby, active)

	if l.heartbeat > 0 && t.Sub(l.lastHeartbeat) >= l.heartbeat {
		l.lastHeartbeat = t
		c := l.engine.Counters()
		log.Printf("heartbeat: changes=%d resyncs=%d commands=%d dropped=%d read_fails=%d",
			c.Changes, c.Resyncs, c.Commands, c.Dropped, c.ReadFails)
		l.updateStatus(t, writable)
		l.publishStatus("HEARTBEAT", "", false)
		return
	}

	if changed || t.Sub(l.lastStatus) >= statusEvery {
		l.updateStatus(t, writable)
	}
}

func (l *loop) nextCommand() (byte, bool) {
	if b, ok := link.ReadCommand(l.link); ok {
		return b, true
	}
	select {
	case b := <-l.remote:
		return b, true
	default:
		return 0, false
	}
}

func (l *loop) handleCommand(b byte, t time.Time) {
	cmd, ok := l.engine.HandleCommand(b)
	if !ok {
		if l.verbose {
			log.Printf("ignored command byte 0x%02x", b)
		}
		return
	}
	log.Printf("command: %s", cmd)

	switch cmd {
	case panel.CmdIdentify:
		if err := l.writer.WriteFrame([]byte(panel.Banner)); err != nil {
			log.Printf("banner write error: %v", err)
		}
		if l.hub != nil {
			l.hub.Broadcast(web.NewIdentifyMessage(t))
		}
		l.publishStatus("IDENTIFY", "", false)
	case panel.CmdReboot:
		l.publishStatus("RESET", "host", true)
		if err := l.resetter.Reboot(); err != nil {
			log.Printf("reset failed: %v", err)
		}
	}
}

// send delivers one report to the host and mirrors it to the optional
// observers. A report the link could not carry still counts as committed.
func (l *loop) send(r panel.Report, t time.Time) {
	if err := l.writer.WriteFrame(r.Frame()); err != nil {
		l.engine.NoteDropped()
		log.Printf("dropped %q: %v", r.Frame(), err)
	} else if l.verbose {
		log.Printf("report: %s=%c (%s)", r.Tag, r.Value, r.Reason)
	}

	if l.publisher != nil {
		if err := l.publisher.PublishReport(mqtt.ReportEvent{Timestamp: t, Report: r}); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
	if l.hub != nil {
		l.hub.Broadcast(web.NewReportMessage(t, r))
	}
}

func (l *loop) setLights(standby, active bool) {
	if l.lightsSet && l.lights == [2]bool{standby, active} {
		return
	}
	if err := l.standby.Set(standby); err != nil {
		log.Printf("standby light: %v", err)
		return
	}
	if err := l.active.Set(active); err != nil {
		log.Printf("activity light: %v", err)
		return
	}
	l.lights = [2]bool{standby, active}
	l.lightsSet = true
}

func (l *loop) updateStatus(t time.Time, linkUp bool) {
	l.lastStatus = t
	if l.tracker == nil {
		return
	}
	l.tracker.Update(status.Panel{
		Controls:    l.engine.Controls(),
		Annunciator: l.engine.Annunciator(),
		Counters:    l.engine.Counters(),
		StandbyLit:  l.lights[0],
		ActiveLit:   l.lights[1],
	})
	l.tracker.SetLinkUp(linkUp)
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		l.tracker.SetMQTTDropped(l.mqttStatus.Dropped())
	}
}

// publishLifecycle publishes a retained STARTUP or SHUTDOWN event.
func (l *loop) publishLifecycle(event, reason string) {
	if l.tracker != nil {
		l.updateStatus(l.now(), l.link.WriteReady())
		if net := readNetworkInfo(); net != nil {
			l.tracker.SetNetwork(net)
		}
	}
	if l.publishStatus(event, reason, true) {
		log.Printf("published %s event", event)
	}
}

// publishStatus sends a system event carrying the tracker snapshot when one
// is available. It reports whether the event was published.
func (l *loop) publishStatus(event, reason string, retained bool) bool {
	if l.publisher == nil {
		return false
	}
	ev := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if l.tracker != nil {
		ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), event, reason)
	}
	if err := l.publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return false
	}
	return true
}
