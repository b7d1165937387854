// Command skyhawk-panel reads a switch panel over GPIO and reports debounced
// control changes to a flight simulator host over a serial link.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
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

type config struct {
	chip         string
	lineBase     int
	serial       string
	baud         int
	poll         time.Duration
	settle       time.Duration
	debounceMode string
	resyncSlot   time.Duration
	broker       string
	clientID     string
	heartbeat    time.Duration
	httpAddr     string
	reset        string
	printState   bool
	verbose      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.chip, "chip", "gpiochip0", "GPIO chip name")
	flag.IntVar(&cfg.lineBase, "line-base", gpio.DefaultLineBase, "GPIO line of panel pin 0")
	flag.StringVar(&cfg.serial, "serial", "/dev/ttyGS0", "Serial device of the host link")
	flag.IntVar(&cfg.baud, "baud", 115200, "Serial baud rate")
	flag.DurationVar(&cfg.poll, "poll", time.Millisecond, "Panel polling interval")
	flag.DurationVar(&cfg.settle, "settle", panel.DefaultSettle, "Debounce settle duration")
	flag.StringVar(&cfg.debounceMode, "debounce-mode", "latest", `Debounce policy ("latest" or "stable")`)
	flag.DurationVar(&cfg.resyncSlot, "resync-slot", panel.DefaultResyncSlot, "Time slot per control for forced resync")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&cfg.clientID, "client-id", "skyhawk-panel", "MQTT client ID")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "MQTT heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.reset, "reset", "exit", `Action for the host reboot command ("reboot", "exit" or "off")`)
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current panel state and exit")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Log every report")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	mode, ok := panel.ParseDebounceMode(cfg.debounceMode)
	if !ok {
		return fmt.Errorf("unknown debounce mode %q", cfg.debounceMode)
	}
	resetter, err := system.FromFlag(cfg.reset)
	if err != nil {
		return err
	}

	// Initialize GPIO
	board, err := gpio.NewRealBoard(cfg.chip, cfg.lineBase)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	controls, err := openControls(board, panel.Skyhawk)
	if err != nil {
		return fmt.Errorf("init panel: %w", err)
	}

	// Print state mode
	if cfg.printState {
		printState(os.Stdout, controls)
		return nil
	}

	standby, err := board.Output(panel.PinStandbyLight)
	if err != nil {
		return fmt.Errorf("init standby light: %w", err)
	}
	active, err := board.Output(panel.PinActivityLight)
	if err != nil {
		return fmt.Errorf("init activity light: %w", err)
	}

	// Initialize host link
	port, err := link.OpenSerial(link.Config{Device: cfg.serial, Baud: cfg.baud, ReadTimeout: 50 * time.Millisecond})
	if err != nil {
		return fmt.Errorf("init link: %w", err)
	}
	defer port.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:       cfg.poll.Milliseconds(),
		SettleMs:     cfg.settle.Milliseconds(),
		ResyncSlotMs: cfg.resyncSlot.Milliseconds(),
		HeartbeatMs:  cfg.heartbeat.Milliseconds(),
		DebounceMode: mode.String(),
		Serial:       cfg.serial,
		Broker:       cfg.broker,
		HTTPAddr:     cfg.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	l := &loop{
		engine:    panel.NewEngine(controls, panel.Config{Settle: cfg.settle, ResyncSlot: cfg.resyncSlot, Mode: mode}, startTime),
		link:      port,
		writer:    &link.Writer{T: port},
		standby:   standby,
		active:    active,
		tracker:   tracker,
		resetter:  resetter,
		heartbeat: cfg.heartbeat,
		verbose:   cfg.verbose,
		now:       time.Now,
	}

	// Initialize MQTT
	if cfg.broker != "" {
		publisher, err := mqtt.NewRealPublisher(cfg.broker, cfg.clientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer publisher.Close()
		l.publisher = publisher
		l.mqttStatus = publisher
		l.remote = publisher.Commands()
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		l.hub = web.NewHub()
		srv := web.New(cfg.httpAddr, tracker, l.hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	l.publishLifecycle("STARTUP", "")
	log.Printf("started: serial=%s poll=%v settle=%v (%s) resync=%v cycle=%v broker=%q",
		cfg.serial, cfg.poll, cfg.settle, mode, cfg.resyncSlot, l.engine.ResyncCycle(), cfg.broker)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(ticker.C, sigCh)
}

// openControls requests every input of the layout from the board.
func openControls(board gpio.Board, layout []panel.Wiring) ([]*panel.Control, error) {
	inputs := map[int]gpio.Input{}
	for _, w := range layout {
		for _, pin := range w.Pins() {
			in, err := board.Input(pin)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.Tag, err)
			}
			inputs[pin] = in
		}
	}
	return panel.Build(layout, func(pin int) panel.Input { return inputs[pin] }), nil
}

func printState(w io.Writer, controls []*panel.Control) {
	for _, c := range controls {
		v, err := c.Sampler.Sample()
		fmt.Fprintf(w, "%s=%s\n", c.Tag, status.ValueString(byte(v), err == nil))
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
