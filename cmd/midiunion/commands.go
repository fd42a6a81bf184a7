package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/midiunion/pkg/api"
	"github.com/james-see/midiunion/pkg/config"
	"github.com/james-see/midiunion/pkg/device"
	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/logging"
	"github.com/james-see/midiunion/pkg/notify"
	"github.com/james-see/midiunion/pkg/router"
	"github.com/james-see/midiunion/pkg/sink"
	"github.com/james-see/midiunion/pkg/tui"
)

// app holds everything a long-running command needs
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	driver *device.GoMIDI
	queue  *notify.Queue
	fwd    *forwarder.Forwarder
	sinks  []notify.Sink
	close  []func()
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Logging, version)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		driver: device.NewGoMIDI(),
		queue:  notify.NewQueue(notify.DefaultCapacity),
	}
	a.fwd = forwarder.New(a.driver,
		forwarder.WithInterval(cfg.PollInterval),
		forwarder.WithLogger(logger),
		forwarder.WithObserver(a.queue),
	)

	if cfg.MQTT.Enabled {
		client, err := sink.DialMQTT(cfg.MQTT)
		if err != nil {
			a.shutdown()
			return nil, err
		}
		logger.Info("mqtt connected", "broker", cfg.MQTT.Broker, "topic_prefix", cfg.MQTT.TopicPrefix)
		a.sinks = append(a.sinks, sink.NewMQTT(client, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, logger))
		a.close = append(a.close, func() { sink.CloseMQTT(client) })
	}
	return a, nil
}

// pump drains notifications into the sinks until ctx ends. The returned
// wait blocks until the final drain is done.
func (a *app) pump(ctx context.Context, extra ...notify.Sink) (wait func()) {
	sinks := append(append([]notify.Sink(nil), a.sinks...), extra...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		notify.Pump(ctx, a.queue, a.cfg.RefreshInterval, sinks...)
	}()
	return wg.Wait
}

func (a *app) shutdown() {
	if a.fwd != nil {
		a.fwd.Stop()
	}
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
	a.driver.Close()
	_ = a.logger.Close()
}

func runList(cmd *cobra.Command, args []string) error {
	drv := device.NewGoMIDI()
	defer drv.Close()

	ins, err := drv.Inputs()
	if err != nil {
		return err
	}
	outs, err := drv.Outputs()
	if err != nil {
		return err
	}

	fmt.Println("Inputs:")
	printPorts(ins)
	fmt.Println("Outputs:")
	printPorts(outs)
	return nil
}

func printPorts(names []string) {
	if len(names) == 0 {
		fmt.Println("  (none)")
		return
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func runForward(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	routing := a.cfg.Routing.Router()
	if err := a.fwd.Start(a.cfg.Input, a.cfg.Output, routing); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pumpCtx, cancelPump := context.WithCancel(context.Background())
	wait := a.pump(pumpCtx, sink.NewConsole(os.Stdout, quiet))

	fmt.Println("Press Ctrl+C to stop")

	// stop on interrupt or when the session fails on its own
	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()
	for ctx.Err() == nil && a.fwd.State() == forwarder.Running {
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	a.fwd.Stop()
	cancelPump()
	wait()

	return a.fwd.Err()
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	msg, err := parseHex(args)
	if err != nil {
		return err
	}
	policy, err := router.NewPolicy(cfg.Routing.Router())
	if err != nil {
		return err
	}

	res := policy.Apply(msg)
	fmt.Printf("% X\n", []byte(res.Message))
	fmt.Println(router.Describe(res))
	return nil
}

// parseHex accepts bytes such as "90 3C 64", "903C64" or "0x90"
func parseHex(args []string) (midi.Message, error) {
	joined := strings.Join(args, " ")
	var msg midi.Message
	for _, field := range strings.Fields(joined) {
		field = strings.TrimPrefix(strings.ToLower(field), "0x")
		if len(field)%2 != 0 {
			return nil, fmt.Errorf("invalid hex %q", field)
		}
		for i := 0; i < len(field); i += 2 {
			b, err := strconv.ParseUint(field[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid hex %q: %w", field, err)
			}
			msg = append(msg, byte(b))
		}
	}
	return msg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	// the alt screen owns the terminal
	switch strings.ToLower(cfg.Logging.Output) {
	case "", "stdout", "stderr":
		cfg.Logging.Output = "discard"
	}

	a, err := newAppWithConfig(cfg)
	if err != nil {
		return err
	}
	defer a.shutdown()

	// the TUI drains the queue itself and hands a copy to the other sinks
	return tui.Run(a.fwd, a.queue,
		tui.WithRefreshInterval(cfg.RefreshInterval),
		tui.WithRouting(cfg.Routing.Router()),
		tui.WithDevices(cfg.Input, cfg.Output),
		tui.WithSinks(a.sinks...),
	)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	port := a.cfg.API.Port
	if cmd.Flags().Changed("port") {
		port = serverPort
	}
	addr := fmt.Sprintf("%s:%d", a.cfg.API.Host, port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub(a.logger)
	pumpCtx, cancelPump := context.WithCancel(context.Background())
	wait := a.pump(pumpCtx, hub)
	var once sync.Once
	drain := func() {
		once.Do(func() {
			a.fwd.Stop()
			cancelPump()
			wait()
		})
	}
	defer drain()

	srv := api.NewServer(a.fwd, hub, a.logger)
	// the final Stopped notification reaches clients before they are disconnected
	srv.BeforeShutdown(drain)

	fmt.Printf("Starting midiunion API server on %s...\n", addr)
	fmt.Printf("Swagger docs available at http://%s/swagger/index.html\n", addr)

	return srv.Run(ctx, addr)
}
