// Package main is the entry point for the midiunion API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/james-see/midiunion/pkg/api"
	"github.com/james-see/midiunion/pkg/config"
	"github.com/james-see/midiunion/pkg/device"
	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/logging"
	"github.com/james-see/midiunion/pkg/notify"
)

var version = "dev"

func main() {
	port := flag.Int("port", 0, "Server port (default from profile, 8080)")
	configPath := flag.String("config", "", "YAML profile to load")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if port != 0 {
		cfg.API.Port = port
	}

	logger, err := logging.New(cfg.Logging, version)
	if err != nil {
		return err
	}
	defer logger.Close()

	drv := device.NewGoMIDI()
	defer drv.Close()

	queue := notify.NewQueue(notify.DefaultCapacity)
	fwd := forwarder.New(drv,
		forwarder.WithInterval(cfg.PollInterval),
		forwarder.WithLogger(logger),
		forwarder.WithObserver(queue),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub(logger)
	pumpCtx, cancelPump := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		notify.Pump(pumpCtx, queue, cfg.RefreshInterval, hub)
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() {
			fwd.Stop()
			cancelPump()
			<-pumpDone
		})
	}
	defer drain()

	srv := api.NewServer(fwd, hub, logger)
	// the final Stopped notification reaches clients before they are disconnected
	srv.BeforeShutdown(drain)

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	fmt.Printf("Starting midiunion API server on %s...\n", addr)
	fmt.Printf("Swagger docs available at http://%s/swagger/index.html\n", addr)

	return srv.Run(ctx, addr)
}
