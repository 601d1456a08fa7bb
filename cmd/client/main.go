package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HammerMeetNail/barberbook/internal/config"
	"github.com/HammerMeetNail/barberbook/internal/gateway"
	"github.com/HammerMeetNail/barberbook/internal/logging"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Client error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Log lines go to stderr so they do not interleave with the rendered feed.
	logger := logging.New().SetOutput(os.Stderr).SetLevel(logging.LevelWarn)
	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
	}

	client, err := gateway.New(cfg.Client.APIBaseURL, cfg.Client.RequestTimeout)
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, client, client, client, cfg.Client, logger)
	defer a.Close()

	a.Start(ctx)
	return a.Loop(ctx, os.Stdin)
}
