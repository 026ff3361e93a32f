package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"snapstream/internal/app/bootstrap"
	"snapstream/internal/platform/config"
)

// Relay process entrypoint.
// Data flow:
// 1) Load config. broker.kind must be kafka or rabbitmq.
// 2) Build the outbox relay and, in split mode, the debounce aggregator.
// 3) Run the poll loops until SIGINT/SIGTERM, then drain acknowledgements.
func main() {
	if err := run(); err != nil {
		log.Fatalf("relay stopped with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("SNAPSTREAM_CONFIG"))
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cfg, os.Stdout).With("process", "relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildRelay(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown close failed",
				"event", "relay_close_failed",
				"module", "cmd/relay",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	return app.Run(ctx)
}
