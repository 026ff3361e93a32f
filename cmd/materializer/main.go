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

// Materializer process entrypoint.
// Data flow:
// 1) Load config. broker.kind must be kafka or rabbitmq.
// 2) Build the snapshot consumer and read model.
// 3) Consume until SIGINT/SIGTERM.
func main() {
	if err := run(); err != nil {
		log.Fatalf("materializer stopped with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("SNAPSTREAM_CONFIG"))
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cfg, os.Stdout).With("process", "materializer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildMaterializer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown close failed",
				"event", "materializer_close_failed",
				"module", "cmd/materializer",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	return app.Run(ctx)
}
