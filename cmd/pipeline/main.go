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

// Single-process entrypoint running relay, aggregator and materializer
// together. Required for broker.kind=memory.
func main() {
	if err := run(); err != nil {
		log.Fatalf("pipeline stopped with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("SNAPSTREAM_CONFIG"))
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cfg, os.Stdout).With("process", "pipeline")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown close failed",
				"event", "pipeline_close_failed",
				"module", "cmd/pipeline",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	return app.Run(ctx)
}
