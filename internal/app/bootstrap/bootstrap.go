package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	outboxrelay "snapstream/contexts/change-capture/outbox-relay"
	outboxpostgres "snapstream/contexts/change-capture/outbox-relay/adapters/postgres"
	outboxports "snapstream/contexts/change-capture/outbox-relay/ports"
	snapshotmaterializer "snapstream/contexts/read-model/snapshot-materializer"
	snapshotpostgres "snapstream/contexts/read-model/snapshot-materializer/adapters/postgres"
	snapshotports "snapstream/contexts/read-model/snapshot-materializer/ports"
	"snapstream/internal/platform/config"
	"snapstream/internal/platform/db"
	"snapstream/internal/platform/httpserver"
	"snapstream/internal/platform/messaging"
	"snapstream/internal/platform/metrics"
	"snapstream/internal/platform/scheduler"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const drainTimeout = 15 * time.Second

// ErrMemoryBrokerNeedsPipeline rejects the in-process broker for a process
// that runs only one side: nothing would read what the relay marks published.
var ErrMemoryBrokerNeedsPipeline = errors.New("bootstrap: memory broker requires relay and materializer in one process")

// App is one process. Relay and Materializer are nil when the process does
// not run that side. Broker is set when broker.kind is memory.
type App struct {
	Relay        *outboxrelay.Module
	Materializer *snapshotmaterializer.Module
	Broker       *messaging.Memory
	Metrics      *metrics.Collector

	cfg      config.Config
	postgres *db.Postgres
	server   *httpserver.Server
	broker   *transport
	logger   *slog.Logger
}

type role struct {
	relay        bool
	materializer bool
}

// BuildRelay wires the producer side: relay poller and, in split mode, the
// debounce aggregator.
func BuildRelay(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return build(ctx, cfg, logger, role{relay: true})
}

// BuildMaterializer wires the consumer side.
func BuildMaterializer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return build(ctx, cfg, logger, role{materializer: true})
}

// BuildPipeline runs both sides in one process. It is the only way to use
// the in-memory broker across them.
func BuildPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return build(ctx, cfg, logger, role{relay: true, materializer: true})
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger, r role) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Broker.Kind == config.BrokerMemory && !(r.relay && r.materializer) {
		return nil, ErrMemoryBrokerNeedsPipeline
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	if strings.TrimSpace(cfg.Database.DSN) != "" {
		pg, err := db.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg
		if cfg.Database.AutoMigrate {
			var migrations []db.Migration
			if r.relay {
				migrations = append(migrations, outboxpostgres.Migrate)
			}
			if r.materializer {
				migrations = append(migrations, snapshotpostgres.Migrate)
			}
			if err := pg.Migrate(logger, migrations...); err != nil {
				return nil, err
			}
		}
	}

	broker, err := openTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.broker = broker
	app.Broker = broker.memory

	var stats metrics.OutboxStatsFunc
	if r.relay {
		module := app.buildRelayModule(broker.publisher)
		app.Relay = &module
		stats = func(ctx context.Context) (int64, int64, error) {
			s, err := module.Outbox.Stats(ctx)
			return s.Unpublished, s.Published, err
		}
	}
	app.Metrics = metrics.NewCollector(stats, logger)
	if app.Relay != nil {
		app.Relay.Relay.Metrics = app.Metrics
		if app.Relay.Aggregator != nil {
			app.Relay.Aggregator.Metrics = app.Metrics
		}
	}
	if r.materializer {
		module := app.buildMaterializerModule(broker.subscriber)
		app.Materializer = &module
	}

	if strings.TrimSpace(cfg.HTTP.Addr) != "" {
		registry, err := metrics.NewRegistry(app.Metrics)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		app.server = httpserver.New(app.Relay, app.Materializer, metrics.Handler(registry), logger, cfg.HTTP.Addr)
	}

	ok = true
	return app, nil
}

func (a *App) buildRelayModule(publisher outboxports.EventPublisher) outboxrelay.Module {
	deps := outboxrelay.Dependencies{
		Publisher:      publisher,
		Clock:          outboxpostgres.SystemClock{},
		IDGen:          outboxpostgres.UUIDGenerator{},
		Mode:           outboxrelay.Mode(a.cfg.Relay.Mode),
		RelayBatchSize: a.cfg.Relay.BatchSize,
		PublishTimeout: a.cfg.Relay.PublishTimeout,
		SnapshotTopic:  a.cfg.Aggregator.SnapshotTopic,
		DebounceWindow: a.cfg.Aggregator.DebounceWindow,
		MaxRows:        a.cfg.Aggregator.MaxRows,
		Logger:         a.logger,
	}
	if a.postgres == nil {
		return outboxrelay.NewInMemoryModule(deps)
	}
	deps.Outbox = outboxpostgres.NewRepository(a.postgres.DB, a.logger)
	return outboxrelay.NewModule(deps)
}

func (a *App) buildMaterializerModule(subscriber snapshotports.EventSubscriber) snapshotmaterializer.Module {
	deps := snapshotmaterializer.Dependencies{
		Subscriber:  subscriber,
		Clock:       snapshotpostgres.SystemClock{},
		Metrics:     a.Metrics,
		Topic:       a.cfg.Materializer.Topic,
		Group:       a.cfg.Materializer.ConsumerGroup,
		MaxAttempts: a.cfg.Materializer.MaxAttempts,
		Logger:      a.logger,
	}
	if a.postgres == nil {
		return snapshotmaterializer.NewInMemoryModule(deps)
	}
	repo := snapshotpostgres.NewRepository(a.postgres.DB, a.logger)
	deps.Snapshots = repo
	deps.DeadLetters = repo
	return snapshotmaterializer.NewModule(deps)
}

// Run blocks until ctx is cancelled or a component fails, then drains
// outstanding acknowledgements before returning.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.Relay != nil {
		relayLoop := scheduler.Loop{
			Name:     "relay_poller",
			Job:      a.Relay.Relay,
			Interval: a.cfg.Relay.PollInterval,
			Logger:   a.logger,
		}
		g.Go(func() error { return relayLoop.Run(gctx) })

		if a.Relay.Aggregator != nil {
			aggregatorLoop := scheduler.Loop{
				Name:     "debounce_aggregator",
				Job:      a.Relay.Aggregator,
				Interval: a.cfg.Aggregator.Interval,
				Logger:   a.logger,
			}
			g.Go(func() error { return aggregatorLoop.Run(gctx) })
		}
	}
	if a.Materializer != nil {
		consumer := a.Materializer.Consumer
		g.Go(func() error { return consumer.Run(gctx) })
	}
	if a.server != nil {
		g.Go(func() error { return a.server.Run(gctx) })
	}

	a.logger.Info("app started",
		"event", "bootstrap_app_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay", a.Relay != nil,
		"materializer", a.Materializer != nil,
		"broker", a.cfg.Broker.Kind,
		"relay_mode", a.cfg.Relay.Mode,
	)

	err := g.Wait()
	a.drain()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// drain lets acknowledged publishes finish their mark before the publisher
// and database go away.
func (a *App) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if a.broker != nil && a.broker.flush != nil {
		if err := a.broker.flush(ctx); err != nil {
			a.logger.Warn("publisher flush incomplete",
				"event", "bootstrap_flush_incomplete",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
	if a.Relay != nil {
		if err := a.Relay.Relay.Wait(ctx); err != nil {
			a.logger.Warn("relay acknowledgements still pending at shutdown",
				"event", "bootstrap_relay_drain_incomplete",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
}

func (a *App) Close() error {
	var errs []error
	if a.broker != nil && a.broker.close != nil {
		if err := a.broker.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from log.level and log.format.
func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", cfg.ServiceName)
}
