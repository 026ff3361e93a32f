package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	"snapstream/internal/platform/config"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.HTTP.Addr = ""
	cfg.Relay.PollInterval = 5 * time.Millisecond
	cfg.Aggregator.Interval = 5 * time.Millisecond
	cfg.Aggregator.DebounceWindow = 30 * time.Millisecond
	cfg.Materializer.RetryDelay = time.Millisecond
	cfg.Materializer.MaxRetryDelay = 5 * time.Millisecond
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startApp(t *testing.T, app *App) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	return func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("run returned error: %v", err)
		}
		if err := app.Close(); err != nil {
			t.Errorf("close returned error: %v", err)
		}
	}
}

func TestPipelineCoalescesBurstIntoOneSnapshot(t *testing.T) {
	cfg := testConfig(t)
	app, err := BuildPipeline(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	if app.Relay.Aggregator == nil {
		t.Fatal("expected aggregator in split mode")
	}

	ctx := context.Background()
	_, err = app.Relay.Store.Enqueue(ctx,
		entities.NewOutboxRow{Topic: "tasks", PartitionKey: "T1", EntityID: "T1", Payload: []byte(`{"attributeName":"status","value":"OPEN"}`)},
		entities.NewOutboxRow{Topic: "tasks", PartitionKey: "T1", EntityID: "T1", Payload: []byte(`{"attributeName":"status","value":"CLOSED"}`)},
		entities.NewOutboxRow{Topic: "audit", PartitionKey: "A1", Payload: []byte(`{"action":"login"}`)},
	)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stop := startApp(t, app)
	eventually(t, "outbox drained", func() bool {
		stats, err := app.Relay.Outbox.Stats(ctx)
		return err == nil && stats.Unpublished == 0
	})
	eventually(t, "snapshot materialized", func() bool {
		_, err := app.Materializer.Store.Get(ctx, "T1")
		return err == nil && app.Broker.Lag(cfg.Materializer.ConsumerGroup, cfg.Materializer.Topic) == 0
	})
	stop()

	if snapshots := app.Broker.Records(cfg.Aggregator.SnapshotTopic); len(snapshots) != 1 {
		t.Fatalf("expected exactly one snapshot event, got %d", len(snapshots))
	}
	audit := app.Broker.Records("audit")
	if len(audit) != 1 || audit[0].Key != "A1" || audit[0].Headers["outbox_id"] == "" {
		t.Fatalf("unexpected relayed audit records: %+v", audit)
	}
	if tasks := app.Broker.Records("tasks"); len(tasks) != 0 {
		t.Fatalf("entity rows must not be relayed individually in split mode, got %d", len(tasks))
	}

	resp, err := app.Materializer.Handler.GetSnapshotHandler(ctx, "T1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if resp.Version != 1 {
		t.Fatalf("expected version 1, got %d", resp.Version)
	}
	if len(resp.Attributes) != 1 || resp.Attributes[0].Name != "status" || resp.Attributes[0].Values[0] != "CLOSED" {
		t.Fatalf("expected status CLOSED, got %+v", resp.Attributes)
	}
}

func TestPipelineRelayAllModeSkipsAggregation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Relay.Mode = config.RelayModeRelayAll
	app, err := BuildPipeline(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	if app.Relay.Aggregator != nil {
		t.Fatal("expected no aggregator in relay_all mode")
	}

	ctx := context.Background()
	_, err = app.Relay.Store.Enqueue(ctx,
		entities.NewOutboxRow{Topic: "tasks", PartitionKey: "T1", EntityID: "T1", Payload: []byte(`{"attributeName":"status","value":"OPEN"}`)},
		entities.NewOutboxRow{Topic: "tasks", PartitionKey: "T1", EntityID: "T1", Payload: []byte(`{"attributeName":"status","value":"CLOSED"}`)},
	)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stop := startApp(t, app)
	eventually(t, "outbox drained", func() bool {
		stats, err := app.Relay.Outbox.Stats(ctx)
		return err == nil && stats.Unpublished == 0
	})
	stop()

	tasks := app.Broker.Records("tasks")
	if len(tasks) != 2 || !strings.Contains(string(tasks[1].Value), "CLOSED") {
		t.Fatalf("expected both rows relayed in order, got %+v", tasks)
	}
	if snapshots := app.Broker.Records(cfg.Aggregator.SnapshotTopic); len(snapshots) != 0 {
		t.Fatalf("expected no snapshots in relay_all mode, got %d", len(snapshots))
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Broker.Kind = "nats"
	if _, err := BuildMaterializer(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected invalid broker kind to fail")
	}
}

func TestMemoryBrokerRequiresPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = "postgres://snapstream@localhost:1/outbox"

	if _, err := BuildRelay(context.Background(), cfg, quietLogger()); !errors.Is(err, ErrMemoryBrokerNeedsPipeline) {
		t.Fatalf("expected relay with memory broker rejected, got %v", err)
	}
	if _, err := BuildMaterializer(context.Background(), cfg, quietLogger()); !errors.Is(err, ErrMemoryBrokerNeedsPipeline) {
		t.Fatalf("expected materializer with memory broker rejected, got %v", err)
	}
}

func TestNewLoggerHonoursLevelAndFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
