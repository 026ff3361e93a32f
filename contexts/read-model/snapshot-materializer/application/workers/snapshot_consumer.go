package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "snapstream/contexts/read-model/snapshot-materializer/application"
	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	domainerrors "snapstream/contexts/read-model/snapshot-materializer/domain/errors"
	"snapstream/contexts/read-model/snapshot-materializer/domain/services"
	"snapstream/contexts/read-model/snapshot-materializer/ports"
	contractsv1 "snapstream/contracts/gen/events/v1"
)

const defaultMaxConflictRetries = 3

// SnapshotConsumer applies snapshot events to the read model. Handle returns
// nil only after the record write committed; the subscriber commits the
// stream position on that signal alone.
type SnapshotConsumer struct {
	Snapshots   ports.SnapshotRepository
	DeadLetters ports.DeadLetterRepository
	Subscriber  ports.EventSubscriber
	Clock       ports.Clock
	Metrics     ports.Metrics
	Topic       string
	Group       string
	// MaxAttempts bounds deliveries of one event before it is quarantined.
	// Zero retries forever.
	MaxAttempts        int
	MaxConflictRetries int
	Logger             *slog.Logger
}

// Run blocks until ctx is cancelled or the subscription fails.
func (c SnapshotConsumer) Run(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	logger.Info("snapshot consumer starting",
		"event", "snapshot_consumer_starting",
		"module", "read-model/snapshot-materializer",
		"layer", "worker",
		"topic", c.Topic,
		"group", c.Group,
	)
	err := c.Subscriber.Subscribe(ctx, c.Topic, c.Group, c.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("snapshot consumer stopped",
			"event", "snapshot_consumer_stopped",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (c SnapshotConsumer) Handle(ctx context.Context, delivery ports.InboundDelivery) error {
	logger := application.ResolveLogger(c.Logger)

	err := c.apply(ctx, logger, delivery)
	if err == nil {
		return nil
	}

	permanent := errors.Is(err, domainerrors.ErrMissingEntityKey) ||
		errors.Is(err, domainerrors.ErrInvalidSnapshotEvent)
	exhausted := c.MaxAttempts > 0 && delivery.Attempt >= c.MaxAttempts
	if !permanent && !exhausted {
		logger.Warn("snapshot apply failed, delivery will be retried",
			"event", "snapshot_consumer_apply_failed",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"entity_id", delivery.Key,
			"partition", delivery.Partition,
			"offset", delivery.Offset,
			"attempt", delivery.Attempt,
			"error", err.Error(),
		)
		return err
	}
	return c.quarantine(ctx, logger, delivery, err)
}

func (c SnapshotConsumer) apply(ctx context.Context, logger *slog.Logger, delivery ports.InboundDelivery) error {
	var event contractsv1.SnapshotEvent
	if err := json.Unmarshal(delivery.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidSnapshotEvent, err)
	}

	entityID := strings.TrimSpace(delivery.Key)
	if entityID == "" {
		entityID = strings.TrimSpace(event.EntityID)
	}
	if entityID == "" {
		return domainerrors.ErrMissingEntityKey
	}
	if event.EntityID != "" && delivery.Key != "" && event.EntityID != delivery.Key {
		// The key addresses the record; the payload id is informational.
		logger.Warn("snapshot entity id disagrees with message key",
			"event", "snapshot_consumer_entity_mismatch",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"key", delivery.Key,
			"payload_entity_id", event.EntityID,
			"partition", delivery.Partition,
			"offset", delivery.Offset,
		)
	}

	metrics := application.ResolveMetrics(c.Metrics)
	for attempt := 0; attempt <= c.maxConflictRetries(); attempt++ {
		record, expected, err := c.build(ctx, logger, entityID, event, delivery)
		if err != nil {
			return err
		}

		err = c.Snapshots.Save(ctx, record, expected)
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}

		metrics.RecordApplied(expected == 0)
		logger.Info("snapshot applied",
			"event", "snapshot_consumer_applied",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"entity_id", entityID,
			"version", record.Version,
			"partition", delivery.Partition,
			"offset", delivery.Offset,
		)
		return nil
	}
	return fmt.Errorf("apply snapshot %s: %w", entityID, domainerrors.ErrVersionConflict)
}

// build loads the current record and returns the next one together with the
// version the save must find in storage. An event older than the one the
// record was built from only bumps the version.
func (c SnapshotConsumer) build(
	ctx context.Context,
	logger *slog.Logger,
	entityID string,
	event contractsv1.SnapshotEvent,
	delivery ports.InboundDelivery,
) (entities.SnapshotRecord, int64, error) {
	now := c.now()
	existing, err := c.Snapshots.Get(ctx, entityID)
	if errors.Is(err, domainerrors.ErrSnapshotNotFound) {
		payload, encErr := encodeSnapshot(entityID, event, event.Attributes)
		if encErr != nil {
			return entities.SnapshotRecord{}, 0, encErr
		}
		record := entities.NewSnapshotRecord(entityID, payload, now).
			WithSource(delivery.Partition, delivery.Offset)
		return record, 0, nil
	}
	if err != nil {
		return entities.SnapshotRecord{}, 0, err
	}

	var stored contractsv1.SnapshotEvent
	if err := json.Unmarshal(existing.Payload, &stored); err != nil {
		logger.Warn("stored snapshot unreadable, replacing it",
			"event", "snapshot_consumer_stored_unreadable",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"entity_id", entityID,
			"version", existing.Version,
			"error", err.Error(),
		)
		stored = contractsv1.SnapshotEvent{}
	}

	if olderThanStored(existing, stored, event, delivery) {
		logger.Info("stale snapshot event ignored",
			"event", "snapshot_consumer_stale_event",
			"module", "read-model/snapshot-materializer",
			"layer", "worker",
			"entity_id", entityID,
			"partition", delivery.Partition,
			"offset", delivery.Offset,
			"stored_partition", existing.SourcePartition,
			"stored_offset", existing.SourceOffset,
		)
		return existing.Apply(existing.Payload, now), existing.Version, nil
	}

	merged := services.MergeAttributes(stored.Attributes, event.Attributes)
	payload, err := encodeSnapshot(entityID, event, merged)
	if err != nil {
		return entities.SnapshotRecord{}, 0, err
	}
	next := existing.Apply(payload, now).WithSource(delivery.Partition, delivery.Offset)
	return next, existing.Version, nil
}

// olderThanStored reports whether the delivery precedes the event the record
// was last built from. Offsets decide within one partition; elsewhere (other
// partitions, or brokers without partitions) generated_at decides.
func olderThanStored(
	existing entities.SnapshotRecord,
	stored contractsv1.SnapshotEvent,
	event contractsv1.SnapshotEvent,
	delivery ports.InboundDelivery,
) bool {
	if delivery.Partition >= 0 && delivery.Partition == existing.SourcePartition {
		return delivery.Offset < existing.SourceOffset
	}
	if stored.GeneratedAt.IsZero() || event.GeneratedAt.IsZero() {
		return false
	}
	return event.GeneratedAt.Before(stored.GeneratedAt)
}

func (c SnapshotConsumer) quarantine(
	ctx context.Context,
	logger *slog.Logger,
	delivery ports.InboundDelivery,
	cause error,
) error {
	if c.DeadLetters == nil {
		return cause
	}
	letter := entities.DeadLetter{
		Topic:         delivery.Topic,
		Key:           delivery.Key,
		Partition:     delivery.Partition,
		Offset:        delivery.Offset,
		Payload:       append([]byte(nil), delivery.Value...),
		Attempt:       delivery.Attempt,
		Reason:        cause.Error(),
		QuarantinedAt: c.now(),
	}
	if err := c.DeadLetters.Quarantine(ctx, letter); err != nil {
		return errors.Join(cause, fmt.Errorf("quarantine snapshot event: %w", err))
	}

	application.ResolveMetrics(c.Metrics).RecordQuarantined(quarantineReason(cause))
	logger.Error("snapshot event quarantined",
		"event", "snapshot_consumer_quarantined",
		"module", "read-model/snapshot-materializer",
		"layer", "worker",
		"key", delivery.Key,
		"partition", delivery.Partition,
		"offset", delivery.Offset,
		"attempt", delivery.Attempt,
		"error", cause.Error(),
	)
	return nil
}

func encodeSnapshot(entityID string, event contractsv1.SnapshotEvent, attributes []json.RawMessage) ([]byte, error) {
	if attributes == nil {
		attributes = []json.RawMessage{}
	}
	return json.Marshal(contractsv1.SnapshotEvent{
		EventID:     event.EventID,
		EntityID:    entityID,
		Attributes:  attributes,
		GeneratedAt: event.GeneratedAt,
	})
}

func quarantineReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrMissingEntityKey):
		return "missing_key"
	case errors.Is(err, domainerrors.ErrInvalidSnapshotEvent):
		return "invalid_event"
	default:
		return "max_attempts"
	}
}

func (c SnapshotConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (c SnapshotConsumer) maxConflictRetries() int {
	if c.MaxConflictRetries <= 0 {
		return defaultMaxConflictRetries
	}
	return c.MaxConflictRetries
}
