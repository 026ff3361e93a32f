package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "snapstream/contexts/change-capture/outbox-relay/application"
	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
	"snapstream/contexts/change-capture/outbox-relay/domain/services"
	"snapstream/contexts/change-capture/outbox-relay/ports"
	contractsv1 "snapstream/contracts/gen/events/v1"
)

const (
	aggregatorComponent   = "debounce_aggregator"
	defaultDebounceWindow = 200 * time.Millisecond
	defaultMaxRows        = 1000
)

// DebounceAggregator collapses bursts of per-entity changes into one
// snapshot event per entity. Rows younger than DebounceWindow wait for the
// next tick so a burst is sent as a single snapshot.
type DebounceAggregator struct {
	Outbox         ports.OutboxRepository
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Metrics        ports.Metrics
	SnapshotTopic  string
	DebounceWindow time.Duration
	MaxRows        int
	PublishTimeout time.Duration
	// Encode serializes the snapshot; json.Marshal when nil.
	Encode func(any) ([]byte, error)
	Logger *slog.Logger
}

func (a DebounceAggregator) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	now := a.now()
	threshold := now.Add(-a.window())

	rows, err := a.Outbox.ListAggregatable(ctx, threshold, a.maxRows())
	if err != nil {
		logger.Error("outbox list aggregatable failed",
			"event", "snapshot_aggregator_list_failed",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	groups := entities.GroupByEntity(rows)
	published := 0
	for _, group := range groups {
		if ctx.Err() != nil {
			break
		}
		if a.processGroup(ctx, logger, group) {
			published++
		}
	}

	logger.Info("snapshot aggregation cycle completed",
		"event", "snapshot_aggregator_cycle_completed",
		"module", "change-capture/outbox-relay",
		"layer", "worker",
		"selected_count", len(rows),
		"entity_count", len(groups),
		"snapshot_count", published,
	)
	return nil
}

// processGroup publishes one snapshot and marks the group's rows. It reports
// whether the snapshot reached the broker. A failed publish leaves the rows
// unpublished for the next tick.
func (a DebounceAggregator) processGroup(ctx context.Context, logger *slog.Logger, group entities.EntityGroup) bool {
	metrics := application.ResolveMetrics(a.Metrics)
	ids := group.IDs()

	merged := services.MergeAttributes(group.Rows)
	if len(merged.Skipped) > 0 {
		logger.Warn("outbox rows with unreadable payload skipped",
			"event", "snapshot_aggregator_payload_skipped",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"entity_id", group.EntityID,
			"outbox_ids", merged.Skipped,
		)
	}

	event := contractsv1.SnapshotEvent{
		EventID:        a.eventID(ctx, group),
		EntityID:       group.EntityID,
		Attributes:     merged.Attributes,
		GeneratedAt:    a.now(),
		SourceRowCount: len(group.Rows),
	}
	payload, err := a.encode(event)
	if err != nil {
		// An unserializable group never becomes serializable; drop it so it
		// stops blocking the entity.
		if _, markErr := a.Outbox.MarkPublished(ctx, ids, a.now()); markErr != nil {
			logger.Error("outbox mark dropped rows failed",
				"event", "snapshot_aggregator_mark_failed",
				"module", "change-capture/outbox-relay",
				"layer", "worker",
				"entity_id", group.EntityID,
				"error", markErr.Error(),
			)
			return false
		}
		metrics.RecordDropped(aggregatorComponent, len(ids))
		logger.Error("snapshot encoding failed, rows dropped",
			"event", "snapshot_aggregator_rows_dropped",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"entity_id", group.EntityID,
			"outbox_ids", ids,
			"error", fmt.Errorf("%w: %v", domainerrors.ErrSnapshotEncoding, err).Error(),
		)
		return false
	}

	receipt, err := publishAndWait(ctx, a.Publisher, ports.OutboundRecord{
		Topic: a.SnapshotTopic,
		Key:   group.EntityID,
		Value: payload,
		Headers: map[string]string{
			"event_id":  event.EventID,
			"entity_id": group.EntityID,
		},
	}, a.publishTimeout())
	if err != nil {
		metrics.RecordPublishFailed(aggregatorComponent, 1)
		logger.Error("snapshot publish failed",
			"event", "snapshot_aggregator_publish_failed",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"entity_id", group.EntityID,
			"row_count", len(ids),
			"error", err.Error(),
		)
		return false
	}

	// One timestamp for the whole group; the rows share a single snapshot.
	if _, err := a.Outbox.MarkPublished(context.WithoutCancel(ctx), ids, a.now()); err != nil {
		logger.Error("outbox mark published failed",
			"event", "snapshot_aggregator_mark_failed",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"entity_id", group.EntityID,
			"error", err.Error(),
		)
		return true
	}
	metrics.RecordPublished(aggregatorComponent, 1)
	logger.Debug("snapshot published",
		"event", "snapshot_aggregator_snapshot_published",
		"module", "change-capture/outbox-relay",
		"layer", "worker",
		"entity_id", group.EntityID,
		"event_id", event.EventID,
		"row_count", len(ids),
		"partition", receipt.Partition,
		"offset", receipt.Offset,
	)
	return true
}

func (a DebounceAggregator) eventID(ctx context.Context, group entities.EntityGroup) string {
	if a.IDGen != nil {
		if id, err := a.IDGen.NewID(ctx); err == nil && id != "" {
			return id
		}
	}
	ids := group.IDs()
	return fmt.Sprintf("%s/%d-%d", group.EntityID, ids[0], ids[len(ids)-1])
}

func (a DebounceAggregator) encode(event contractsv1.SnapshotEvent) ([]byte, error) {
	if a.Encode != nil {
		return a.Encode(event)
	}
	return json.Marshal(event)
}

func (a DebounceAggregator) now() time.Time {
	if a.Clock != nil {
		return a.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (a DebounceAggregator) window() time.Duration {
	if a.DebounceWindow <= 0 {
		return defaultDebounceWindow
	}
	return a.DebounceWindow
}

func (a DebounceAggregator) maxRows() int {
	if a.MaxRows <= 0 {
		return defaultMaxRows
	}
	return a.MaxRows
}

func (a DebounceAggregator) publishTimeout() time.Duration {
	if a.PublishTimeout <= 0 {
		return defaultPublishTimeout
	}
	return a.PublishTimeout
}
