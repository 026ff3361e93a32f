package workers

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	application "snapstream/contexts/change-capture/outbox-relay/application"
	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

const relayComponent = "relay_poller"

// RelayPoller publishes unpublished outbox rows one by one, in creation
// order, and marks each row published from its acknowledgement callback.
// A row is never marked before the broker acknowledged it.
type RelayPoller struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Metrics   ports.Metrics
	BatchSize int
	// ExcludeEntityRows leaves entity rows to the debounce aggregator.
	ExcludeEntityRows bool
	PublishTimeout    time.Duration
	MarkTimeout       time.Duration
	Logger            *slog.Logger

	once     sync.Once
	inflight *inflightSet
}

func (r *RelayPoller) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	r.init()

	rows, err := r.Outbox.ListUnpublished(ctx, ports.ListFilter{
		Limit:             r.batchSize(),
		ExcludeEntityRows: r.ExcludeEntityRows,
	})
	if err != nil {
		logger.Error("outbox list unpublished failed",
			"event", "outbox_relay_list_failed",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	batch := newPendingBatch()
	skipped := 0
	for _, row := range rows {
		if !r.inflight.acquire(row.ID) {
			skipped++
			continue
		}
		batch.add()
		r.publish(ctx, row, batch.finish)
	}
	batch.seal()

	r.awaitBatch(logger, batch)

	logger.Info("outbox relay cycle completed",
		"event", "outbox_relay_cycle_completed",
		"module", "change-capture/outbox-relay",
		"layer", "worker",
		"selected_count", len(rows),
		"skipped_inflight", skipped,
		"still_inflight", r.inflight.size(),
	)
	return nil
}

// Wait blocks until every acknowledgement callback issued so far has
// finished. Shutdown calls it before closing the store.
func (r *RelayPoller) Wait(ctx context.Context) error {
	r.init()
	return r.inflight.wait(ctx)
}

func (r *RelayPoller) publish(ctx context.Context, row entities.OutboxRow, done func()) {
	logger := application.ResolveLogger(r.Logger)
	metrics := application.ResolveMetrics(r.Metrics)

	pctx, cancel := context.WithTimeout(ctx, r.publishTimeout())
	record := ports.OutboundRecord{
		Topic: row.Topic,
		Key:   row.PartitionKey,
		Value: row.Payload,
		Headers: map[string]string{
			"outbox_id": strconv.FormatInt(row.ID, 10),
		},
	}

	r.Publisher.PublishAsync(pctx, record, func(receipt ports.PublishReceipt, err error) {
		defer done()
		defer r.inflight.release(row.ID)
		defer cancel()

		if err != nil {
			metrics.RecordPublishFailed(relayComponent, 1)
			logger.Error("outbox publish failed",
				"event", "outbox_relay_publish_failed",
				"module", "change-capture/outbox-relay",
				"layer", "worker",
				"outbox_id", row.ID,
				"topic", row.Topic,
				"partition_key", row.PartitionKey,
				"error", err.Error(),
			)
			return
		}
		r.markPublished(ctx, row, receipt)
	})
}

// markPublished runs on the publisher's goroutine. It uses a context that
// outlives shutdown cancellation so an acknowledged send gets persisted.
func (r *RelayPoller) markPublished(ctx context.Context, row entities.OutboxRow, receipt ports.PublishReceipt) {
	logger := application.ResolveLogger(r.Logger)
	metrics := application.ResolveMetrics(r.Metrics)

	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.markTimeout())
	defer cancel()

	if _, err := r.Outbox.MarkPublished(mctx, []int64{row.ID}, r.now()); err != nil {
		// The row stays unpublished and is sent again later: a duplicate, not a loss.
		logger.Error("outbox mark published failed",
			"event", "outbox_relay_mark_failed",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"outbox_id", row.ID,
			"error", err.Error(),
		)
		return
	}
	metrics.RecordPublished(relayComponent, 1)
	logger.Debug("outbox row published",
		"event", "outbox_relay_row_published",
		"module", "change-capture/outbox-relay",
		"layer", "worker",
		"outbox_id", row.ID,
		"topic", row.Topic,
		"partition", receipt.Partition,
		"offset", receipt.Offset,
	)
}

func (r *RelayPoller) awaitBatch(logger *slog.Logger, batch *pendingBatch) {
	timer := time.NewTimer(r.publishTimeout() + r.markTimeout())
	defer timer.Stop()
	select {
	case <-batch.done:
	case <-timer.C:
		logger.Warn("outbox relay acknowledgements still pending",
			"event", "outbox_relay_ack_pending",
			"module", "change-capture/outbox-relay",
			"layer", "worker",
			"inflight_count", r.inflight.size(),
		)
	}
}

func (r *RelayPoller) init() {
	r.once.Do(func() {
		r.inflight = newInflightSet()
	})
}

func (r *RelayPoller) now() time.Time {
	if r.Clock != nil {
		return r.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *RelayPoller) batchSize() int {
	if r.BatchSize <= 0 {
		return defaultBatchSize
	}
	return r.BatchSize
}

func (r *RelayPoller) publishTimeout() time.Duration {
	if r.PublishTimeout <= 0 {
		return defaultPublishTimeout
	}
	return r.PublishTimeout
}

func (r *RelayPoller) markTimeout() time.Duration {
	if r.MarkTimeout <= 0 {
		return defaultMarkTimeout
	}
	return r.MarkTimeout
}
