package ports

import (
	"context"
	"time"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	contractsv1 "snapstream/contracts/gen/events/v1"
)

// ListFilter bounds a relay poll.
type ListFilter struct {
	Limit int
	// ExcludeEntityRows restricts the poll to rows without an entity id so the
	// relay never competes with the aggregator for the same rows.
	ExcludeEntityRows bool
}

// OutboxRepository owns the outbox table. Only the producer side reads or
// writes it.
type OutboxRepository interface {
	// Enqueue is the intake boundary; production writers should use the
	// adapter's transactional variant alongside their business write.
	Enqueue(ctx context.Context, rows ...entities.NewOutboxRow) ([]entities.OutboxRow, error)
	// ListUnpublished returns unpublished rows ordered by created_at, id.
	ListUnpublished(ctx context.Context, filter ListFilter) ([]entities.OutboxRow, error)
	// ListAggregatable returns unpublished rows with an entity id created
	// strictly before olderThan, ordered by created_at, id.
	ListAggregatable(ctx context.Context, olderThan time.Time, limit int) ([]entities.OutboxRow, error)
	// MarkPublished flips still-unpublished rows to published in one atomic
	// statement and reports how many rows changed. Already published rows are
	// left untouched so PublishedAt is written once.
	MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) (int64, error)
	Stats(ctx context.Context) (entities.OutboxStats, error)
}

// Clock allows deterministic testing of debounce windows.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces snapshot event ids.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboundRecord reuses the canonical cross-transport record contract.
type OutboundRecord = contractsv1.Record

// PublishReceipt is the broker acknowledgement for one record.
type PublishReceipt = contractsv1.Receipt

// EventPublisher sends records to the stream. onAck is invoked exactly once,
// possibly from another goroutine, after the broker acknowledged the record
// or the publish failed.
type EventPublisher interface {
	PublishAsync(ctx context.Context, record OutboundRecord, onAck func(PublishReceipt, error))
}

// Metrics is the process-wide counter surface the workers report to.
type Metrics interface {
	RecordPublished(component string, count int)
	RecordPublishFailed(component string, count int)
	RecordDropped(component string, count int)
}
