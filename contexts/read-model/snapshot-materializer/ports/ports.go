package ports

import (
	"context"
	"time"

	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	contractsv1 "snapstream/contracts/gen/events/v1"
)

// SnapshotRepository owns the read model. Only the materializer writes it.
type SnapshotRepository interface {
	// Get returns ErrSnapshotNotFound when the entity was never materialized.
	Get(ctx context.Context, entityID string) (entities.SnapshotRecord, error)
	// Save inserts the record when expectedVersion is 0 and otherwise updates
	// it only if the stored version still equals expectedVersion. A lost race
	// returns ErrVersionConflict.
	Save(ctx context.Context, record entities.SnapshotRecord, expectedVersion int64) error
}

type DeadLetterRepository interface {
	Quarantine(ctx context.Context, letter entities.DeadLetter) error
}

type Clock interface {
	Now() time.Time
}

// InboundDelivery reuses the canonical cross-transport delivery contract.
type InboundDelivery = contractsv1.Delivery

// DeliveryHandler returns nil once the delivery is durably applied. Any error
// leaves the position uncommitted and the same delivery comes back.
type DeliveryHandler = func(ctx context.Context, delivery InboundDelivery) error

// EventSubscriber blocks consuming topic as member of group until ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, group string, handler DeliveryHandler) error
}

type Metrics interface {
	RecordApplied(created bool)
	RecordQuarantined(reason string)
}
