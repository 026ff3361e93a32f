package queries

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "snapstream/contexts/read-model/snapshot-materializer/application"
	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	domainerrors "snapstream/contexts/read-model/snapshot-materializer/domain/errors"
	"snapstream/contexts/read-model/snapshot-materializer/ports"
	contractsv1 "snapstream/contracts/gen/events/v1"
)

type GetSnapshotQuery struct {
	EntityID string
}

type GetSnapshotResult struct {
	Record     entities.SnapshotRecord
	Attributes []entities.Attribute
}

type GetSnapshotUseCase struct {
	Snapshots ports.SnapshotRepository
	Logger    *slog.Logger
}

func (u GetSnapshotUseCase) Execute(ctx context.Context, query GetSnapshotQuery) (GetSnapshotResult, error) {
	logger := application.ResolveLogger(u.Logger)
	entityID := strings.TrimSpace(query.EntityID)
	if entityID == "" {
		return GetSnapshotResult{}, domainerrors.ErrMissingEntityKey
	}

	record, err := u.Snapshots.Get(ctx, entityID)
	if err != nil {
		logger.Warn("get snapshot failed",
			"event", "get_snapshot_failed",
			"module", "read-model/snapshot-materializer",
			"layer", "application",
			"entity_id", entityID,
			"error", err.Error(),
		)
		return GetSnapshotResult{}, err
	}

	var stored contractsv1.SnapshotEvent
	if err := json.Unmarshal(record.Payload, &stored); err != nil {
		logger.Warn("stored snapshot unreadable",
			"event", "get_snapshot_payload_unreadable",
			"module", "read-model/snapshot-materializer",
			"layer", "application",
			"entity_id", entityID,
			"error", err.Error(),
		)
		return GetSnapshotResult{Record: record}, nil
	}

	attributes := make([]entities.Attribute, 0, len(stored.Attributes))
	for _, raw := range stored.Attributes {
		if attr, ok := entities.DecodeAttribute(raw); ok {
			attributes = append(attributes, attr)
		}
	}
	return GetSnapshotResult{Record: record, Attributes: attributes}, nil
}
