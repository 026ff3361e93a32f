package httpadapter

import (
	"context"
	"log/slog"

	application "snapstream/contexts/read-model/snapshot-materializer/application"
	"snapstream/contexts/read-model/snapshot-materializer/application/queries"
	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	httptransport "snapstream/contexts/read-model/snapshot-materializer/transport/http"
)

type Handler struct {
	GetSnapshot queries.GetSnapshotUseCase
	Logger      *slog.Logger
}

// GetSnapshotHandler godoc
// @Summary Get entity snapshot
// @Description Returns the latest materialized state of one entity with typed attribute values.
// @Tags snapshot-materializer
// @Produce json
// @Param entity_id path string true "Entity id"
// @Success 200 {object} httptransport.SnapshotResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/snapshots/{entity_id} [get]
func (h Handler) GetSnapshotHandler(ctx context.Context, entityID string) (httptransport.SnapshotResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	result, err := h.GetSnapshot.Execute(ctx, queries.GetSnapshotQuery{EntityID: entityID})
	if err != nil {
		logger.Info("get snapshot request failed",
			"event", "http_get_snapshot_failed",
			"module", "read-model/snapshot-materializer",
			"layer", "transport",
			"entity_id", entityID,
			"error", err.Error(),
		)
		return httptransport.SnapshotResponse{}, err
	}

	record := result.Record
	return httptransport.SnapshotResponse{
		EntityID:        record.EntityID,
		Version:         record.Version,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
		SourcePartition: record.SourcePartition,
		SourceOffset:    record.SourceOffset,
		Attributes:      mapAttributes(result.Attributes),
	}, nil
}

func mapAttributes(attributes []entities.Attribute) []httptransport.AttributeDTO {
	items := make([]httptransport.AttributeDTO, 0, len(attributes))
	for _, attr := range attributes {
		values := make([]any, 0, len(attr.Values))
		for _, value := range attr.Values {
			values = append(values, value.Interface())
		}
		items = append(items, httptransport.AttributeDTO{
			Name:   attr.Name,
			Type:   string(attr.Type),
			Values: values,
		})
	}
	return items
}
