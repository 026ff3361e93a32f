package httpadapter

import (
	"context"
	"log/slog"

	application "snapstream/contexts/change-capture/outbox-relay/application"
	"snapstream/contexts/change-capture/outbox-relay/application/queries"
	httptransport "snapstream/contexts/change-capture/outbox-relay/transport/http"
)

type Handler struct {
	Stats  queries.OutboxStatsUseCase
	Logger *slog.Logger
}

// OutboxStatsHandler godoc
// @Summary Outbox backlog
// @Description Returns point-in-time counts of published and unpublished outbox rows.
// @Tags outbox-relay
// @Produce json
// @Success 200 {object} httptransport.OutboxStatsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/outbox/stats [get]
func (h Handler) OutboxStatsHandler(ctx context.Context) (httptransport.OutboxStatsResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	result, err := h.Stats.Execute(ctx)
	if err != nil {
		logger.Error("outbox stats request failed",
			"event", "http_outbox_stats_failed",
			"module", "change-capture/outbox-relay",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.OutboxStatsResponse{}, err
	}

	return httptransport.OutboxStatsResponse{
		Unpublished: result.Stats.Unpublished,
		Published:   result.Stats.Published,
		Total:       result.Stats.Unpublished + result.Stats.Published,
	}, nil
}
