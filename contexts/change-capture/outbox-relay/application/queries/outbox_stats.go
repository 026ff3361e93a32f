package queries

import (
	"context"
	"log/slog"

	application "snapstream/contexts/change-capture/outbox-relay/application"
	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

type OutboxStatsResult struct {
	Stats entities.OutboxStats
}

type OutboxStatsUseCase struct {
	Outbox ports.OutboxRepository
	Logger *slog.Logger
}

func (u OutboxStatsUseCase) Execute(ctx context.Context) (OutboxStatsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	stats, err := u.Outbox.Stats(ctx)
	if err != nil {
		logger.Error("outbox stats failed",
			"event", "outbox_stats_failed",
			"module", "change-capture/outbox-relay",
			"layer", "application",
			"error", err.Error(),
		)
		return OutboxStatsResult{}, err
	}

	logger.Debug("outbox stats completed",
		"event", "outbox_stats_completed",
		"module", "change-capture/outbox-relay",
		"layer", "application",
		"unpublished", stats.Unpublished,
		"published", stats.Published,
	)
	return OutboxStatsResult{Stats: stats}, nil
}
