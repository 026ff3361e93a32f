package application

import (
	"log/slog"

	"snapstream/contexts/change-capture/outbox-relay/ports"
)

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func ResolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics != nil {
		return metrics
	}
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordPublished(string, int)     {}
func (noopMetrics) RecordPublishFailed(string, int) {}
func (noopMetrics) RecordDropped(string, int)       {}
