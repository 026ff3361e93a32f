package application

import (
	"log/slog"

	"snapstream/contexts/read-model/snapshot-materializer/ports"
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

func (noopMetrics) RecordApplied(bool)       {}
func (noopMetrics) RecordQuarantined(string) {}
