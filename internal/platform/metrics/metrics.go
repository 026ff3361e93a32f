package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "snapstream"

// OutboxStatsFunc reports current outbox row counts. It is read on every
// scrape.
type OutboxStatsFunc func(ctx context.Context) (unpublished, published int64, err error)

// Collector is a prometheus.Collector for the relay, the aggregator and the
// materializer. It satisfies the Metrics port of both bounded contexts.
type Collector struct {
	published     *prometheus.CounterVec
	publishFailed *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	applied       *prometheus.CounterVec
	quarantined   *prometheus.CounterVec

	outboxRows  *prometheus.Desc
	outboxStats OutboxStatsFunc
	logger      *slog.Logger
}

// NewCollector returns a Collector. stats may be nil in processes that do
// not own the outbox.
func NewCollector(stats OutboxStatsFunc, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "outbox_published_total",
				Help:      "Records acknowledged by the broker.",
			}, []string{"component"},
		),
		publishFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "outbox_publish_failed_total",
				Help:      "Publishes that failed or timed out and stay unpublished.",
			}, []string{"component"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "outbox_dropped_total",
				Help:      "Outbox rows marked published without being sent.",
			}, []string{"component"},
		),
		applied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "snapshots_applied_total",
				Help:      "Snapshot events written to the read model.",
			}, []string{"result"},
		),
		quarantined: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "snapshots_quarantined_total",
				Help:      "Snapshot events moved to dead letters.",
			}, []string{"reason"},
		),
		outboxRows: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "outbox_rows"),
			"Outbox rows by publish state.",
			[]string{"state"}, nil,
		),
		outboxStats: stats,
		logger:      logger,
	}
}

func (c *Collector) RecordPublished(component string, count int) {
	c.published.WithLabelValues(component).Add(float64(count))
}

func (c *Collector) RecordPublishFailed(component string, count int) {
	c.publishFailed.WithLabelValues(component).Add(float64(count))
}

func (c *Collector) RecordDropped(component string, count int) {
	c.dropped.WithLabelValues(component).Add(float64(count))
}

func (c *Collector) RecordApplied(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	c.applied.WithLabelValues(result).Inc()
}

func (c *Collector) RecordQuarantined(reason string) {
	c.quarantined.WithLabelValues(reason).Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.published.Describe(ch)
	c.publishFailed.Describe(ch)
	c.dropped.Describe(ch)
	c.applied.Describe(ch)
	c.quarantined.Describe(ch)
	ch <- c.outboxRows
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.published.Collect(ch)
	c.publishFailed.Collect(ch)
	c.dropped.Collect(ch)
	c.applied.Collect(ch)
	c.quarantined.Collect(ch)

	if c.outboxStats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	unpublished, published, err := c.outboxStats(ctx)
	if err != nil {
		c.logger.Warn("outbox stats unavailable for scrape",
			"event", "metrics_outbox_stats_failed",
			"module", "internal/platform/metrics",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.outboxRows, prometheus.GaugeValue, float64(unpublished), "unpublished")
	ch <- prometheus.MustNewConstMetric(c.outboxRows, prometheus.GaugeValue, float64(published), "published")
}

// NewRegistry registers collector next to the runtime collectors.
func NewRegistry(collector *Collector) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Handler serves the registry in the text exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
