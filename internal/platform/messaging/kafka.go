package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	contractsv1 "snapstream/contracts/gen/events/v1"

	"github.com/twmb/franz-go/pkg/kgo"
)

type KafkaConfig struct {
	Brokers        []string
	ClientID       string
	MaxPollRecords int
	Retry          RetryPolicy
}

func (c *KafkaConfig) withDefaults() {
	if c.MaxPollRecords <= 0 {
		c.MaxPollRecords = 500
	}
}

func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka brokers are required")
	}
	return nil
}

func (c KafkaConfig) baseOpts() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(c.Brokers...)}
	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}
	return opts
}

// KafkaPublisher produces records with the default key hashing partitioner,
// so every record of one key lands on one partition.
type KafkaPublisher struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger, opts ...kgo.Opt) (*KafkaPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kopts := append(cfg.baseOpts(), kgo.AllowAutoTopicCreation())
	kopts = append(kopts, opts...)
	cl, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("new kafka producer: %w", err)
	}
	return &KafkaPublisher{client: cl, logger: resolveLogger(logger)}, nil
}

func (p *KafkaPublisher) PublishAsync(ctx context.Context, record contractsv1.Record, onAck AckFunc) {
	p.client.Produce(ctx, toKgoRecord(record), func(rec *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("kafka produce failed",
				"event", "kafka_produce_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", record.Topic,
				"key", record.Key,
				"error", err.Error(),
			)
			onAck(contractsv1.Receipt{}, err)
			return
		}
		onAck(contractsv1.Receipt{Partition: rec.Partition, Offset: rec.Offset}, nil)
	})
}

// Flush waits until every buffered record was acknowledged or failed.
func (p *KafkaPublisher) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// KafkaSubscriber consumes through a consumer group with manual commits.
// An offset is marked only after the handler returned nil, and rebalances
// are held off while a polled batch is being handled.
type KafkaSubscriber struct {
	cfg    KafkaConfig
	opts   []kgo.Opt
	logger *slog.Logger
}

func NewKafkaSubscriber(cfg KafkaConfig, logger *slog.Logger, opts ...kgo.Opt) (*KafkaSubscriber, error) {
	cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &KafkaSubscriber{cfg: cfg, opts: opts, logger: resolveLogger(logger)}, nil
}

func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string, group string, handler Handler) error {
	kopts := append(s.cfg.baseOpts(),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
		kgo.FetchMaxWait(time.Second),
	)
	kopts = append(kopts, s.opts...)
	cl, err := kgo.NewClient(kopts...)
	if err != nil {
		return fmt.Errorf("new kafka consumer: %w", err)
	}
	defer cl.Close()

	s.logger.Info("kafka subscriber started",
		"event", "kafka_subscribe",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", group,
	)

	consumer := kafkaConsumer{
		handler:      handler,
		retry:        s.cfg.Retry,
		logger:       s.logger,
		markCommit:   func(r *kgo.Record) { cl.MarkCommitRecords(r) },
		commitMarked: func(ctx context.Context) error { return cl.CommitMarkedOffsets(ctx) },
	}
	for {
		fetches := cl.PollRecords(ctx, s.cfg.MaxPollRecords)
		if ctx.Err() != nil {
			cl.AllowRebalance()
			return ctx.Err()
		}
		if fetches.IsClientClosed() {
			return ErrBrokerClosed
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			cl.AllowRebalance()
			return fmt.Errorf("kafka fetch %s/%d: %w", errs[0].Topic, errs[0].Partition, errs[0].Err)
		}
		err := consumer.process(ctx, fetches)
		cl.AllowRebalance()
		if err != nil {
			return err
		}
	}
}

type kafkaConsumer struct {
	handler      Handler
	retry        RetryPolicy
	logger       *slog.Logger
	markCommit   func(*kgo.Record)
	commitMarked func(context.Context) error
}

// process hands records to the handler in partition order and commits what
// succeeded, including when ctx is cancelled halfway through the batch.
func (c kafkaConsumer) process(ctx context.Context, fetches kgo.Fetches) error {
	var handleErr error
	marked := 0
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		if handleErr != nil {
			return
		}
		for _, rec := range p.Records {
			if err := deliver(ctx, c.handler, toDelivery(rec), c.retry, c.logger); err != nil {
				handleErr = err
				return
			}
			c.markCommit(rec)
			marked++
		}
	})
	if marked > 0 {
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.commitMarked(commitCtx); err != nil {
			c.logger.Error("kafka offset commit failed",
				"event", "kafka_commit_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"records", marked,
				"error", err.Error(),
			)
			if handleErr == nil {
				handleErr = fmt.Errorf("commit offsets: %w", err)
			}
		}
	}
	return handleErr
}

func toKgoRecord(record contractsv1.Record) *kgo.Record {
	rec := &kgo.Record{
		Topic: record.Topic,
		Value: record.Value,
	}
	if record.Key != "" {
		rec.Key = []byte(record.Key)
	}
	for k, v := range record.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

func toDelivery(rec *kgo.Record) contractsv1.Delivery {
	var headers map[string]string
	if len(rec.Headers) > 0 {
		headers = make(map[string]string, len(rec.Headers))
		for _, h := range rec.Headers {
			headers[h.Key] = string(h.Value)
		}
	}
	return contractsv1.Delivery{
		Record: contractsv1.Record{
			Topic:   rec.Topic,
			Key:     string(rec.Key),
			Value:   rec.Value,
			Headers: headers,
		},
		Partition: rec.Partition,
		Offset:    rec.Offset,
	}
}
