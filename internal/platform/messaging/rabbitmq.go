package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	contractsv1 "snapstream/contracts/gen/events/v1"

	"github.com/rabbitmq/amqp091-go"
)

const partitionKeyHeader = "partition_key"

type RabbitMQConfig struct {
	URL      string
	Exchange string
	Retry    RetryPolicy
}

func (c RabbitMQConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(c.Exchange) == "" {
		return errors.New("rabbitmq exchange is required")
	}
	return nil
}

// RabbitMQ publishes to a durable topic exchange in confirm mode; the topic
// is the routing key. Records are acknowledged when the broker confirms them.
// It has no partitions, so receipts carry partition -1 and the delivery tag.
type RabbitMQ struct {
	cfg     RabbitMQConfig
	conn    *amqp091.Connection
	ch      *amqp091.Channel
	mu      sync.Mutex
	pending sync.WaitGroup
	logger  *slog.Logger
}

func DialRabbitMQ(cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQ, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitMQ{cfg: cfg, conn: conn, ch: ch, logger: resolveLogger(logger)}, nil
}

func (r *RabbitMQ) PublishAsync(ctx context.Context, record contractsv1.Record, onAck AckFunc) {
	headers := amqp091.Table{}
	for k, v := range record.Headers {
		headers[k] = v
	}
	if record.Key != "" {
		headers[partitionKeyHeader] = record.Key
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    record.Headers["event_id"],
		Headers:      headers,
		Body:         record.Value,
	}

	// Confirms are matched by sequence number, so publishes on the channel
	// are serialized.
	r.mu.Lock()
	confirm, err := r.ch.PublishWithDeferredConfirmWithContext(ctx, r.cfg.Exchange, record.Topic, false, false, msg)
	r.mu.Unlock()
	if err != nil {
		onAck(contractsv1.Receipt{}, fmt.Errorf("publish to rabbitmq: %w", err))
		return
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		ok, err := confirm.WaitContext(ctx)
		switch {
		case err != nil:
			onAck(contractsv1.Receipt{}, err)
		case !ok:
			r.logger.Warn("rabbitmq nacked record",
				"event", "rabbitmq_publish_nacked",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", record.Topic,
				"key", record.Key,
			)
			onAck(contractsv1.Receipt{}, ErrNacked)
		default:
			onAck(contractsv1.Receipt{Partition: -1, Offset: int64(confirm.DeliveryTag)}, nil)
		}
	}()
}

// Flush waits for confirmations of everything published so far.
func (r *RabbitMQ) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if err := r.ch.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		errs = append(errs, err)
	}
	if err := r.conn.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Subscribe consumes a durable queue named after group and topic. Prefetch 1
// keeps deliveries in queue order; a delivery is acked after the handler
// returned nil and requeued when ctx ends first.
func (r *RabbitMQ) Subscribe(ctx context.Context, topic string, group string, handler Handler) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq consumer channel: %w", err)
	}
	defer ch.Close()

	queue := group + "." + topic
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, topic, r.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, group, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue: %w", err)
	}

	r.logger.Info("rabbitmq subscriber started",
		"event", "rabbitmq_subscribe",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", group,
	)

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(group, false)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrBrokerClosed
			}
			if err := deliver(ctx, handler, fromAMQP(topic, d), r.cfg.Retry, r.logger); err != nil {
				_ = d.Nack(false, true)
				return err
			}
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("ack delivery %d: %w", d.DeliveryTag, err)
			}
		}
	}
}

func fromAMQP(topic string, d amqp091.Delivery) contractsv1.Delivery {
	headers := make(map[string]string, len(d.Headers))
	key := ""
	for k, v := range d.Headers {
		if k == partitionKeyHeader {
			key = fmt.Sprint(v)
			continue
		}
		headers[k] = fmt.Sprint(v)
	}
	return contractsv1.Delivery{
		Record: contractsv1.Record{
			Topic:   topic,
			Key:     key,
			Value:   d.Body,
			Headers: headers,
		},
		Partition: -1,
		Offset:    int64(d.DeliveryTag),
	}
}
