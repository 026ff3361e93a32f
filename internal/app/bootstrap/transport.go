package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	outboxports "snapstream/contexts/change-capture/outbox-relay/ports"
	snapshotports "snapstream/contexts/read-model/snapshot-materializer/ports"
	"snapstream/internal/platform/config"
	"snapstream/internal/platform/messaging"
)

var (
	_ outboxports.EventPublisher    = (*messaging.Memory)(nil)
	_ outboxports.EventPublisher    = (*messaging.KafkaPublisher)(nil)
	_ outboxports.EventPublisher    = (*messaging.RabbitMQ)(nil)
	_ snapshotports.EventSubscriber = (*messaging.Memory)(nil)
	_ snapshotports.EventSubscriber = (*messaging.KafkaSubscriber)(nil)
	_ snapshotports.EventSubscriber = (*messaging.RabbitMQ)(nil)
)

// transport is the broker selected by broker.kind, seen through the ports.
type transport struct {
	publisher  outboxports.EventPublisher
	subscriber snapshotports.EventSubscriber
	memory     *messaging.Memory
	flush      func(context.Context) error
	close      func() error
}

func openTransport(cfg config.Config, logger *slog.Logger) (*transport, error) {
	retry := messaging.RetryPolicy{
		Delay:    cfg.Materializer.RetryDelay,
		MaxDelay: cfg.Materializer.MaxRetryDelay,
	}

	switch cfg.Broker.Kind {
	case config.BrokerKafka:
		kafkaCfg := messaging.KafkaConfig{
			Brokers:  cfg.Broker.Kafka.Brokers,
			ClientID: cfg.Broker.Kafka.ClientID,
			Retry:    retry,
		}
		publisher, err := messaging.NewKafkaPublisher(kafkaCfg, logger)
		if err != nil {
			return nil, err
		}
		subscriber, err := messaging.NewKafkaSubscriber(kafkaCfg, logger)
		if err != nil {
			publisher.Close()
			return nil, err
		}
		return &transport{
			publisher:  publisher,
			subscriber: subscriber,
			flush:      publisher.Flush,
			close: func() error {
				publisher.Close()
				return nil
			},
		}, nil

	case config.BrokerRabbitMQ:
		broker, err := messaging.DialRabbitMQ(messaging.RabbitMQConfig{
			URL:      cfg.Broker.RabbitMQ.URL,
			Exchange: cfg.Broker.RabbitMQ.Exchange,
			Retry:    retry,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &transport{
			publisher:  broker,
			subscriber: broker,
			flush:      broker.Flush,
			close:      broker.Close,
		}, nil

	case config.BrokerMemory:
		broker := messaging.NewMemory(0, retry, logger)
		return &transport{
			publisher:  broker,
			subscriber: broker,
			memory:     broker,
			flush:      broker.Flush,
			close: func() error {
				broker.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported broker kind %q", cfg.Broker.Kind)
	}
}
