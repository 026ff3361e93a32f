package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	contractsv1 "snapstream/contracts/gen/events/v1"

	"github.com/juju/clock"
	"github.com/juju/retry"
)

var (
	ErrBrokerClosed = errors.New("messaging: broker closed")
	ErrGroupBusy    = errors.New("messaging: consumer group already subscribed")
	ErrNacked       = errors.New("messaging: broker rejected the record")
)

// Handler processes one delivery. Returning nil commits the position; any
// error redelivers the same position with Attempt incremented.
type Handler = func(ctx context.Context, delivery contractsv1.Delivery) error

// AckFunc receives the broker acknowledgement of one published record.
type AckFunc = func(receipt contractsv1.Receipt, err error)

// RetryPolicy is the backoff between redeliveries of a failed position.
type RetryPolicy struct {
	Delay    time.Duration
	MaxDelay time.Duration
	Clock    clock.Clock
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Delay <= 0 {
		p.Delay = 200 * time.Millisecond
	}
	if p.MaxDelay < p.Delay {
		p.MaxDelay = 10 * time.Second
		if p.MaxDelay < p.Delay {
			p.MaxDelay = p.Delay
		}
	}
	if p.Clock == nil {
		p.Clock = clock.WallClock
	}
	return p
}

// deliver runs handler until it succeeds or ctx is done. Each call carries
// the 1-based attempt number so the handler can decide to give up.
func deliver(
	ctx context.Context,
	handler Handler,
	delivery contractsv1.Delivery,
	policy RetryPolicy,
	logger *slog.Logger,
) error {
	policy = policy.withDefaults()
	attempt := 0
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			attempt++
			current := delivery
			current.Attempt = attempt
			return handler(ctx, current)
		},
		NotifyFunc: func(err error, n int) {
			logger.Warn("delivery failed, redelivering",
				"event", "messaging_redelivery",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", delivery.Topic,
				"key", delivery.Key,
				"partition", delivery.Partition,
				"offset", delivery.Offset,
				"attempt", n,
				"error", err.Error(),
			)
		},
		Attempts:    -1,
		Delay:       policy.Delay,
		MaxDelay:    policy.MaxDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       policy.Clock,
		Stop:        ctx.Done(),
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return retry.LastError(err)
}

func copyHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
