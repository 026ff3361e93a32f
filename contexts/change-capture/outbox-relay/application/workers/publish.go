package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

const (
	defaultBatchSize      = 100
	defaultPublishTimeout = 10 * time.Second
	defaultMarkTimeout    = 5 * time.Second
)

type publishResult struct {
	receipt ports.PublishReceipt
	err     error
}

// publishAndWait blocks until the broker acknowledged the record or timeout
// elapsed. A late acknowledgement after timeout is discarded; the caller
// treats the record as not published.
func publishAndWait(
	ctx context.Context,
	publisher ports.EventPublisher,
	record ports.OutboundRecord,
	timeout time.Duration,
) (ports.PublishReceipt, error) {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan publishResult, 1)
	publisher.PublishAsync(pctx, record, func(receipt ports.PublishReceipt, err error) {
		done <- publishResult{receipt: receipt, err: err}
	})

	select {
	case res := <-done:
		return res.receipt, res.err
	case <-pctx.Done():
		select {
		case res := <-done:
			return res.receipt, res.err
		default:
		}
		return ports.PublishReceipt{}, fmt.Errorf("%w: %v", domainerrors.ErrPublishTimeout, pctx.Err())
	}
}

// inflightSet tracks rows whose acknowledgement is still outstanding so a
// later poll does not send them again while the first send is pending.
// idle is closed whenever the set is empty.
type inflightSet struct {
	mu   sync.Mutex
	ids  map[int64]struct{}
	idle chan struct{}
}

func newInflightSet() *inflightSet {
	idle := make(chan struct{})
	close(idle)
	return &inflightSet{ids: make(map[int64]struct{}), idle: idle}
}

func (s *inflightSet) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	if len(s.ids) == 0 {
		s.idle = make(chan struct{})
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *inflightSet) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	if len(s.ids) == 0 {
		close(s.idle)
	}
}

func (s *inflightSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *inflightSet) wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pendingBatch counts the acknowledgements of one tick. It starts at one for
// the caller, so done cannot close before seal even if callbacks run inline.
type pendingBatch struct {
	mu        sync.Mutex
	remaining int
	done      chan struct{}
}

func newPendingBatch() *pendingBatch {
	return &pendingBatch{remaining: 1, done: make(chan struct{})}
}

func (b *pendingBatch) add() {
	b.mu.Lock()
	b.remaining++
	b.mu.Unlock()
}

func (b *pendingBatch) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining--
	if b.remaining == 0 {
		close(b.done)
	}
}

func (b *pendingBatch) seal() {
	b.finish()
}
