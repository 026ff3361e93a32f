package messaging

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	contractsv1 "snapstream/contracts/gen/events/v1"
)

const defaultMemoryPartitions = 4

// Memory is an in-process partitioned log with consumer groups. Records with
// the same key land on the same partition and are delivered in order. Each
// group commits its own offset per partition only after the handler
// succeeded, so a failed delivery is redelivered like a real broker would.
type Memory struct {
	mu          sync.Mutex
	partitions  int
	topics      map[string][][]contractsv1.Record
	committed   map[string][]int64
	active      map[string]bool
	notify      chan struct{}
	roundRobin  int
	closed      bool
	failPublish func(contractsv1.Record) error
	ackDelay    time.Duration

	acks   sync.WaitGroup
	retry  RetryPolicy
	logger *slog.Logger
}

func NewMemory(partitions int, retry RetryPolicy, logger *slog.Logger) *Memory {
	if partitions <= 0 {
		partitions = defaultMemoryPartitions
	}
	return &Memory{
		partitions: partitions,
		topics:     make(map[string][][]contractsv1.Record),
		committed:  make(map[string][]int64),
		active:     make(map[string]bool),
		notify:     make(chan struct{}),
		retry:      retry,
		logger:     resolveLogger(logger),
	}
}

// SetFailPublish installs a hook that rejects matching publishes before they
// are stored. A nil hook clears it.
func (m *Memory) SetFailPublish(fn func(contractsv1.Record) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPublish = fn
}

// SetAckDelay postpones acknowledgements. The record is stored immediately,
// so an acknowledgement lost to ctx expiry still leaves it on the log.
func (m *Memory) SetAckDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ackDelay = delay
}

func (m *Memory) PublishAsync(ctx context.Context, record contractsv1.Record, onAck AckFunc) {
	m.mu.Lock()
	var err error
	switch {
	case m.closed:
		err = ErrBrokerClosed
	case ctx.Err() != nil:
		err = ctx.Err()
	case m.failPublish != nil:
		err = m.failPublish(record)
	}
	if err != nil {
		m.acks.Add(1)
		m.mu.Unlock()
		go func() {
			defer m.acks.Done()
			onAck(contractsv1.Receipt{}, err)
		}()
		return
	}

	partition := m.partitionFor(record.Key)
	parts := m.topicLocked(record.Topic)
	offset := int64(len(parts[partition]))
	stored := record
	stored.Value = append([]byte(nil), record.Value...)
	stored.Headers = copyHeaders(record.Headers)
	parts[partition] = append(parts[partition], stored)

	close(m.notify)
	m.notify = make(chan struct{})
	delay := m.ackDelay
	m.acks.Add(1)
	m.mu.Unlock()

	receipt := contractsv1.Receipt{Partition: int32(partition), Offset: offset}
	go func() {
		defer m.acks.Done()
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				onAck(contractsv1.Receipt{}, ctx.Err())
				return
			}
		}
		onAck(receipt, nil)
	}()
}

// Subscribe blocks delivering topic to handler as the only member of group
// until ctx is done or the broker is closed.
func (m *Memory) Subscribe(ctx context.Context, topic string, group string, handler Handler) error {
	key := group + "/" + topic
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrBrokerClosed
	}
	if m.active[key] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGroupBusy, key)
	}
	m.active[key] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.active, key)
		m.mu.Unlock()
	}()

	m.logger.Info("memory subscriber started",
		"event", "memory_subscribe",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", group,
	)

	cursor := 0
	for {
		delivery, ok, wake, closed := m.next(key, topic, &cursor)
		if closed {
			return ErrBrokerClosed
		}
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wake:
				continue
			}
		}
		if err := deliver(ctx, handler, delivery, m.retry, m.logger); err != nil {
			return err
		}
		m.commit(key, delivery.Partition, delivery.Offset+1)
	}
}

// next returns the oldest uncommitted record, starting the scan at the
// partition after the last one served.
func (m *Memory) next(key, topic string, cursor *int) (contractsv1.Delivery, bool, <-chan struct{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return contractsv1.Delivery{}, false, nil, true
	}
	parts := m.topicLocked(topic)
	offsets := m.offsetsLocked(key)
	for i := 0; i < m.partitions; i++ {
		partition := (*cursor + i) % m.partitions
		offset := offsets[partition]
		if offset >= int64(len(parts[partition])) {
			continue
		}
		*cursor = partition + 1
		record := parts[partition][offset]
		record.Value = append([]byte(nil), record.Value...)
		record.Headers = copyHeaders(record.Headers)
		return contractsv1.Delivery{
			Record:    record,
			Partition: int32(partition),
			Offset:    offset,
		}, true, nil, false
	}
	return contractsv1.Delivery{}, false, m.notify, false
}

func (m *Memory) commit(key string, partition int32, next int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offsets := m.offsetsLocked(key)
	if next > offsets[partition] {
		offsets[partition] = next
	}
}

// Records returns every stored record of topic, partition by partition.
func (m *Memory) Records(topic string) []contractsv1.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []contractsv1.Record
	for _, part := range m.topics[topic] {
		out = append(out, part...)
	}
	return out
}

// Lag reports how many records of topic group has not committed yet.
func (m *Memory) Lag(group, topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := m.topicLocked(topic)
	offsets := m.offsetsLocked(group + "/" + topic)
	lag := 0
	for partition, records := range parts {
		lag += len(records) - int(offsets[partition])
	}
	return lag
}

// Flush waits for every outstanding acknowledgement.
func (m *Memory) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.acks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further publishes, stops subscribers and waits for pending
// acknowledgements.
func (m *Memory) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.notify)
		m.notify = make(chan struct{})
	}
	m.mu.Unlock()
	m.acks.Wait()
}

func (m *Memory) partitionFor(key string) int {
	if key == "" {
		m.roundRobin = (m.roundRobin + 1) % m.partitions
		return m.roundRobin
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(m.partitions))
}

func (m *Memory) topicLocked(topic string) [][]contractsv1.Record {
	parts, ok := m.topics[topic]
	if !ok {
		parts = make([][]contractsv1.Record, m.partitions)
		m.topics[topic] = parts
	}
	return parts
}

func (m *Memory) offsetsLocked(key string) []int64 {
	offsets, ok := m.committed[key]
	if !ok {
		offsets = make([]int64, m.partitions)
		m.committed[key] = offsets
	}
	return offsets
}
