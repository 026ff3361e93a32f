package messaging

import (
	"context"
	"errors"
	"testing"

	contractsv1 "snapstream/contracts/gen/events/v1"

	"github.com/twmb/franz-go/pkg/kgo"
)

func TestKafkaConsumerCommitsOnlyHandledRecords(t *testing.T) {
	records := []*kgo.Record{
		{Topic: "t", Partition: 1, Offset: 5, Key: []byte("T1"), Value: []byte("a"),
			Headers: []kgo.RecordHeader{{Key: "event_id", Value: []byte("e1")}}},
		{Topic: "t", Partition: 1, Offset: 6, Key: []byte("T1"), Value: []byte("b")},
	}
	fetches := kgo.Fetches{{Topics: []kgo.FetchTopic{{
		Topic:      "t",
		Partitions: []kgo.FetchPartition{{Partition: 1, Records: records}},
	}}}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled []contractsv1.Delivery
	var marked []int64
	commits := 0
	consumer := kafkaConsumer{
		retry:  fastRetry(),
		logger: resolveLogger(nil),
		handler: func(_ context.Context, d contractsv1.Delivery) error {
			handled = append(handled, d)
			if d.Offset == 6 {
				cancel()
				return errors.New("store unavailable")
			}
			return nil
		},
		markCommit: func(r *kgo.Record) { marked = append(marked, r.Offset) },
		commitMarked: func(ctx context.Context) error {
			if ctx.Err() != nil {
				t.Errorf("commit ran on a cancelled context")
			}
			commits++
			return nil
		},
	}

	err := consumer.process(ctx, fetches)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(marked) != 1 || marked[0] != 5 {
		t.Fatalf("expected only offset 5 marked, got %v", marked)
	}
	if commits != 1 {
		t.Fatalf("expected one commit, got %d", commits)
	}
	first := handled[0]
	if first.Key != "T1" || first.Partition != 1 || first.Attempt != 1 || first.Headers["event_id"] != "e1" {
		t.Fatalf("unexpected delivery: %+v", first)
	}
}

func TestToKgoRecordLeavesEmptyKeyUnset(t *testing.T) {
	rec := toKgoRecord(contractsv1.Record{Topic: "t", Value: []byte("v"), Headers: map[string]string{"outbox_id": "7"}})
	if rec.Key != nil {
		t.Fatalf("expected nil key, got %q", rec.Key)
	}
	if len(rec.Headers) != 1 || string(rec.Headers[0].Value) != "7" {
		t.Fatalf("unexpected headers: %+v", rec.Headers)
	}
}

func TestKafkaConfigRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaSubscriber(KafkaConfig{}, nil); err == nil {
		t.Fatal("expected error without brokers")
	}
}
