package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

func TestEnqueueRejectsRowsWithoutTopic(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Enqueue(context.Background(),
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k"},
	)
	if !errors.Is(err, domainerrors.ErrInvalidOutboxRow) {
		t.Fatalf("expected invalid row error, got %v", err)
	}
	if len(store.Rows()) != 0 {
		t.Fatal("expected no rows after rejected batch")
	}
}

func TestListUnpublishedOrderAndEntityFilter(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := store.Enqueue(context.Background(),
		entities.NewOutboxRow{Payload: []byte(`{"n":1}`), PartitionKey: "c1", Topic: "t", CreatedAt: base.Add(2 * time.Second)},
		entities.NewOutboxRow{Payload: []byte(`{"n":2}`), PartitionKey: "c1", Topic: "t", EntityID: "T1", CreatedAt: base},
		entities.NewOutboxRow{Payload: []byte(`{"n":3}`), PartitionKey: "c2", Topic: "t", CreatedAt: base.Add(time.Second)},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	all, err := store.ListUnpublished(context.Background(), ports.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != 2 || all[1].ID != 3 || all[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", all)
	}

	plain, err := store.ListUnpublished(context.Background(), ports.ListFilter{Limit: 10, ExcludeEntityRows: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(plain) != 2 {
		t.Fatalf("expected entity rows excluded, got %d rows", len(plain))
	}

	limited, _ := store.ListUnpublished(context.Background(), ports.ListFilter{Limit: 1})
	if len(limited) != 1 || limited[0].ID != 2 {
		t.Fatalf("expected limit to keep oldest row, got %+v", limited)
	}
}

func TestListAggregatableIsStrictlyOlderThanThreshold(t *testing.T) {
	store := NewStore(nil)
	threshold := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, _ = store.Enqueue(context.Background(),
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", EntityID: "T1", CreatedAt: threshold.Add(-time.Millisecond)},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", EntityID: "T1", CreatedAt: threshold},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", CreatedAt: threshold.Add(-time.Hour)},
	)

	rows, err := store.ListAggregatable(context.Background(), threshold, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("expected only row 1, got %+v", rows)
	}
}

func TestMarkPublishedWritesTimestampOnce(t *testing.T) {
	store := NewStore(nil)
	created, _ := store.Enqueue(context.Background(),
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
	)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	changed, err := store.MarkPublished(context.Background(), []int64{created[0].ID}, first)
	if err != nil || changed != 1 {
		t.Fatalf("expected one row changed, got %d, %v", changed, err)
	}
	changed, err = store.MarkPublished(context.Background(), []int64{created[0].ID, 999}, first.Add(time.Hour))
	if err != nil || changed != 0 {
		t.Fatalf("expected idempotent mark, got %d, %v", changed, err)
	}

	row := store.Rows()[0]
	if !row.Published || row.PublishedAt == nil || !row.PublishedAt.Equal(first) {
		t.Fatalf("expected published_at kept at first mark, got %+v", row.PublishedAt)
	}

	stats, _ := store.Stats(context.Background())
	if stats.Published != 1 || stats.Unpublished != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestEnqueueTrimsEntityIDLikePostgres(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := store.Enqueue(ctx,
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "T1", Topic: "tasks", EntityID: "T1", CreatedAt: base},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "T1", Topic: "tasks", EntityID: "T1 ", CreatedAt: base.Add(time.Millisecond)},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "A", Topic: "audit", EntityID: "  ", CreatedAt: base},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	rows, err := store.ListAggregatable(ctx, base.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	groups := entities.GroupByEntity(rows)
	if len(groups) != 1 || groups[0].EntityID != "T1" || len(groups[0].Rows) != 2 {
		t.Fatalf("expected one T1 group with two rows, got %+v", groups)
	}
}
