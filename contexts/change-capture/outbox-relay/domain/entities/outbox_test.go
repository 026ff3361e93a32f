package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
)

func TestGroupByEntityKeepsFirstSeenOrder(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []OutboxRow{
		{ID: 1, EntityID: "B", CreatedAt: at},
		{ID: 2, EntityID: "A", CreatedAt: at.Add(time.Second)},
		{ID: 3, EntityID: "", CreatedAt: at.Add(2 * time.Second)},
		{ID: 4, EntityID: "B", CreatedAt: at.Add(3 * time.Second)},
	}

	groups := GroupByEntity(rows)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].EntityID != "B" || groups[1].EntityID != "A" {
		t.Fatalf("unexpected group order: %s, %s", groups[0].EntityID, groups[1].EntityID)
	}
	ids := groups[0].IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Fatalf("unexpected ids for B: %v", ids)
	}
}

func TestNewOutboxRowValidate(t *testing.T) {
	valid := NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "client-1", Topic: "task-topic"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid row, got %v", err)
	}

	for name, row := range map[string]NewOutboxRow{
		"missing topic":   {Payload: []byte(`{}`), PartitionKey: "k"},
		"missing key":     {Payload: []byte(`{}`), Topic: "t"},
		"missing payload": {PartitionKey: "k", Topic: "t"},
	} {
		if err := row.Validate(); !errors.Is(err, domainerrors.ErrInvalidOutboxRow) {
			t.Fatalf("%s: expected invalid row error, got %v", name, err)
		}
	}
}
