package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
	"snapstream/contexts/change-capture/outbox-relay/ports"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(db, nil), db
}

func TestRepositoryListOrdersByCreatedAtThenID(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Enqueue(ctx,
		entities.NewOutboxRow{Payload: []byte(`{"n":1}`), PartitionKey: "c1", Topic: "tasks", CreatedAt: base.Add(time.Second)},
		entities.NewOutboxRow{Payload: []byte(`{"n":2}`), PartitionKey: "c1", Topic: "tasks", EntityID: "T1", CreatedAt: base},
		entities.NewOutboxRow{Payload: []byte(`{"n":3}`), PartitionKey: "c1", Topic: "tasks", CreatedAt: base},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	rows, err := repo.ListUnpublished(ctx, ports.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 3 || rows[0].ID != 2 || rows[1].ID != 3 || rows[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", rows)
	}
	if rows[0].EntityID != "T1" || rows[1].EntityID != "" {
		t.Fatalf("entity id not mapped: %+v", rows)
	}

	plain, err := repo.ListUnpublished(ctx, ports.ListFilter{Limit: 10, ExcludeEntityRows: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(plain) != 2 {
		t.Fatalf("expected two rows without entity, got %d", len(plain))
	}
}

func TestRepositoryListAggregatableHonorsThreshold(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	threshold := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Enqueue(ctx,
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", EntityID: "T1", CreatedAt: threshold.Add(-time.Second)},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", EntityID: "T1", CreatedAt: threshold.Add(time.Second)},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t", CreatedAt: threshold.Add(-time.Hour)},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	rows, err := repo.ListAggregatable(ctx, threshold, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("expected only the settled entity row, got %+v", rows)
	}
}

func TestRepositoryMarkPublishedIsIdempotent(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	created, err := repo.Enqueue(ctx,
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	changed, err := repo.MarkPublished(ctx, []int64{created[0].ID}, first)
	if err != nil || changed != 1 {
		t.Fatalf("expected one change, got %d, %v", changed, err)
	}
	changed, err = repo.MarkPublished(ctx, []int64{created[0].ID, created[1].ID}, first.Add(time.Minute))
	if err != nil || changed != 1 {
		t.Fatalf("expected only the unpublished row to change, got %d, %v", changed, err)
	}

	rows, err := repo.ListUnpublished(ctx, ports.ListFilter{Limit: 10})
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no unpublished rows, got %d, %v", len(rows), err)
	}

	var model outboxModel
	if err := repo.db.First(&model, created[0].ID).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if model.PublishedAt == nil || !model.PublishedAt.UTC().Equal(first) {
		t.Fatalf("expected published_at written once, got %v", model.PublishedAt)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Published != 2 || stats.Unpublished != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestEnqueueTxRollsBackWithBusinessWrite(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	rollback := errors.New("business write failed")

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := EnqueueTx(tx, entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"}); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Unpublished != 0 {
		t.Fatalf("expected outbox insert rolled back, got %+v", stats)
	}
}

func TestEnqueueRejectsInvalidRow(t *testing.T) {
	repo, _ := newTestRepository(t)
	_, err := repo.Enqueue(context.Background(), entities.NewOutboxRow{Payload: []byte(`{}`), Topic: "t"})
	if !errors.Is(err, domainerrors.ErrInvalidOutboxRow) {
		t.Fatalf("expected invalid row, got %v", err)
	}
}

func TestRepositoryStatsCountsByState(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Enqueue(ctx,
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
		entities.NewOutboxRow{Payload: []byte(`{}`), PartitionKey: "k", Topic: "t"},
	)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if _, err := repo.MarkPublished(ctx, []int64{created[0].ID}, time.Now().UTC()); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Unpublished != 2 || stats.Published != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
