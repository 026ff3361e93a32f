package db

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestMigrateStopsAtFirstFailure(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	pg := &Postgres{DB: gdb}
	t.Cleanup(func() { _ = pg.Close() })

	calls := 0
	boom := errors.New("boom")
	err = pg.Migrate(nil,
		func(*gorm.DB) error { calls++; return nil },
		func(*gorm.DB) error { calls++; return boom },
		func(*gorm.DB) error { calls++; return nil },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected migration error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected migrations to stop after failure, ran %d", calls)
	}
}

func TestCloseNilIsNoop(t *testing.T) {
	var pg *Postgres
	if err := pg.Close(); err != nil {
		t.Fatalf("expected nil close error, got %v", err)
	}
}
