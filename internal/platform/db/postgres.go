package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres wraps DB connectivity.
// The outbox and the read model share one handle per process.
type Postgres struct {
	DB *gorm.DB
}

// Migration creates or updates the tables one bounded context owns.
type Migration func(db *gorm.DB) error

func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

// Migrate runs each migration in order and stops at the first failure.
func (p *Postgres) Migrate(logger *slog.Logger, migrations ...Migration) error {
	if logger == nil {
		logger = slog.Default()
	}
	for i, migrate := range migrations {
		if err := migrate(p.DB); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info("database migrated",
		"event", "db_migrated",
		"module", "internal/platform/db",
		"layer", "platform",
		"migrations", len(migrations),
	)
	return nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
