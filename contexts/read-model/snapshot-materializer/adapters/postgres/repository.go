package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	domainerrors "snapstream/contexts/read-model/snapshot-materializer/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the read model and dead letter tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&snapshotModel{}, &deadLetterModel{})
}

func (r *Repository) Get(ctx context.Context, entityID string) (entities.SnapshotRecord, error) {
	var row snapshotModel
	err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.SnapshotRecord{}, domainerrors.ErrSnapshotNotFound
	}
	if err != nil {
		return entities.SnapshotRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) Save(ctx context.Context, record entities.SnapshotRecord, expectedVersion int64) error {
	if expectedVersion == 0 {
		return r.insert(ctx, record)
	}

	result := r.db.WithContext(ctx).
		Model(&snapshotModel{}).
		Where("entity_id = ?", record.EntityID).
		Where("version = ?", expectedVersion).
		Updates(map[string]any{
			"snapshot_payload": record.Payload,
			"version":          record.Version,
			"updated_at":       record.UpdatedAt.UTC(),
			"source_partition": record.SourcePartition,
			"source_offset":    record.SourceOffset,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVersionConflict
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, record entities.SnapshotRecord) error {
	row := snapshotModelFromEntity(record)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrVersionConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Another consumer created the record first.
		return domainerrors.ErrVersionConflict
	}
	return nil
}

func (r *Repository) Quarantine(ctx context.Context, letter entities.DeadLetter) error {
	row := deadLetterModel{
		Topic:         letter.Topic,
		MessageKey:    letter.Key,
		Partition:     letter.Partition,
		Offset:        letter.Offset,
		Payload:       append([]byte(nil), letter.Payload...),
		Attempt:       letter.Attempt,
		Reason:        letter.Reason,
		QuarantinedAt: letter.QuarantinedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	r.logger.Warn("snapshot event written to dead letters",
		"event", "snapshot_dead_letter_written",
		"module", "read-model/snapshot-materializer",
		"layer", "adapter",
		"key", letter.Key,
		"partition", letter.Partition,
		"offset", letter.Offset,
	)
	return nil
}

type snapshotModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EntityID        string    `gorm:"column:entity_id;not null;uniqueIndex:idx_snapshot_entity"`
	SnapshotPayload []byte    `gorm:"column:snapshot_payload;not null"`
	Version         int64     `gorm:"column:version;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;index:idx_snapshot_updated"`
	SourcePartition int32     `gorm:"column:source_partition"`
	SourceOffset    int64     `gorm:"column:source_offset"`
}

func (snapshotModel) TableName() string {
	return "entity_snapshots"
}

func snapshotModelFromEntity(record entities.SnapshotRecord) snapshotModel {
	return snapshotModel{
		EntityID:        record.EntityID,
		SnapshotPayload: append([]byte(nil), record.Payload...),
		Version:         record.Version,
		CreatedAt:       record.CreatedAt.UTC(),
		UpdatedAt:       record.UpdatedAt.UTC(),
		SourcePartition: record.SourcePartition,
		SourceOffset:    record.SourceOffset,
	}
}

func (m snapshotModel) toEntity() entities.SnapshotRecord {
	return entities.SnapshotRecord{
		EntityID:        m.EntityID,
		Payload:         append([]byte(nil), m.SnapshotPayload...),
		Version:         m.Version,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
		SourcePartition: m.SourcePartition,
		SourceOffset:    m.SourceOffset,
	}
}

type deadLetterModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Topic         string    `gorm:"column:topic;not null"`
	MessageKey    string    `gorm:"column:message_key"`
	Partition     int32     `gorm:"column:source_partition"`
	Offset        int64     `gorm:"column:source_offset"`
	Payload       []byte    `gorm:"column:payload"`
	Attempt       int       `gorm:"column:attempt"`
	Reason        string    `gorm:"column:reason"`
	QuarantinedAt time.Time `gorm:"column:quarantined_at;not null;index:idx_dead_letter_quarantined"`
}

func (deadLetterModel) TableName() string {
	return "snapshot_dead_letters"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
