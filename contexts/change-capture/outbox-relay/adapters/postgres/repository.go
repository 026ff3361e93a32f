package postgresadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	"snapstream/contexts/change-capture/outbox-relay/ports"

	"gorm.io/gorm"
)

const defaultListLimit = 100

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

// Migrate creates the outbox table and its indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&outboxModel{})
}

func (r *Repository) Enqueue(ctx context.Context, rows ...entities.NewOutboxRow) ([]entities.OutboxRow, error) {
	var created []entities.OutboxRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = EnqueueTx(tx, rows...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EnqueueTx inserts rows inside the caller's transaction so the business
// write and its outbox rows commit or roll back together.
func EnqueueTx(tx *gorm.DB, rows ...entities.NewOutboxRow) ([]entities.OutboxRow, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	models := make([]outboxModel, 0, len(rows))
	now := time.Now().UTC()
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		createdAt := row.CreatedAt.UTC()
		if row.CreatedAt.IsZero() {
			createdAt = now
		}
		models = append(models, outboxModel{
			Payload:      append([]byte(nil), row.Payload...),
			PartitionKey: row.PartitionKey,
			Topic:        row.Topic,
			EntityID:     nullableEntityID(row.EntityID),
			CreatedAt:    createdAt,
		})
	}
	if err := tx.Create(&models).Error; err != nil {
		return nil, fmt.Errorf("insert outbox rows: %w", err)
	}

	items := make([]entities.OutboxRow, 0, len(models))
	for _, model := range models {
		items = append(items, model.toEntity())
	}
	return items, nil
}

func (r *Repository) ListUnpublished(ctx context.Context, filter ports.ListFilter) ([]entities.OutboxRow, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	tx := r.db.WithContext(ctx).Where("published = ?", false)
	if filter.ExcludeEntityRows {
		tx = tx.Where("entity_id IS NULL")
	}
	return r.find(tx, limit)
}

func (r *Repository) ListAggregatable(ctx context.Context, olderThan time.Time, limit int) ([]entities.OutboxRow, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	tx := r.db.WithContext(ctx).
		Where("published = ?", false).
		Where("entity_id IS NOT NULL").
		Where("created_at < ?", olderThan.UTC())
	return r.find(tx, limit)
}

func (r *Repository) MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id IN ?", ids).
		Where("published = ?", false).
		Updates(map[string]any{
			"published":    true,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected < int64(len(ids)) {
		r.logger.Debug("outbox mark skipped already published rows",
			"event", "outbox_mark_partial",
			"module", "change-capture/outbox-relay",
			"layer", "adapter",
			"requested", len(ids),
			"changed", result.RowsAffected,
		)
	}
	return result.RowsAffected, nil
}

func (r *Repository) Stats(ctx context.Context) (entities.OutboxStats, error) {
	type countRow struct {
		Published bool
		Total     int64
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Select("published, COUNT(*) AS total").
		Group("published").
		Scan(&counts).
		Error; err != nil {
		return entities.OutboxStats{}, err
	}

	var stats entities.OutboxStats
	for _, count := range counts {
		if count.Published {
			stats.Published = count.Total
		} else {
			stats.Unpublished = count.Total
		}
	}
	return stats, nil
}

func (r *Repository) find(tx *gorm.DB, limit int) ([]entities.OutboxRow, error) {
	var rows []outboxModel
	if err := tx.
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.OutboxRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type outboxModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Payload      []byte     `gorm:"column:payload;not null"`
	PartitionKey string     `gorm:"column:partition_key;not null"`
	Topic        string     `gorm:"column:topic;not null"`
	EntityID     *string    `gorm:"column:entity_id;index:idx_outbox_entity_created,priority:1"`
	Published    bool       `gorm:"column:published;not null;default:false;index:idx_outbox_published_created,priority:1"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;index:idx_outbox_published_created,priority:2;index:idx_outbox_entity_created,priority:2"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "outbox_rows"
}

func (m outboxModel) toEntity() entities.OutboxRow {
	row := entities.OutboxRow{
		ID:           m.ID,
		Payload:      append([]byte(nil), m.Payload...),
		PartitionKey: m.PartitionKey,
		Topic:        m.Topic,
		Published:    m.Published,
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if m.EntityID != nil {
		row.EntityID = *m.EntityID
	}
	if m.PublishedAt != nil {
		at := m.PublishedAt.UTC()
		row.PublishedAt = &at
	}
	return row
}

func nullableEntityID(entityID string) *string {
	value := strings.TrimSpace(entityID)
	if value == "" {
		return nil
	}
	return &value
}
