package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	application "snapstream/contexts/change-capture/outbox-relay/application"
	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

// Store is an in-memory outbox for local runtime and tests.
// It is not intended as production persistence.
type Store struct {
	mu       sync.RWMutex
	rows     map[int64]entities.OutboxRow
	sequence int64
	now      func() time.Time
	logger   *slog.Logger

	// Fault hooks. A non-nil return value fails the call before any state changes.
	FailList func() error
	FailMark func(ids []int64) error
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		rows:   make(map[int64]entities.OutboxRow),
		now:    func() time.Time { return time.Now().UTC() },
		logger: application.ResolveLogger(logger),
	}
}

// WithClock makes Enqueue stamp CreatedAt from clock when the caller left it zero.
func (s *Store) WithClock(clock ports.Clock) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return clock.Now().UTC() }
	return s
}

func (s *Store) Enqueue(_ context.Context, rows ...entities.NewOutboxRow) ([]entities.OutboxRow, error) {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]entities.OutboxRow, 0, len(rows))
	for _, row := range rows {
		s.sequence++
		createdAt := row.CreatedAt.UTC()
		if row.CreatedAt.IsZero() {
			createdAt = s.now()
		}
		item := entities.OutboxRow{
			ID:           s.sequence,
			Payload:      append([]byte(nil), row.Payload...),
			PartitionKey: row.PartitionKey,
			Topic:        row.Topic,
			EntityID:     strings.TrimSpace(row.EntityID),
			CreatedAt:    createdAt,
		}
		s.rows[item.ID] = item
		created = append(created, item)
	}

	s.logger.Debug("outbox rows enqueued in memory store",
		"event", "memory_outbox_enqueued",
		"module", "change-capture/outbox-relay",
		"layer", "adapter",
		"row_count", len(created),
	)
	return created, nil
}

func (s *Store) ListUnpublished(_ context.Context, filter ports.ListFilter) ([]entities.OutboxRow, error) {
	if s.FailList != nil {
		if err := s.FailList(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(filter.Limit, func(row entities.OutboxRow) bool {
		return !row.Published && (!filter.ExcludeEntityRows || !row.Aggregatable())
	}), nil
}

func (s *Store) ListAggregatable(_ context.Context, olderThan time.Time, limit int) ([]entities.OutboxRow, error) {
	if s.FailList != nil {
		if err := s.FailList(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(limit, func(row entities.OutboxRow) bool {
		return !row.Published && row.Aggregatable() && row.CreatedAt.Before(olderThan)
	}), nil
}

func (s *Store) MarkPublished(_ context.Context, ids []int64, publishedAt time.Time) (int64, error) {
	if s.FailMark != nil {
		if err := s.FailMark(ids); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := publishedAt.UTC()
	var changed int64
	for _, id := range ids {
		row, ok := s.rows[id]
		if !ok || row.Published {
			continue
		}
		row.Published = true
		row.PublishedAt = &at
		s.rows[id] = row
		changed++
	}
	return changed, nil
}

func (s *Store) Stats(_ context.Context) (entities.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats entities.OutboxStats
	for _, row := range s.rows {
		if row.Published {
			stats.Published++
		} else {
			stats.Unpublished++
		}
	}
	return stats, nil
}

// Rows returns every row in creation order. Test helper.
func (s *Store) Rows() []entities.OutboxRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(0, func(entities.OutboxRow) bool { return true })
}

func (s *Store) collect(limit int, keep func(entities.OutboxRow) bool) []entities.OutboxRow {
	items := make([]entities.OutboxRow, 0)
	for _, row := range s.rows {
		if keep(row) {
			items = append(items, row)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
