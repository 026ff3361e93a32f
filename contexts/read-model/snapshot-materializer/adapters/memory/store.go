package memory

import (
	"context"
	"log/slog"
	"sync"

	application "snapstream/contexts/read-model/snapshot-materializer/application"
	"snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	domainerrors "snapstream/contexts/read-model/snapshot-materializer/domain/errors"
)

// Store is an in-memory read model for local runtime and tests.
type Store struct {
	mu          sync.RWMutex
	snapshots   map[string]entities.SnapshotRecord
	deadLetters []entities.DeadLetter
	logger      *slog.Logger

	// FailSave fails the next Save calls while it returns non-nil.
	FailSave func(record entities.SnapshotRecord) error
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		snapshots: make(map[string]entities.SnapshotRecord),
		logger:    application.ResolveLogger(logger),
	}
}

func (s *Store) Get(_ context.Context, entityID string) (entities.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.snapshots[entityID]
	if !ok {
		return entities.SnapshotRecord{}, domainerrors.ErrSnapshotNotFound
	}
	return cloneRecord(record), nil
}

func (s *Store) Save(_ context.Context, record entities.SnapshotRecord, expectedVersion int64) error {
	if s.FailSave != nil {
		if err := s.FailSave(record); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.snapshots[record.EntityID]
	switch {
	case expectedVersion == 0 && exists:
		return domainerrors.ErrVersionConflict
	case expectedVersion != 0 && (!exists || current.Version != expectedVersion):
		return domainerrors.ErrVersionConflict
	}
	s.snapshots[record.EntityID] = cloneRecord(record)

	s.logger.Debug("snapshot saved in memory store",
		"event", "memory_snapshot_saved",
		"module", "read-model/snapshot-materializer",
		"layer", "adapter",
		"entity_id", record.EntityID,
		"version", record.Version,
	)
	return nil
}

func (s *Store) Quarantine(_ context.Context, letter entities.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	letter.Payload = append([]byte(nil), letter.Payload...)
	s.deadLetters = append(s.deadLetters, letter)
	return nil
}

// DeadLetters returns quarantined events in arrival order. Test helper.
func (s *Store) DeadLetters() []entities.DeadLetter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.DeadLetter(nil), s.deadLetters...)
}

func cloneRecord(record entities.SnapshotRecord) entities.SnapshotRecord {
	record.Payload = append([]byte(nil), record.Payload...)
	return record
}
