package entities

import (
	"strings"
	"time"

	domainerrors "snapstream/contexts/change-capture/outbox-relay/domain/errors"
)

// OutboxRow is one pending stream event written by intake in the same
// transaction as the business change it describes.
// Published flips false -> true exactly once and PublishedAt is set with it.
type OutboxRow struct {
	ID           int64
	Payload      []byte
	PartitionKey string
	Topic        string
	EntityID     string
	Published    bool
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// Aggregatable reports whether the row targets a logical entity.
// Rows without an entity are relayed individually and never aggregated.
func (r OutboxRow) Aggregatable() bool {
	return strings.TrimSpace(r.EntityID) != ""
}

// NewOutboxRow is the intake-side input; the store assigns ID and CreatedAt
// unless CreatedAt is provided.
type NewOutboxRow struct {
	Payload      []byte
	PartitionKey string
	Topic        string
	EntityID     string
	CreatedAt    time.Time
}

func (n NewOutboxRow) Validate() error {
	if strings.TrimSpace(n.Topic) == "" || strings.TrimSpace(n.PartitionKey) == "" {
		return domainerrors.ErrInvalidOutboxRow
	}
	if len(n.Payload) == 0 {
		return domainerrors.ErrInvalidOutboxRow
	}
	return nil
}

// OutboxStats are point-in-time gauges derived from the store.
type OutboxStats struct {
	Unpublished int64
	Published   int64
}

// EntityGroup is the set of pending rows for one entity, in creation order.
type EntityGroup struct {
	EntityID string
	Rows     []OutboxRow
}

func (g EntityGroup) IDs() []int64 {
	ids := make([]int64, 0, len(g.Rows))
	for _, row := range g.Rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// GroupByEntity groups aggregatable rows by entity id. Groups are returned in
// the order their first row appears; rows keep their relative order.
func GroupByEntity(rows []OutboxRow) []EntityGroup {
	index := make(map[string]int)
	groups := make([]EntityGroup, 0)
	for _, row := range rows {
		if !row.Aggregatable() {
			continue
		}
		pos, ok := index[row.EntityID]
		if !ok {
			pos = len(groups)
			index[row.EntityID] = pos
			groups = append(groups, EntityGroup{EntityID: row.EntityID})
		}
		groups[pos].Rows = append(groups[pos].Rows, row)
	}
	return groups
}
