package v1

import (
	"encoding/json"
	"time"
)

// SnapshotEvent is the consolidated per-entity payload published on the
// snapshot topic. This package is contract-only and must stay backward compatible.
type SnapshotEvent struct {
	EventID        string            `json:"event_id"`
	EntityID       string            `json:"entity_id"`
	Attributes     []json.RawMessage `json:"attributes"`
	GeneratedAt    time.Time         `json:"generated_at"`
	SourceRowCount int               `json:"source_row_count,omitempty"`
}
