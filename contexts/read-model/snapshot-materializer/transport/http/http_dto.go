package httptransport

import "time"

type AttributeDTO struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Values []any  `json:"values"`
}

// SnapshotResponse renders one materialized entity. Version is a monotone
// heartbeat: replays of the same event also advance it.
type SnapshotResponse struct {
	EntityID        string         `json:"entity_id"`
	Version         int64          `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	SourcePartition int32          `json:"source_partition"`
	SourceOffset    int64          `json:"source_offset"`
	Attributes      []AttributeDTO `json:"attributes"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
