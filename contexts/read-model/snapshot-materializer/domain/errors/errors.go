package errors

import "errors"

var (
	ErrSnapshotNotFound         = errors.New("snapshot not found")
	ErrVersionConflict          = errors.New("snapshot version conflict")
	ErrMissingEntityKey         = errors.New("snapshot event has no entity key")
	ErrInvalidSnapshotEvent     = errors.New("invalid snapshot event")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
