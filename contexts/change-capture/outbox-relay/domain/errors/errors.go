package errors

import "errors"

var (
	ErrInvalidOutboxRow         = errors.New("invalid outbox row")
	ErrOutboxRowNotFound        = errors.New("outbox row not found")
	ErrPublishTimeout           = errors.New("publish acknowledgement timed out")
	ErrSnapshotEncoding         = errors.New("snapshot encoding failed")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
