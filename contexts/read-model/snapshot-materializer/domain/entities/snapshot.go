package entities

import "time"

// SnapshotRecord is the latest known state of one entity.
//
// Version starts at 1 and grows on every applied event, including replays of
// an event already applied. Readers should treat it as a monotone heartbeat,
// not as a count of distinct changes.
type SnapshotRecord struct {
	EntityID        string
	Payload         []byte
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SourcePartition int32
	SourceOffset    int64
}

func NewSnapshotRecord(entityID string, payload []byte, now time.Time) SnapshotRecord {
	at := now.UTC()
	return SnapshotRecord{
		EntityID:  entityID,
		Payload:   append([]byte(nil), payload...),
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Apply returns the record with payload replaced and version bumped.
// UpdatedAt never moves backwards even if the clock does.
func (r SnapshotRecord) Apply(payload []byte, now time.Time) SnapshotRecord {
	next := r
	next.Payload = append([]byte(nil), payload...)
	next.Version = r.Version + 1
	if at := now.UTC(); at.After(r.UpdatedAt) {
		next.UpdatedAt = at
	}
	return next
}

// WithSource records the stream position the record was last built from.
func (r SnapshotRecord) WithSource(partition int32, offset int64) SnapshotRecord {
	r.SourcePartition = partition
	r.SourceOffset = offset
	return r
}

// DeadLetter is an event the materializer gave up on. It keeps the raw
// delivery so it can be inspected or replayed by hand.
type DeadLetter struct {
	Topic         string
	Key           string
	Partition     int32
	Offset        int64
	Payload       []byte
	Attempt       int
	Reason        string
	QuarantinedAt time.Time
}
