package v1

// Record is the canonical outbound stream message shared by every transport.
// Key selects the partition (ordering domain); Value is opaque to transports.
type Record struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Receipt is the broker acknowledgement for a published Record.
// Partition is -1 for transports without partitions.
type Receipt struct {
	Partition int32
	Offset    int64
}

// Delivery is one consumed Record plus its stream position.
// Attempt starts at 1 and grows each time the same position is redelivered.
type Delivery struct {
	Record
	Partition int32
	Offset    int64
	Attempt   int
}
