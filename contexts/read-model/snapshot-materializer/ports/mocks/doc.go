// Package mocks provides mock implementations of the snapshot materializer ports.
package mocks

//go:generate mockgen -destination=mock_ports.go -package=mocks snapstream/contexts/read-model/snapshot-materializer/ports Clock,DeadLetterRepository,EventSubscriber,Metrics,SnapshotRepository
