// Package mocks provides mock implementations of the outbox relay ports.
package mocks

//go:generate mockgen -destination=mock_ports.go -package=mocks snapstream/contexts/change-capture/outbox-relay/ports Clock,EventPublisher,IDGenerator,Metrics,OutboxRepository
