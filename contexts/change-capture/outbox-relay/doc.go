// Package outboxrelay contains the producer side of the snapstream pipeline:
// the outbox store, the relay poller and the debounce aggregator.
//
// Only this module reads or writes outbox rows. The stream is its sole
// output; it never touches the materialized read model.
package outboxrelay
