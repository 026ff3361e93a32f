package outboxrelay

import (
	"log/slog"
	"time"

	httpadapter "snapstream/contexts/change-capture/outbox-relay/adapters/http"
	"snapstream/contexts/change-capture/outbox-relay/adapters/memory"
	postgresadapter "snapstream/contexts/change-capture/outbox-relay/adapters/postgres"
	"snapstream/contexts/change-capture/outbox-relay/application/queries"
	"snapstream/contexts/change-capture/outbox-relay/application/workers"
	"snapstream/contexts/change-capture/outbox-relay/ports"
)

// Mode decides which worker owns rows that carry an entity id.
type Mode string

const (
	// ModeSplit relays rows without an entity individually and leaves entity
	// rows to the aggregator.
	ModeSplit Mode = "split"
	// ModeRelayAll relays every row individually; the aggregator is disabled.
	ModeRelayAll Mode = "relay_all"
)

// Module is the composition surface for the producer side.
// Aggregator is nil in ModeRelayAll. Store is set only by NewInMemoryModule.
type Module struct {
	Handler    httpadapter.Handler
	Relay      *workers.RelayPoller
	Aggregator *workers.DebounceAggregator
	Outbox     ports.OutboxRepository
	Store      *memory.Store
}

type Dependencies struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Metrics   ports.Metrics
	Mode      Mode

	RelayBatchSize int
	PublishTimeout time.Duration

	SnapshotTopic  string
	DebounceWindow time.Duration
	MaxRows        int

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	mode := deps.Mode
	if mode == "" {
		mode = ModeSplit
	}

	relay := &workers.RelayPoller{
		Outbox:            deps.Outbox,
		Publisher:         deps.Publisher,
		Clock:             deps.Clock,
		Metrics:           deps.Metrics,
		BatchSize:         deps.RelayBatchSize,
		ExcludeEntityRows: mode == ModeSplit,
		PublishTimeout:    deps.PublishTimeout,
		Logger:            deps.Logger,
	}

	var aggregator *workers.DebounceAggregator
	if mode == ModeSplit {
		aggregator = &workers.DebounceAggregator{
			Outbox:         deps.Outbox,
			Publisher:      deps.Publisher,
			Clock:          deps.Clock,
			IDGen:          deps.IDGen,
			Metrics:        deps.Metrics,
			SnapshotTopic:  deps.SnapshotTopic,
			DebounceWindow: deps.DebounceWindow,
			MaxRows:        deps.MaxRows,
			PublishTimeout: deps.PublishTimeout,
			Logger:         deps.Logger,
		}
	}

	return Module{
		Handler: httpadapter.Handler{
			Stats: queries.OutboxStatsUseCase{
				Outbox: deps.Outbox,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
		Relay:      relay,
		Aggregator: aggregator,
		Outbox:     deps.Outbox,
	}
}

// NewInMemoryModule wires the workers against the in-memory outbox. It backs
// the local runtime when no database is configured and the pipeline tests.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore(deps.Logger)
	if deps.Clock != nil {
		store.WithClock(deps.Clock)
	}
	deps.Outbox = store
	if deps.IDGen == nil {
		deps.IDGen = postgresadapter.UUIDGenerator{}
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
