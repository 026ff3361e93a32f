package snapshotmaterializer

import (
	"log/slog"

	httpadapter "snapstream/contexts/read-model/snapshot-materializer/adapters/http"
	"snapstream/contexts/read-model/snapshot-materializer/adapters/memory"
	"snapstream/contexts/read-model/snapshot-materializer/application/queries"
	"snapstream/contexts/read-model/snapshot-materializer/application/workers"
	"snapstream/contexts/read-model/snapshot-materializer/ports"
)

// Module is the composition surface for the consumer side.
// Store is set only by NewInMemoryModule.
type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.SnapshotConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Snapshots   ports.SnapshotRepository
	DeadLetters ports.DeadLetterRepository
	Subscriber  ports.EventSubscriber
	Clock       ports.Clock
	Metrics     ports.Metrics
	Topic       string
	Group       string
	MaxAttempts int
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			GetSnapshot: queries.GetSnapshotUseCase{
				Snapshots: deps.Snapshots,
				Logger:    deps.Logger,
			},
			Logger: deps.Logger,
		},
		Consumer: workers.SnapshotConsumer{
			Snapshots:   deps.Snapshots,
			DeadLetters: deps.DeadLetters,
			Subscriber:  deps.Subscriber,
			Clock:       deps.Clock,
			Metrics:     deps.Metrics,
			Topic:       deps.Topic,
			Group:       deps.Group,
			MaxAttempts: deps.MaxAttempts,
			Logger:      deps.Logger,
		},
	}
}

// NewInMemoryModule wires the consumer against the in-memory read model.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore(deps.Logger)
	deps.Snapshots = store
	deps.DeadLetters = store
	module := NewModule(deps)
	module.Store = store
	return module
}
