package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	outboxrelay "snapstream/contexts/change-capture/outbox-relay"
	outboxhttp "snapstream/contexts/change-capture/outbox-relay/transport/http"
	snapshotmaterializer "snapstream/contexts/read-model/snapshot-materializer"
	snapshoterrors "snapstream/contexts/read-model/snapshot-materializer/domain/errors"
	snapshothttp "snapstream/contexts/read-model/snapshot-materializer/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "snapstream/internal/platform/httpserver/docs"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the read side of whichever modules the process runs. A nil
// module or metrics handler leaves its routes unregistered.
type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	outbox    *outboxrelay.Module
	snapshots *snapshotmaterializer.Module
	metrics   http.Handler
}

func New(
	outbox *outboxrelay.Module,
	snapshots *snapshotmaterializer.Module,
	metrics http.Handler,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		outbox:    outbox,
		snapshots: snapshots,
		metrics:   metrics,
	}
	s.registerRoutes()
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	s.logger.Info("http server stopped",
		"event", "http_server_stopped",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return err
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	if s.outbox != nil {
		s.mux.HandleFunc("GET /v1/outbox/stats", s.handleOutboxStats)
	}
	if s.snapshots != nil {
		s.mux.HandleFunc("GET /v1/snapshots/{entity_id}", s.handleGetSnapshot)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOutboxStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.outbox.Handler.OutboxStatsHandler(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, outboxhttp.ErrorResponse{
			Code:    "internal_error",
			Message: "internal server error",
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	entityID := r.PathValue("entity_id")
	resp, err := s.snapshots.Handler.GetSnapshotHandler(r.Context(), entityID)
	if err != nil {
		writeSnapshotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSnapshotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapshoterrors.ErrSnapshotNotFound):
		writeSnapshotError(w, http.StatusNotFound, "snapshot_not_found", err.Error())
	case errors.Is(err, snapshoterrors.ErrMissingEntityKey):
		writeSnapshotError(w, http.StatusBadRequest, "missing_entity_id", err.Error())
	default:
		writeSnapshotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSnapshotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, snapshothttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
