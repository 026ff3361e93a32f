package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	outboxrelay "snapstream/contexts/change-capture/outbox-relay"
	outboxentities "snapstream/contexts/change-capture/outbox-relay/domain/entities"
	outboxhttp "snapstream/contexts/change-capture/outbox-relay/transport/http"
	snapshotmaterializer "snapstream/contexts/read-model/snapshot-materializer"
	snapshotentities "snapstream/contexts/read-model/snapshot-materializer/domain/entities"
	snapshothttp "snapstream/contexts/read-model/snapshot-materializer/transport/http"
	"snapstream/internal/platform/metrics"
)

func newTestServer(t *testing.T) (*Server, outboxrelay.Module, snapshotmaterializer.Module) {
	t.Helper()
	outbox := outboxrelay.NewInMemoryModule(outboxrelay.Dependencies{})
	snapshots := snapshotmaterializer.NewInMemoryModule(snapshotmaterializer.Dependencies{})

	collector := metrics.NewCollector(nil, nil)
	registry, err := metrics.NewRegistry(collector)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(&outbox, &snapshots, metrics.Handler(registry), nil, ":0"), outbox, snapshots
}

func serve(server *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestOutboxStatsRoute(t *testing.T) {
	server, outbox, _ := newTestServer(t)
	_, err := outbox.Store.Enqueue(context.Background(),
		outboxentities.NewOutboxRow{Topic: "tasks", PartitionKey: "T1", EntityID: "T1", Payload: []byte(`{"attributeName":"status","value":"OPEN"}`)},
		outboxentities.NewOutboxRow{Topic: "audit", PartitionKey: "A", Payload: []byte(`{}`)},
	)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	rec := serve(server, http.MethodGet, "/v1/outbox/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp outboxhttp.OutboxStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Unpublished != 2 || resp.Total != 2 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestGetSnapshotRoute(t *testing.T) {
	server, _, snapshots := newTestServer(t)
	payload := []byte(`{"event_id":"e1","entity_id":"T1","attributes":[{"attributeName":"status","type":"STRING","value":"CLOSED"},{"attributeName":"points","type":"NUMERIC","value":3}]}`)
	record := snapshotentities.NewSnapshotRecord("T1", payload, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := snapshots.Store.Save(context.Background(), record, 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := serve(server, http.MethodGet, "/v1/snapshots/T1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp snapshothttp.SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.EntityID != "T1" || resp.Version != 1 || len(resp.Attributes) != 2 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	if resp.Attributes[0].Name != "status" || resp.Attributes[0].Values[0] != "CLOSED" {
		t.Fatalf("unexpected first attribute: %+v", resp.Attributes[0])
	}
	if resp.Attributes[1].Type != "NUMERIC" || resp.Attributes[1].Values[0] != float64(3) {
		t.Fatalf("unexpected numeric attribute: %+v", resp.Attributes[1])
	}
}

func TestGetSnapshotErrors(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := serve(server, http.MethodGet, "/v1/snapshots/missing")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "snapshot_not_found") {
		t.Fatalf("expected 404 snapshot_not_found, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(server, http.MethodGet, "/v1/snapshots/%20")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank id, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsAndHealthRoutes(t *testing.T) {
	server, _, _ := newTestServer(t)
	if rec := serve(server, http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if rec := serve(server, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
}

func TestRoutesOmittedForAbsentModules(t *testing.T) {
	server := New(nil, nil, nil, nil, "")
	if rec := serve(server, http.MethodGet, "/v1/outbox/stats"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without outbox module, got %d", rec.Code)
	}
	if rec := serve(server, http.MethodGet, "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", rec.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	server := New(nil, nil, nil, nil, "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
