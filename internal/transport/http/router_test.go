// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/metrics"
	"github.com/adiadia/eventbench/internal/orchestrator"
	"github.com/adiadia/eventbench/internal/report"
)

func TestRouter_HealthzOK(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get(headerRequestID); got == "" {
		t.Fatalf("expected %s response header to be set", headerRequestID)
	}
}

func TestRouter_HealthzPreservesRequestID(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-from-client")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-from-client" {
		t.Fatalf("expected %s req-from-client got %q", headerRequestID, got)
	}
}

func TestRouter_HealthzNotReadyWhenDatabaseUnreachable(t *testing.T) {
	calls := 0
	router := NewRouter(Deps{
		Logger: discardLogger(),
		HealthChecker: HealthCheckFunc(func(context.Context) error {
			calls++
			return errors.New("connection refused")
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected health checker call count 1 got %d", calls)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger()})
	metrics.IncCheckpoints()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "eventbench_checkpoints_total") {
		t.Fatalf("expected prometheus output to include eventbench_checkpoints_total, got %q", rec.Body.String())
	}
}

func TestRouter_Version(t *testing.T) {
	router := NewRouter(Deps{
		Logger:    discardLogger(),
		Version:   "1.2.3",
		Commit:    "abc123",
		BuildDate: "2026-02-23T00:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["version"] != "1.2.3" || resp["commit"] != "abc123" || resp["build_date"] != "2026-02-23T00:00:00Z" {
		t.Fatalf("unexpected version payload %v", resp)
	}
}

func TestRouter_VersionDefaults(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger(), Version: "  "})

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["version"] != "dev" || resp["commit"] != "none" || resp["build_date"] != "unknown" {
		t.Fatalf("unexpected defaults %v", resp)
	}
}

func TestRouter_Status(t *testing.T) {
	src := &stubProgress{progress: orchestrator.Progress{
		State:       orchestrator.StateInserting,
		RecordCount: 1100,
		Checkpoints: 2,
		Variant:     "default_json",
	}}
	router := NewRouter(Deps{Logger: discardLogger(), Progress: src})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var got orchestrator.Progress
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.State != orchestrator.StateInserting || got.RecordCount != 1100 || got.Variant != "default_json" {
		t.Fatalf("unexpected progress %+v", got)
	}
}

func TestRouter_ResultsUnavailableUntilDone(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger(), Progress: &stubProgress{}})

	for _, path := range []string{"/results", "/results.csv"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected status 503 got %d", path, rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Fatalf("%s: expected Retry-After header", path)
		}
	}
}

func TestRouter_Results(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger(), Progress: doneProgress(t)})

	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var resp struct {
		Checkpoints []int        `json:"checkpoints"`
		Rows        []report.Row `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Checkpoints) != 2 || resp.Checkpoints[1] != 1000 {
		t.Fatalf("unexpected checkpoints %v", resp.Checkpoints)
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("expected 3 rows got %d", len(resp.Rows))
	}
}

func TestRouter_ResultsCSV(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger(), Progress: doneProgress(t)})

	req := httptest.NewRequest(http.MethodGet, "/results.csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected content-type text/csv got %s", got)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows got %d records", len(records))
	}
	if records[3][0] != "1000" || records[3][2] != "q_a" {
		t.Fatalf("unexpected last row %v", records[3])
	}
}

func TestRouter_NoProgressRoutesWithoutSource(t *testing.T) {
	router := NewRouter(Deps{Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestWriteJSONSetsHeadersAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"ok": "true"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content-type application/json got %s", got)
	}

	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["ok"] != "true" {
		t.Fatalf("expected ok=true got %s", payload["ok"])
	}
}

type stubProgress struct {
	progress orchestrator.Progress
	store    *domain.ResultStore
}

func (s *stubProgress) Progress() orchestrator.Progress {
	return s.progress
}

func (s *stubProgress) Results() (*domain.ResultStore, bool) {
	return s.store, s.store != nil
}

func doneProgress(t *testing.T) *stubProgress {
	t.Helper()
	store := domain.NewResultStore()
	results := []domain.RunBenchmarkResult{
		{Variant: "v1", RecordCount: 100, Queries: []string{"q_a", "q_b"}, Timings: map[string]float64{"q_a": 1, "q_b": 2}},
		{Variant: "v1", RecordCount: 1000, Queries: []string{"q_a", "q_b"}, Timings: map[string]float64{"q_a": 8}},
	}
	for _, r := range results {
		if err := store.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return &stubProgress{
		progress: orchestrator.Progress{State: orchestrator.StateDone},
		store:    store,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
