// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adiadia/eventbench/internal/metrics"
	"github.com/adiadia/eventbench/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Progress      ProgressSource
	HealthChecker HealthChecker
	Logger        *slog.Logger
	Version       string
	Commit        string
	BuildDate     string
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()
	version := valueOrDefault(deps.Version, "dev")
	commit := valueOrDefault(deps.Commit, "none")
	buildDate := valueOrDefault(deps.BuildDate, "unknown")

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(accessLogMiddleware(logger))

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.Check(r.Context()); err != nil {
				logger.Warn("health check failed", "error", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ---------------- METRICS ----------------

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// ---------------- VERSION ----------------

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"commit":     commit,
			"build_date": buildDate,
		})
	})

	if deps.Progress == nil {
		return r
	}

	// ---------------- SWEEP STATUS ----------------

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Progress.Progress())
	})

	// ---------------- RESULTS ----------------

	r.Get("/results", func(w http.ResponseWriter, r *http.Request) {
		store, done := deps.Progress.Results()
		if !done {
			w.Header().Set("Retry-After", "5")
			http.Error(w, "benchmark still running", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Checkpoints []int        `json:"checkpoints"`
			Rows        []report.Row `json:"rows"`
		}{
			Checkpoints: store.Checkpoints(),
			Rows:        report.ToLongFormat(store),
		})
	})

	r.Get("/results.csv", func(w http.ResponseWriter, r *http.Request) {
		store, done := deps.Progress.Results()
		if !done {
			w.Header().Set("Retry-After", "5")
			http.Error(w, "benchmark still running", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := report.WriteCSV(w, report.ToLongFormat(store)); err != nil {
			logger.Error("write results csv failed", "error", err)
		}
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func valueOrDefault(value, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}
