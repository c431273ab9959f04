// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
)

const SchemaVersion = 1

type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version,omitempty"`
	Checkpoints []int     `json:"checkpoints"`
	Variants    []string  `json:"variants"`
}

type resultEntry struct {
	RecordCount    int                `json:"record_count"`
	Variant        string             `json:"variant"`
	Status         domain.RunStatus   `json:"status"`
	InsertedEvents int                `json:"inserted_events"`
	InsertMS       float64            `json:"insert_ms"`
	Timings        map[string]float64 `json:"timings_ms"`
	Missing        []string           `json:"missing_queries"`
	Error          string             `json:"error,omitempty"`
}

type document struct {
	SchemaVersion int           `json:"schema_version"`
	Metadata      Metadata      `json:"metadata"`
	Results       []resultEntry `json:"results"`
	Rows          []Row         `json:"rows"`
}

// WriteJSON writes the full report document: metadata, per-run outcomes and
// the long-format rows.
func WriteJSON(w io.Writer, store *domain.ResultStore, meta Metadata) error {
	doc := document{
		SchemaVersion: SchemaVersion,
		Metadata:      meta,
		Results:       make([]resultEntry, 0),
		Rows:          ToLongFormat(store),
	}
	if doc.Metadata.Checkpoints == nil {
		doc.Metadata.Checkpoints = []int{}
	}
	if doc.Metadata.Variants == nil {
		doc.Metadata.Variants = []string{}
	}

	if store != nil {
		for _, cp := range store.Checkpoints() {
			for _, r := range store.Results(cp) {
				doc.Results = append(doc.Results, resultEntry{
					RecordCount:    r.RecordCount,
					Variant:        r.Variant,
					Status:         r.Status,
					InsertedEvents: r.InsertedEvents,
					InsertMS:       float64(r.InsertDuration.Microseconds()) / 1000,
					Timings:        r.Timings,
					Missing:        r.Missing(),
					Error:          r.Error,
				})
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
