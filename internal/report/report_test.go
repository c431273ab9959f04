// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(t *testing.T, s *domain.ResultStore, cp int, variant string, timings map[string]float64, queries ...string) {
	t.Helper()
	require.NoError(t, s.Record(domain.RunBenchmarkResult{
		Variant:     variant,
		RecordCount: cp,
		Status:      domain.RunSucceeded,
		Queries:     queries,
		Timings:     timings,
	}))
}

func TestToLongFormatRoundTrip(t *testing.T) {
	s := domain.NewResultStore()
	record(t, s, 100, "v1", map[string]float64{"q1": 1.25}, "q1")
	record(t, s, 1000, "v1", map[string]float64{"q1": 9.5}, "q1")

	rows := ToLongFormat(s)
	assert.Equal(t, []Row{
		{RecordCount: 100, Variant: "v1", Query: "q1", ElapsedMS: 1.25},
		{RecordCount: 1000, Variant: "v1", Query: "q1", ElapsedMS: 9.5},
	}, rows)
}

func TestToLongFormatSkipsMissing(t *testing.T) {
	s := domain.NewResultStore()
	record(t, s, 100, "v1", map[string]float64{"q_a": 1, "q_b": 2}, "q_a", "q_b")
	record(t, s, 1000, "v1", map[string]float64{"q_a": 3}, "q_a", "q_b")
	require.NoError(t, s.Record(domain.RunBenchmarkResult{
		Variant: "v2", RecordCount: 1000, Status: domain.RunProvisionFailed, Queries: []string{"q_a"},
	}))

	rows := ToLongFormat(s)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.NotEqual(t, "v2", r.Variant)
		assert.False(t, r.RecordCount == 1000 && r.Query == "q_b")
	}
	assert.Equal(t, "q_a", rows[0].Query)
	assert.Equal(t, "q_b", rows[1].Query)
}

func TestToLongFormatEmpty(t *testing.T) {
	assert.Empty(t, ToLongFormat(nil))
	assert.Empty(t, ToLongFormat(domain.NewResultStore()))
}

func TestGroupSeries(t *testing.T) {
	rows := []Row{
		{RecordCount: 100, Variant: "a", Query: "q1", ElapsedMS: 1},
		{RecordCount: 100, Variant: "b", Query: "q1", ElapsedMS: 2},
		{RecordCount: 1000, Variant: "a", Query: "q1", ElapsedMS: 3},
	}
	series := GroupSeries(rows)
	require.Len(t, series, 2)
	assert.Equal(t, "a - q1", series[0].Label())
	assert.Len(t, series[0].Points, 2)
	assert.Equal(t, "b - q1", series[1].Label())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Row{{RecordCount: 100, Variant: "v1", Query: "query_x", ElapsedMS: 0.125}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"record_count", "variant", "query", "elapsed_ms"},
		{"100", "v1", "query_x", "0.125"},
	}, records)
}

func TestWriteJSON(t *testing.T) {
	s := domain.NewResultStore()
	require.NoError(t, s.Record(domain.RunBenchmarkResult{
		Variant:        "v1",
		RecordCount:    100,
		Status:         domain.RunPartial,
		Queries:        []string{"q_a", "q_b"},
		Timings:        map[string]float64{"q_a": 2},
		InsertedEvents: 100,
		InsertDuration: 1500 * time.Microsecond,
	}))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s, Metadata{Checkpoints: []int{100}, Variants: []string{"v1"}}))

	var doc struct {
		SchemaVersion int `json:"schema_version"`
		Results       []struct {
			Status   string   `json:"status"`
			InsertMS float64  `json:"insert_ms"`
			Missing  []string `json:"missing_queries"`
		} `json:"results"`
		Rows []Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, "PARTIAL", doc.Results[0].Status)
	assert.InDelta(t, 1.5, doc.Results[0].InsertMS, 1e-9)
	assert.Equal(t, []string{"q_b"}, doc.Results[0].Missing)
	assert.Len(t, doc.Rows, 1)
}

func TestWritePNG(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{"empty", nil},
		{"single point", []Row{{RecordCount: 100, Variant: "v1", Query: "q", ElapsedMS: 4}}},
		{"non-positive only", []Row{{RecordCount: 100, Variant: "v1", Query: "q", ElapsedMS: 0}}},
		{"several series", []Row{
			{RecordCount: 1000, Variant: "v1", Query: "q", ElapsedMS: 40},
			{RecordCount: 100, Variant: "v1", Query: "q", ElapsedMS: 4},
			{RecordCount: 100, Variant: "v2", Query: "q", ElapsedMS: 0.5},
			{RecordCount: 1000, Variant: "v2", Query: "q", ElapsedMS: 0.9},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, tt.rows))
			_, err := png.Decode(&buf)
			require.NoError(t, err)
		})
	}
}

func TestReporterWritesEnabledFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	r, err := NewReporter(dir, []string{FormatCSV, FormatJSON}, quietLogger())
	require.NoError(t, err)

	s := domain.NewResultStore()
	record(t, s, 100, "v1", map[string]float64{"q": 1}, "q")

	paths, err := r.Write(s, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "db_query_performance.csv"),
		filepath.Join(dir, "db_query_performance.json"),
	}, paths)
	_, err = os.Stat(filepath.Join(dir, "db_query_performance_plot.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestReporterEmptyStoreProducesArtifacts(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReporter(dir, allFormats, quietLogger())
	require.NoError(t, err)

	paths, err := r.Write(domain.NewResultStore(), Metadata{})
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	raw, err := os.ReadFile(filepath.Join(dir, "db_query_performance.csv"))
	require.NoError(t, err)
	assert.Equal(t, "record_count,variant,query,elapsed_ms\n", string(raw))
}

func TestReporterUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r, err := NewReporter(filepath.Join(blocker, "out"), []string{FormatCSV}, quietLogger())
	require.NoError(t, err)

	_, err = r.Write(domain.NewResultStore(), Metadata{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReporting))
}

func TestNewReporterRejectsUnknownFormat(t *testing.T) {
	_, err := NewReporter(t.TempDir(), []string{"svg"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
