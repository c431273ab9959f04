package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

type RunStatus string

const (
	RunSucceeded       RunStatus = "SUCCEEDED"
	RunPartial         RunStatus = "PARTIAL"
	RunProvisionFailed RunStatus = "PROVISION_FAILED"
	RunGenerateFailed  RunStatus = "GENERATE_FAILED"
	RunInsertFailed    RunStatus = "INSERT_FAILED"
	RunMeasureFailed   RunStatus = "MEASURE_FAILED"
)

// AllRunStatuses lists every status a RunBenchmarkResult may carry.
var AllRunStatuses = []RunStatus{
	RunSucceeded,
	RunPartial,
	RunProvisionFailed,
	RunGenerateFailed,
	RunInsertFailed,
	RunMeasureFailed,
}

// RunBenchmarkResult is one variant's outcome at one checkpoint. Queries
// lists the variant's declared query names; a declared name without an entry
// in Timings was not measured.
type RunBenchmarkResult struct {
	Variant        string             `json:"variant"`
	RecordCount    int                `json:"record_count"`
	Status         RunStatus          `json:"status"`
	Queries        []string           `json:"queries"`
	Timings        map[string]float64 `json:"timings_ms"`
	InsertedEvents int                `json:"inserted_events"`
	InsertDuration time.Duration      `json:"insert_duration_ns"`
	Error          string             `json:"error,omitempty"`
}

// Missing returns the declared queries that have no measurement.
func (r RunBenchmarkResult) Missing() []string {
	out := make([]string, 0)
	for _, q := range r.Queries {
		if _, ok := r.Timings[q]; !ok {
			out = append(out, q)
		}
	}
	return out
}

// OrderedQueries returns the measured query names: declared order first,
// then any undeclared names sorted.
func (r RunBenchmarkResult) OrderedQueries() []string {
	out := make([]string, 0, len(r.Timings))
	seen := make(map[string]struct{}, len(r.Queries))
	for _, q := range r.Queries {
		seen[q] = struct{}{}
		if _, ok := r.Timings[q]; ok {
			out = append(out, q)
		}
	}

	extra := make([]string, 0)
	for q := range r.Timings {
		if _, ok := seen[q]; !ok {
			extra = append(extra, q)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func (r RunBenchmarkResult) clone() RunBenchmarkResult {
	r.Queries = slices.Clone(r.Queries)
	r.Timings = maps.Clone(r.Timings)
	if r.Timings == nil {
		r.Timings = map[string]float64{}
	}
	return r
}

// ResultStore holds results keyed by checkpoint then variant. Checkpoint and
// variant insertion order is preserved. Stored results are copies and cannot
// be changed through the values handed back by the accessors.
type ResultStore struct {
	checkpoints []int
	results     map[int][]RunBenchmarkResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[int][]RunBenchmarkResult)}
}

// AddCheckpoint registers a checkpoint on the x-axis even if no variant
// reports a result for it.
func (s *ResultStore) AddCheckpoint(recordCount int) {
	if _, ok := s.results[recordCount]; ok {
		return
	}
	s.checkpoints = append(s.checkpoints, recordCount)
	s.results[recordCount] = nil
}

// Record stores a result. Recording the same (checkpoint, variant) twice is
// an error.
func (s *ResultStore) Record(r RunBenchmarkResult) error {
	if r.Variant == "" {
		return fmt.Errorf("record result: empty variant name")
	}
	for name, ms := range r.Timings {
		if ms < 0 {
			return fmt.Errorf("record result: negative elapsed time for %s/%s: %f", r.Variant, name, ms)
		}
	}

	s.AddCheckpoint(r.RecordCount)
	for _, existing := range s.results[r.RecordCount] {
		if existing.Variant == r.Variant {
			return fmt.Errorf("record result: duplicate result for variant %s at %d records", r.Variant, r.RecordCount)
		}
	}

	s.results[r.RecordCount] = append(s.results[r.RecordCount], r.clone())
	return nil
}

func (s *ResultStore) Checkpoints() []int {
	return slices.Clone(s.checkpoints)
}

// Results returns the results at a checkpoint in recording order.
func (s *ResultStore) Results(recordCount int) []RunBenchmarkResult {
	stored := s.results[recordCount]
	out := make([]RunBenchmarkResult, 0, len(stored))
	for _, r := range stored {
		out = append(out, r.clone())
	}
	return out
}

func (s *ResultStore) Get(recordCount int, variant string) (RunBenchmarkResult, bool) {
	for _, r := range s.results[recordCount] {
		if r.Variant == variant {
			return r.clone(), true
		}
	}
	return RunBenchmarkResult{}, false
}

// Len is the number of stored results across all checkpoints.
func (s *ResultStore) Len() int {
	n := 0
	for _, rs := range s.results {
		n += len(rs)
	}
	return n
}
