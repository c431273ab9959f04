// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives the checkpoint sweep: for every checkpoint and
// every registered variant it provisions, generates, inserts, measures and
// tears down, one step at a time.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/adiadia/eventbench/internal/config"
	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/adiadia/eventbench/internal/metrics"
)

type State string

const (
	StateIdle         State = "Idle"
	StateProvisioning State = "Provisioning"
	StateGenerating   State = "Generating"
	StateInserting    State = "Inserting"
	StateMeasuring    State = "Measuring"
	StateTearingDown  State = "TearingDown"
	StateDone         State = "Done"
)

// Registration pairs a variant client with the lifecycle of its schema.
type Registration struct {
	Client    VariantClient
	Lifecycle Lifecycle
}

// Progress is a point-in-time view of a sweep.
type Progress struct {
	State           State     `json:"state"`
	RecordCount     int       `json:"record_count"`
	CheckpointIndex int       `json:"checkpoint_index"`
	Checkpoints     int       `json:"checkpoints"`
	Variant         string    `json:"variant,omitempty"`
	Results         int       `json:"results"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
	Error           string    `json:"error,omitempty"`
}

type Deps struct {
	Generator EventGenerator
	Variants  []Registration
	// Checkpoints are record-count increments; the record count measured
	// at checkpoint i is the sum of the first i+1 increments.
	Checkpoints []int
	Logger      *slog.Logger
	// Observer is called synchronously on every state change.
	Observer func(Progress)
	Now      func() time.Time
}

type Orchestrator struct {
	generator   EventGenerator
	variants    []Registration
	checkpoints []int
	logger      *slog.Logger
	observer    func(Progress)
	now         func() time.Time

	mu       sync.Mutex
	progress Progress
	store    *domain.ResultStore
}

// New validates the configuration. Every failure is a configuration error.
func New(deps Deps) (*Orchestrator, error) {
	if err := config.ValidateCheckpoints(deps.Checkpoints); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(deps.Variants))
	for i, reg := range deps.Variants {
		if reg.Client == nil || reg.Lifecycle == nil {
			return nil, domain.Configurationf("variant %d: client and lifecycle are required", i)
		}
		name := reg.Client.Name()
		if name == "" {
			return nil, domain.Configurationf("variant %d: empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, domain.Configurationf("variant %q registered twice", name)
		}
		seen[name] = struct{}{}
	}
	if len(deps.Variants) > 0 && deps.Generator == nil {
		return nil, domain.Configurationf("event generator is required")
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		generator:   deps.Generator,
		variants:    slices.Clone(deps.Variants),
		checkpoints: slices.Clone(deps.Checkpoints),
		logger:      logging.OrDefault(deps.Logger),
		observer:    deps.Observer,
		now:         now,
		progress: Progress{
			State:       StateIdle,
			Checkpoints: len(deps.Checkpoints),
		},
	}, nil
}

// Progress returns a snapshot of the current sweep.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Results returns the result store once the sweep is Done.
func (o *Orchestrator) Results() (*domain.ResultStore, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress.State != StateDone {
		return nil, false
	}
	return o.store, true
}

// Run executes the sweep. Per-variant failures become missing data points;
// only configuration errors and context cancellation abort. An Orchestrator
// runs once.
func (o *Orchestrator) Run(ctx context.Context) (*domain.ResultStore, error) {
	o.mu.Lock()
	if o.progress.State != StateIdle || !o.progress.StartedAt.IsZero() {
		o.mu.Unlock()
		return nil, errors.New("orchestrator already ran")
	}
	o.progress.StartedAt = o.now()
	o.mu.Unlock()

	store := domain.NewResultStore()

	if len(o.variants) == 0 {
		o.logger.Info("no variants registered")
		o.finish(store, nil)
		return store, nil
	}

	o.logger.Info("benchmark started",
		"checkpoints", o.checkpoints,
		"variants", o.variantNames(),
	)
	for _, name := range o.variantNames() {
		metrics.RegisterVariant(name)
	}

	// leftovers of an aborted earlier run must not leak into the first checkpoint
	for _, reg := range o.variants {
		o.transition(StateTearingDown, 0, 0, reg.Client.Name())
		o.teardown(ctx, reg)
	}

	total := 0
	for i, increment := range o.checkpoints {
		total += increment
		store.AddCheckpoint(total)
		metrics.IncCheckpoints()

		o.logger.Info("checkpoint started", "index", i, "record_count", total)

		for _, reg := range o.variants {
			if err := ctx.Err(); err != nil {
				o.finish(store, err)
				return store, err
			}

			res, err := o.runVariant(ctx, i, total, reg)
			if recErr := store.Record(res); recErr != nil {
				o.logger.Error("record result failed", "variant", res.Variant, "record_count", total, "error", recErr)
			}
			o.mu.Lock()
			o.progress.Results = store.Len()
			o.mu.Unlock()

			metrics.IncVariantRun(res.Variant, string(res.Status))

			if err != nil {
				o.finish(store, err)
				return store, err
			}
		}
	}

	o.finish(store, nil)
	o.logger.Info("benchmark finished", "results", store.Len())
	return store, nil
}

// runVariant runs one variant at one checkpoint. The returned error is
// non-nil only when the whole sweep must abort.
func (o *Orchestrator) runVariant(ctx context.Context, index, recordCount int, reg Registration) (res domain.RunBenchmarkResult, abort error) {
	name := reg.Client.Name()
	logger := o.logger.With("variant", name, "record_count", recordCount)

	res = domain.RunBenchmarkResult{
		Variant:     name,
		RecordCount: recordCount,
		Queries:     reg.Client.QueryNames(),
		Timings:     map[string]float64{},
	}

	o.transition(StateProvisioning, index, recordCount, name)
	defer func() {
		o.transition(StateTearingDown, index, recordCount, name)
		if err := o.teardown(ctx, reg); err != nil {
			res.Error = joinMessages(res.Error, err.Error())
		}
	}()

	if err := reg.Lifecycle.Provision(ctx); err != nil {
		logger.Error("provision failed", "error", err)
		res.Status = domain.RunProvisionFailed
		res.Error = err.Error()
		return res, fatal(ctx, err)
	}

	o.transition(StateGenerating, index, recordCount, name)
	events, err := o.generator.Generate(recordCount)
	if err != nil {
		logger.Error("generate events failed", "error", err)
		res.Status = domain.RunGenerateFailed
		res.Error = err.Error()
		return res, fatal(ctx, err)
	}
	metrics.AddGeneratedEvents(len(events))

	o.transition(StateInserting, index, recordCount, name)
	started := o.now()
	err = reg.Client.BatchInsert(ctx, events)
	res.InsertDuration = o.now().Sub(started)
	if err != nil {
		logger.Error("batch insert failed", "events", len(events), "error", err)
		res.Status = domain.RunInsertFailed
		res.Error = err.Error()
		return res, fatal(ctx, err)
	}
	res.InsertedEvents = len(events)
	metrics.ObserveInsertDuration(name, res.InsertDuration)
	logger.Info("events inserted", "events", len(events), "duration_ms", res.InsertDuration.Milliseconds())

	o.transition(StateMeasuring, index, recordCount, name)
	timings, err := reg.Client.BenchmarkQueries(ctx)
	if err != nil {
		logger.Warn("query measurement incomplete", "error", err)
		res.Error = err.Error()
	}
	res.Timings = o.acceptTimings(logger, res.Queries, timings)

	for q, ms := range res.Timings {
		metrics.SetQueryExecution(name, q, ms)
	}
	missing := res.Missing()
	for _, q := range missing {
		metrics.IncMeasurementFailure(name, q)
	}

	switch {
	case len(res.Queries) > 0 && len(res.Timings) == 0:
		res.Status = domain.RunMeasureFailed
	case len(missing) > 0:
		res.Status = domain.RunPartial
	default:
		res.Status = domain.RunSucceeded
	}

	logger.Info("queries measured", "status", res.Status, "measured", len(res.Timings), "missing", missing)
	return res, fatal(ctx, err)
}

// acceptTimings keeps declared, non-negative measurements only.
func (o *Orchestrator) acceptTimings(logger *slog.Logger, declared []string, timings map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(timings))
	for q, ms := range timings {
		if !slices.Contains(declared, q) {
			logger.Warn("dropping undeclared query timing", "query", q)
			continue
		}
		if ms < 0 {
			logger.Warn("dropping negative query timing", "query", q, "elapsed_ms", ms)
			continue
		}
		out[q] = ms
	}
	return out
}

// teardown always runs to completion, even after cancellation.
func (o *Orchestrator) teardown(ctx context.Context, reg Registration) error {
	if err := reg.Lifecycle.Teardown(context.WithoutCancel(ctx)); err != nil {
		o.logger.Error("teardown failed", "variant", reg.Client.Name(), "error", err)
		return err
	}
	return nil
}

func (o *Orchestrator) transition(state State, index, recordCount int, variant string) {
	o.mu.Lock()
	o.progress.State = state
	o.progress.CheckpointIndex = index
	o.progress.RecordCount = recordCount
	o.progress.Variant = variant
	snapshot := o.progress
	o.mu.Unlock()

	o.logger.Debug("state changed", "state", state, "variant", variant, "record_count", recordCount)
	if o.observer != nil {
		o.observer(snapshot)
	}
}

func (o *Orchestrator) finish(store *domain.ResultStore, err error) {
	o.mu.Lock()
	o.store = store
	o.progress.State = StateDone
	o.progress.Variant = ""
	o.progress.Results = store.Len()
	o.progress.FinishedAt = o.now()
	if err != nil {
		o.progress.Error = err.Error()
	}
	snapshot := o.progress
	o.mu.Unlock()

	if o.observer != nil {
		o.observer(snapshot)
	}
}

func (o *Orchestrator) variantNames() []string {
	names := make([]string, 0, len(o.variants))
	for _, reg := range o.variants {
		names = append(names, reg.Client.Name())
	}
	return names
}

// fatal reports whether err must stop the sweep.
func fatal(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConfiguration) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("benchmark canceled: %w", ctxErr)
	}
	return nil
}

func joinMessages(a, b string) string {
	if a == "" {
		return b
	}
	return strings.Join([]string{a, b}, "; ")
}
