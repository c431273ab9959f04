// SPDX-License-Identifier: Apache-2.0

// Package flattags keeps one row per pipeline run with its tags flattened
// into columns, plus a narrow run_metrics table for the hot numbers.
package flattags

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/variant"
	"github.com/jackc/pgx/v5"
)

const (
	Name = "schema_flat_tags_and_hot_entries"

	unnamedPipeline = "unnamed_pipeline"
	bytesPerGiB     = 1073741824
)

const upsertPipelineSQL = `
INSERT INTO pipelines (name, analysis_type) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

// Start and end widen with every event of the run; the latest event decides
// whether the run is still active.
const upsertRunSQL = `
INSERT INTO pipeline_runs (
    pipeline_id, run_id, run_name,
    start_time, end_time,
    environment, pipeline_type, user_operator,
    department, team, is_active, raw_attributes, data
) VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (pipeline_id, run_id) DO UPDATE SET
    start_time = LEAST(pipeline_runs.start_time, EXCLUDED.start_time),
    end_time = GREATEST(pipeline_runs.end_time, EXCLUDED.end_time),
    environment = COALESCE(EXCLUDED.environment, pipeline_runs.environment),
    pipeline_type = COALESCE(EXCLUDED.pipeline_type, pipeline_runs.pipeline_type),
    user_operator = COALESCE(EXCLUDED.user_operator, pipeline_runs.user_operator),
    department = COALESCE(EXCLUDED.department, pipeline_runs.department),
    team = COALESCE(EXCLUDED.team, pipeline_runs.team),
    is_active = CASE
        WHEN EXCLUDED.end_time >= pipeline_runs.end_time THEN EXCLUDED.is_active
        ELSE pipeline_runs.is_active
    END,
    raw_attributes = EXCLUDED.raw_attributes,
    data = EXCLUDED.data`

const insertMetricSQL = `
INSERT INTO run_metrics (
    run_id, timestamp, ec2_cost_per_hour,
    cpu_usage, mem_used_gb
) VALUES (
    (SELECT id FROM pipeline_runs WHERE run_id = $1 AND pipeline_id = $2),
    $3, $4, $5, $6
)`

type Client struct {
	variant.Base
}

func New(db variant.DB, opts variant.Options) *Client {
	return &Client{Base: variant.NewBase(Name, db, Queries, opts)}
}

func (c *Client) BatchInsert(ctx context.Context, events []domain.Event) error {
	return c.InsertChunks(ctx, events, writeChunk)
}

func writeChunk(ctx context.Context, tx pgx.Tx, chunk []domain.Event) error {
	pipelines, err := ensurePipelines(ctx, tx, chunk)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range chunk {
		ev := chunk[i]
		pipelineID := pipelines[PipelineName(ev)]

		args, err := RunArgs(pipelineID, ev)
		if err != nil {
			return err
		}
		batch.Queue(upsertRunSQL, args...)
	}
	for i := range chunk {
		ev := chunk[i]
		if m, ok := MetricFor(ev); ok {
			batch.Queue(insertMetricSQL, ev.RunID, pipelines[PipelineName(ev)], ev.Timestamp, m.CostPerHour, m.CPUUsage, m.MemUsedGB)
		}
	}

	return execBatch(ctx, tx, batch)
}

func ensurePipelines(ctx context.Context, tx pgx.Tx, chunk []domain.Event) (map[string]int64, error) {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range chunk {
		name := PipelineName(chunk[i])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(upsertPipelineSQL, name, AnalysisType(name))
	}

	br := tx.SendBatch(ctx, batch)
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("upsert pipeline %s: %w", name, err)
		}
		ids[name] = id
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("upsert pipelines: %w", err)
	}
	return ids, nil
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return br.Close()
}

func PipelineName(ev domain.Event) string {
	if strings.TrimSpace(ev.PipelineName) == "" {
		return unnamedPipeline
	}
	return ev.PipelineName
}

// AnalysisType classifies a pipeline by its name.
func AnalysisType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "atac"):
		return "ATAC-seq"
	case strings.Contains(lower, "chip"):
		return "ChIP-seq"
	default:
		return "RNA-seq"
	}
}

// RawAttributes is the payload keyed by kind plus the event status, which
// the status query matches with @>.
func RawAttributes(ev domain.Event) ([]byte, error) {
	raw := map[string]any{"status": ev.ProcessStatus}
	if ev.Attributes != nil {
		raw[string(ev.Attributes.Kind())] = ev.Attributes
	}
	return json.Marshal(raw)
}

// RunArgs returns the upsertRunSQL arguments for one event.
func RunArgs(pipelineID int64, ev domain.Event) ([]any, error) {
	raw, err := RawAttributes(ev)
	if err != nil {
		return nil, fmt.Errorf("encode raw attributes: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	return []any{
		pipelineID,
		ev.RunID,
		ev.RunName,
		ev.Timestamp,
		nullable(ev.Tags.Environment),
		nullable(ev.Tags.PipelineType),
		nullable(ev.Tags.UserOperator),
		nullable(ev.Tags.Department),
		nullable(ev.Tags.Team),
		ev.ProcessStatus == "running",
		raw,
		data,
	}, nil
}

type Metric struct {
	CostPerHour *float64
	CPUUsage    *float64
	MemUsedGB   *float64
}

// MetricFor extracts the run_metrics row an event contributes, if any.
func MetricFor(ev domain.Event) (Metric, bool) {
	switch a := ev.Attributes.(type) {
	case domain.SystemMetric:
		cpu := a.SystemCPUUtilization
		mem := float64(a.SystemMemoryUsed) / bytesPerGiB
		return Metric{CPUUsage: &cpu, MemUsedGB: &mem}, true
	case domain.ProcessProperties:
		cpu := a.ProcessCPUUtilization
		mem := float64(a.ProcessMemoryUsage) / bytesPerGiB
		return Metric{CPUUsage: &cpu, MemUsedGB: &mem}, true
	case domain.SystemProperties:
		cost := a.EC2CostPerHour
		return Metric{CostPerHour: &cost}, true
	default:
		return Metric{}, false
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
