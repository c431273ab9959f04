// SPDX-License-Identifier: Apache-2.0

// Package jsonlog stores each event as one batch_jobs_logs row: the full
// event document as JSONB next to a few hot columns.
package jsonlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/variant"
	"github.com/jackc/pgx/v5"
)

const (
	Name        = "default_json"
	IndexedName = "default_json_with_other_indexes"

	defaultJobID = "default"
)

var columns = []string{
	"data", "job_id", "run_name", "run_id", "pipeline_name", "nextflow_session_uuid", "job_ids",
	"tags", "event_timestamp", "ec2_cost_per_hour", "cpu_usage", "mem_used", "processed_dataset",
}

type Client struct {
	variant.Base
}

// New returns the plain JSON layout client.
func New(db variant.DB, opts variant.Options) *Client {
	return &Client{Base: variant.NewBase(Name, db, Queries, opts)}
}

// NewIndexed returns the client for the same table with extra covering,
// text-pattern and GIN indexes. Only the migration set differs.
func NewIndexed(db variant.DB, opts variant.Options) *Client {
	return &Client{Base: variant.NewBase(IndexedName, db, Queries, opts)}
}

func (c *Client) BatchInsert(ctx context.Context, events []domain.Event) error {
	return c.InsertChunks(ctx, events, copyChunk)
}

func copyChunk(ctx context.Context, tx pgx.Tx, chunk []domain.Event) error {
	rows := make([][]any, 0, len(chunk))
	for i := range chunk {
		row, err := Row(chunk[i])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"batch_jobs_logs"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy batch_jobs_logs: %w", err)
	}
	if int(n) != len(chunk) {
		return fmt.Errorf("copy batch_jobs_logs: wrote %d of %d rows", n, len(chunk))
	}
	return nil
}

// Row maps an event to the batch_jobs_logs column order.
func Row(ev domain.Event) ([]any, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	var (
		sessionUUID *string
		jobIDs      = []string{}
		costPerHour float64
		cpuUsage    *float64
		memUsed     *int64
	)

	switch a := ev.Attributes.(type) {
	case domain.WorkflowLog:
		sessionUUID = &a.SessionUUID
		jobIDs = append(jobIDs, a.JobIDs...)
	case domain.SystemProperties:
		costPerHour = a.EC2CostPerHour
	case domain.SystemMetric:
		cpuUsage = &a.SystemCPUUtilization
		memUsed = &a.SystemMemoryUsed
	}

	return []any{
		data,
		defaultJobID,
		ev.RunName,
		ev.RunID,
		ev.PipelineName,
		sessionUUID,
		jobIDs,
		tags,
		ev.Timestamp,
		costPerHour,
		cpuUsage,
		memUsed,
		int64(0),
	}, nil
}
