// SPDX-License-Identifier: Apache-2.0

// Package normalized splits every event into an events row plus one row per
// payload in a table dedicated to that payload kind.
package normalized

import (
	"context"
	"fmt"
	"sort"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/variant"
	"github.com/jackc/pgx/v5"
)

const Name = "schema_fully_independent_tables"

const insertEventSQL = `
INSERT INTO events (
    timestamp, message, event_type, process_type, process_status,
    pipeline_name, run_name, run_id, environment, pipeline_type, user_operator,
    department, team, others
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING event_id`

// Child tables in foreign-key-safe copy order, with their columns.
var childTables = []struct {
	name    string
	columns []string
}{
	{"process_events", []string{
		"event_id", "tool_name", "tool_pid", "parent_pid", "binary_path", "cmd",
		"start_time", "cpu_utilization", "memory_usage", "memory_virtual", "run_time",
		"disk_read_last", "disk_write_last", "disk_read_total", "disk_write_total",
		"status", "container_id", "job_id", "working_dir",
	}},
	{"process_input_files", []string{"event_id", "file_name", "file_size", "file_path", "directory", "updated_at"}},
	{"system_metrics", []string{
		"event_id", "metric_name", "memory_total", "memory_used", "memory_available",
		"memory_utilization", "swap_total", "swap_used", "cpu_utilization",
	}},
	{"disk_metrics", []string{"event_id", "device", "total_space", "used_space", "available_space", "utilization"}},
	{"system_properties", []string{
		"event_id", "os", "os_version", "kernel_version", "arch", "num_cpus",
		"hostname", "total_memory", "total_swap", "uptime", "is_aws_instance",
	}},
	{"aws_metadata", []string{"event_id", "instance_id", "instance_type", "availability_zone", "region", "cost_per_hour"}},
	{"nextflow_events", []string{"event_id", "session_uuid", "job_ids"}},
	{"syslog_events", []string{
		"event_id", "error_display_name", "error_id", "error_line", "file_line_number",
		"previous_logs", "cpu_utilization", "memory_used",
	}},
}

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
	ids, err := insertEvents(ctx, tx, chunk)
	if err != nil {
		return err
	}

	rows := ChildRows{}
	for i := range chunk {
		rows.Add(ids[i], chunk[i])
	}

	for _, table := range childTables {
		tableRows := rows[table.name]
		if len(tableRows) == 0 {
			continue
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{table.name}, table.columns, pgx.CopyFromRows(tableRows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", table.name, err)
		}
		if int(n) != len(tableRows) {
			return fmt.Errorf("copy %s: wrote %d of %d rows", table.name, n, len(tableRows))
		}
	}
	return nil
}

func insertEvents(ctx context.Context, tx pgx.Tx, chunk []domain.Event) ([]int64, error) {
	batch := &pgx.Batch{}
	for i := range chunk {
		batch.Queue(insertEventSQL, EventArgs(chunk[i])...)
	}

	br := tx.SendBatch(ctx, batch)
	ids := make([]int64, 0, len(chunk))
	for i := range chunk {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert event %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert events: %w", err)
	}
	return ids, nil
}

// EventArgs returns the insertEventSQL arguments for one event.
func EventArgs(ev domain.Event) []any {
	others := ev.Tags.Others
	if others == nil {
		others = []string{}
	}
	return []any{
		ev.Timestamp,
		ev.Message,
		ev.EventType,
		ev.ProcessType,
		ev.ProcessStatus,
		ev.PipelineName,
		ev.RunName,
		ev.RunID,
		ev.Tags.Environment,
		ev.Tags.PipelineType,
		ev.Tags.UserOperator,
		ev.Tags.Department,
		ev.Tags.Team,
		others,
	}
}

// ChildRows collects COPY rows per child table name.
type ChildRows map[string][][]any

// Add appends the child rows of one event.
func (r ChildRows) Add(eventID int64, ev domain.Event) {
	switch a := ev.Attributes.(type) {
	case domain.ProcessProperties:
		r.add("process_events", eventID,
			a.ToolName, a.ToolPID, a.ToolParentPID, a.ToolBinaryPath, a.ToolCmd,
			a.StartTimestamp, a.ProcessCPUUtilization, a.ProcessMemoryUsage, a.ProcessMemoryVirtual, a.ProcessRunTime,
			a.ProcessDiskReadLastInterval, a.ProcessDiskWriteLastInterval, a.ProcessDiskReadTotal, a.ProcessDiskWriteTotal,
			a.ProcessStatus, a.ContainerID, a.JobID, a.WorkingDirectory,
		)
		for _, f := range a.InputFiles {
			r.add("process_input_files", eventID, f.FileName, f.FileSize, f.FilePath, f.FileDirectory, f.UpdatedAt)
		}

	case domain.SystemMetric:
		r.addSystemMetric(eventID, a)

	case domain.SystemProperties:
		r.add("system_properties", eventID,
			a.OS, a.OSVersion, a.KernelVersion, a.Arch, a.NumCPUs,
			a.Hostname, a.TotalMemory, a.TotalSwap, a.Uptime, a.IsAWSInstance,
		)
		r.addDisks(eventID, a.SystemDiskIO)
		if a.AWSMetadata != nil {
			m := a.AWSMetadata
			r.add("aws_metadata", eventID, m.InstanceID, m.InstanceType, m.AvailabilityZone, m.Region, a.EC2CostPerHour)
		}

	case domain.WorkflowLog:
		jobIDs := a.JobIDs
		if jobIDs == nil {
			jobIDs = []string{}
		}
		r.add("nextflow_events", eventID, a.SessionUUID, jobIDs)

	case domain.SyslogProperties:
		previous := a.FilePreviousLogs
		if previous == nil {
			previous = []string{}
		}
		r.add("syslog_events", eventID,
			a.ErrorDisplayName, a.ErrorID, a.ErrorLine, a.FileLineNumber,
			previous, a.SystemMetrics.SystemCPUUtilization, a.SystemMetrics.SystemMemoryUsed,
		)
	}
}

func (r ChildRows) addSystemMetric(eventID int64, m domain.SystemMetric) {
	r.add("system_metrics", eventID,
		m.EventsName, m.SystemMemoryTotal, m.SystemMemoryUsed, m.SystemMemoryAvailable,
		m.SystemMemoryUtilization, m.SystemMemorySwapTotal, m.SystemMemorySwapUsed, m.SystemCPUUtilization,
	)
	r.addDisks(eventID, m.SystemDiskIO)
}

func (r ChildRows) addDisks(eventID int64, disks map[string]domain.DiskStatistic) {
	devices := make([]string, 0, len(disks))
	for device := range disks {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	for _, device := range devices {
		d := disks[device]
		r.add("disk_metrics", eventID, device, d.TotalSpace, d.UsedSpace, d.AvailableSpace, d.Utilization)
	}
}

func (r ChildRows) add(table string, eventID int64, values ...any) {
	r[table] = append(r[table], append([]any{eventID}, values...))
}
