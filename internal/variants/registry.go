// SPDX-License-Identifier: Apache-2.0

// Package variants lists the schema variants the benchmark can run and the
// migration set each one is provisioned from.
package variants

import (
	"slices"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/variant"
	"github.com/adiadia/eventbench/internal/variants/flattags"
	"github.com/adiadia/eventbench/internal/variants/jsonlog"
	"github.com/adiadia/eventbench/internal/variants/normalized"
)

// Spec describes a variant. Relations lists the tables, views and indexes
// that must exist once MigrationSet is applied.
type Spec struct {
	Name         string
	MigrationSet string
	Relations    []string
	New          func(db variant.DB, opts variant.Options) variant.Client
}

var specs = []Spec{
	{
		Name:         jsonlog.Name,
		MigrationSet: "v1",
		Relations:    []string{"batch_jobs_logs"},
		New:          func(db variant.DB, opts variant.Options) variant.Client { return jsonlog.New(db, opts) },
	},
	{
		Name:         flattags.Name,
		MigrationSet: "v2",
		Relations:    []string{"pipelines", "pipeline_runs", "run_metrics", "pipeline_run_status"},
		New:          func(db variant.DB, opts variant.Options) variant.Client { return flattags.New(db, opts) },
	},
	{
		Name:         jsonlog.IndexedName,
		MigrationSet: "v3",
		Relations:    []string{"batch_jobs_logs", "idx_core_metrics", "idx_pipeline_types", "idx_batch_jobs_logs_tags"},
		New:          func(db variant.DB, opts variant.Options) variant.Client { return jsonlog.NewIndexed(db, opts) },
	},
	{
		Name:         normalized.Name,
		MigrationSet: "v4",
		Relations:    []string{"events", "process_events", "process_input_files", "system_metrics", "disk_metrics", "system_properties", "aws_metadata", "nextflow_events", "syslog_events"},
		New:          func(db variant.DB, opts variant.Options) variant.Client { return normalized.New(db, opts) },
	},
}

// All returns every known variant in benchmark order.
func All() []Spec {
	return slices.Clone(specs)
}

func Names() []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Name)
	}
	return out
}

func Lookup(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Select resolves names in the given order. Unknown names are a
// configuration error.
func Select(names []string) ([]Spec, error) {
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		s, ok := Lookup(name)
		if !ok {
			return nil, domain.Configurationf("unknown variant %q (known: %v)", name, Names())
		}
		out = append(out, s)
	}
	return out, nil
}
