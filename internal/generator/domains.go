// SPDX-License-Identifier: Apache-2.0

package generator

import (
	"time"

	"github.com/adiadia/eventbench/internal/domain"
)

type IntRange struct {
	Min int
	Max int
}

func (r IntRange) contains(v int64) bool {
	return v >= int64(r.Min) && v <= int64(r.Max)
}

type FloatRange struct {
	Min float64
	Max float64
}

func (r FloatRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Domains declares every value set the generator draws from. An empty set or
// an inverted range is a configuration error.
type Domains struct {
	AttributeKinds    []domain.AttributeKind
	ProcessTypes      []string
	Statuses          []string
	PipelineNames     []string
	Environments      []string
	PipelineTypes     []string
	Departments       []string
	Teams             []string
	OtherTags         []string
	InstanceTypes     []string
	AvailabilityZones []string
	Regions           []string
	Architectures     []string
	EC2CostPerHour    []float64

	EventsPerRun    IntRange
	RunStartWindow  time.Duration
	EventSpacingSec IntRange

	CPUUtilization  FloatRange
	ProcessMemory   IntRange
	ProcessVirtual  IntRange
	ProcessRunTime  IntRange
	IntervalDiskIO  IntRange
	TotalDiskIO     IntRange
	FileSize        IntRange
	SystemMemory    IntRange
	SystemUsed      IntRange
	SwapTotal       IntRange
	SwapUsed        IntRange
	DiskTotalSpace  IntRange
	DiskUsedSpace   IntRange
	DiskAvailable   IntRange
	DiskUtilization FloatRange
	NumCPUs         IntRange
	HostMemory      IntRange
	HostSwap        IntRange
	Uptime          IntRange
	LineNumber      IntRange
}

// EventTypeFor maps a payload kind to the event_type it is reported under.
func EventTypeFor(kind domain.AttributeKind) string {
	switch kind {
	case domain.KindProcess:
		return "process"
	case domain.KindSystemMetric, domain.KindSystemProperties:
		return "system"
	default:
		return "log"
	}
}

func DefaultDomains() Domains {
	return Domains{
		AttributeKinds:    append([]domain.AttributeKind(nil), domain.AllAttributeKinds...),
		ProcessTypes:      []string{"ingest", "transform", "export"},
		Statuses:          []string{"running", "failed", "completed"},
		PipelineNames:     []string{"rnaseq", "atacseq", "chipseq", "sarek", "methylseq", "nanoseq"},
		Environments:      []string{"dev", "staging", "prod"},
		PipelineTypes:     []string{"ETL", "DataSync", "Analytics"},
		Departments:       []string{"Research"},
		Teams:             []string{"Oncology"},
		OtherTags:         []string{"AI", "ML", "NLP", "Imaging", "Genomics"},
		InstanceTypes:     []string{"t2.micro", "m5.large", "c5.2xlarge"},
		AvailabilityZones: []string{"us-east-1a", "us-west-2b"},
		Regions:           []string{"us-east-1", "us-west-2"},
		Architectures:     []string{"x86_64", "arm64"},
		EC2CostPerHour:    []float64{0.24, 1.13},

		EventsPerRun:    IntRange{Min: 1, Max: 20},
		RunStartWindow:  180 * 24 * time.Hour,
		EventSpacingSec: IntRange{Min: 0, Max: 900},

		CPUUtilization:  FloatRange{Min: 0, Max: 100},
		ProcessMemory:   IntRange{Min: 1024, Max: 1048576},
		ProcessVirtual:  IntRange{Min: 2048, Max: 2097152},
		ProcessRunTime:  IntRange{Min: 1, Max: 10000},
		IntervalDiskIO:  IntRange{Min: 0, Max: 10000},
		TotalDiskIO:     IntRange{Min: 0, Max: 100000},
		FileSize:        IntRange{Min: 1024, Max: 10_000_000},
		SystemMemory:    IntRange{Min: 4096, Max: 65536},
		SystemUsed:      IntRange{Min: 1024, Max: 65536},
		SwapTotal:       IntRange{Min: 1024, Max: 8192},
		SwapUsed:        IntRange{Min: 0, Max: 8192},
		DiskTotalSpace:  IntRange{Min: 100_000, Max: 1_000_000},
		DiskUsedSpace:   IntRange{Min: 50_000, Max: 900_000},
		DiskAvailable:   IntRange{Min: 10_000, Max: 500_000},
		DiskUtilization: FloatRange{Min: 0, Max: 1},
		NumCPUs:         IntRange{Min: 1, Max: 64},
		HostMemory:      IntRange{Min: 4096, Max: 131072},
		HostSwap:        IntRange{Min: 0, Max: 32768},
		Uptime:          IntRange{Min: 100, Max: 1_000_000},
		LineNumber:      IntRange{Min: 1, Max: 1000},
	}
}

func (d Domains) Validate() error {
	sets := []struct {
		name string
		size int
	}{
		{"attribute_kinds", len(d.AttributeKinds)},
		{"process_types", len(d.ProcessTypes)},
		{"statuses", len(d.Statuses)},
		{"pipeline_names", len(d.PipelineNames)},
		{"environments", len(d.Environments)},
		{"pipeline_types", len(d.PipelineTypes)},
		{"departments", len(d.Departments)},
		{"teams", len(d.Teams)},
		{"other_tags", len(d.OtherTags)},
		{"instance_types", len(d.InstanceTypes)},
		{"availability_zones", len(d.AvailabilityZones)},
		{"regions", len(d.Regions)},
		{"architectures", len(d.Architectures)},
		{"ec2_cost_per_hour", len(d.EC2CostPerHour)},
	}
	for _, s := range sets {
		if s.size == 0 {
			return domain.Configurationf("generator domain %s is empty", s.name)
		}
	}

	for _, kind := range d.AttributeKinds {
		if !knownKind(kind) {
			return domain.Configurationf("generator domain attribute_kinds: unknown kind %q", kind)
		}
	}

	ints := map[string]IntRange{
		"events_per_run":    d.EventsPerRun,
		"event_spacing_sec": d.EventSpacingSec,
		"process_memory":    d.ProcessMemory,
		"process_virtual":   d.ProcessVirtual,
		"process_run_time":  d.ProcessRunTime,
		"interval_disk_io":  d.IntervalDiskIO,
		"total_disk_io":     d.TotalDiskIO,
		"file_size":         d.FileSize,
		"system_memory":     d.SystemMemory,
		"system_used":       d.SystemUsed,
		"swap_total":        d.SwapTotal,
		"swap_used":         d.SwapUsed,
		"disk_total_space":  d.DiskTotalSpace,
		"disk_used_space":   d.DiskUsedSpace,
		"disk_available":    d.DiskAvailable,
		"num_cpus":          d.NumCPUs,
		"host_memory":       d.HostMemory,
		"host_swap":         d.HostSwap,
		"uptime":            d.Uptime,
		"line_number":       d.LineNumber,
	}
	for name, r := range ints {
		if r.Min > r.Max {
			return domain.Configurationf("generator domain %s: min %d > max %d", name, r.Min, r.Max)
		}
	}
	if d.EventsPerRun.Min < 1 {
		return domain.Configurationf("generator domain events_per_run: min must be at least 1")
	}
	if d.EventSpacingSec.Min < 0 {
		return domain.Configurationf("generator domain event_spacing_sec: min must not be negative")
	}

	floats := map[string]FloatRange{
		"cpu_utilization":  d.CPUUtilization,
		"disk_utilization": d.DiskUtilization,
	}
	for name, r := range floats {
		if r.Min > r.Max {
			return domain.Configurationf("generator domain %s: min %g > max %g", name, r.Min, r.Max)
		}
	}

	if d.RunStartWindow <= 0 {
		return domain.Configurationf("generator domain run_start_window must be positive, got %s", d.RunStartWindow)
	}
	return nil
}

func knownKind(kind domain.AttributeKind) bool {
	for _, k := range domain.AllAttributeKinds {
		if k == kind {
			return true
		}
	}
	return false
}
