// SPDX-License-Identifier: Apache-2.0

// Package generator produces synthetic pipeline telemetry events.
package generator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Generator builds events grouped into runs. Every call draws fresh values;
// a non-zero seed makes the value sequence reproducible. A Generator is not
// safe for concurrent use.
type Generator struct {
	faker   *gofakeit.Faker
	domains Domains
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Generator)

// WithClock pins the reference time run start times are drawn back from.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.OrDefault(logger)
	}
}

// New validates the domains and returns a generator. Seed 0 picks a random
// seed.
func New(d Domains, seed uint64, opts ...Option) (*Generator, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		faker:   gofakeit.New(seed),
		domains: d,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns exactly count events. Events sharing a run_id share the
// run's pipeline, name and tags, and their timestamps never decrease.
func (g *Generator) Generate(count int) ([]domain.Event, error) {
	if count < 0 {
		return nil, domain.Configurationf("generate: negative event count %d", count)
	}

	started := time.Now()
	events := make([]domain.Event, 0, count)
	now := g.now().UTC()
	runs := 0

	for len(events) < count {
		size := g.faker.IntRange(g.domains.EventsPerRun.Min, g.domains.EventsPerRun.Max)
		if remaining := count - len(events); size > remaining {
			size = remaining
		}
		events = g.appendRun(events, size, now)
		runs++
	}

	g.logger.Debug("events generated",
		"events", len(events),
		"runs", runs,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return events, nil
}

type run struct {
	id       uuid.UUID
	name     string
	pipeline string
	tags     domain.PipelineTags
}

func (g *Generator) appendRun(events []domain.Event, size int, now time.Time) []domain.Event {
	r := run{
		id:       uuid.MustParse(g.faker.UUID()),
		name:     strings.ToLower(g.faker.Adjective() + "_" + g.faker.Animal()),
		pipeline: pick(g, g.domains.PipelineNames),
		tags:     g.tags(),
	}

	window := int(g.domains.RunStartWindow / time.Second)
	ts := now.Add(-time.Duration(g.faker.IntRange(0, window)) * time.Second)

	for i := 0; i < size; i++ {
		if i > 0 {
			ts = ts.Add(time.Duration(g.faker.IntRange(g.domains.EventSpacingSec.Min, g.domains.EventSpacingSec.Max)) * time.Second)
			if ts.After(now) {
				ts = now
			}
		}
		events = append(events, g.event(r, ts))
	}
	return events
}

func (g *Generator) event(r run, ts time.Time) domain.Event {
	kind := pick(g, g.domains.AttributeKinds)
	return domain.Event{
		Timestamp:     ts,
		Message:       g.faker.HackerPhrase(),
		EventType:     EventTypeFor(kind),
		ProcessType:   pick(g, g.domains.ProcessTypes),
		ProcessStatus: pick(g, g.domains.Statuses),
		PipelineName:  r.pipeline,
		RunName:       r.name,
		RunID:         r.id,
		Tags:          r.tags,
		Attributes:    g.attributes(kind),
	}
}

func (g *Generator) tags() domain.PipelineTags {
	return domain.PipelineTags{
		Environment:  pick(g, g.domains.Environments),
		PipelineType: pick(g, g.domains.PipelineTypes),
		UserOperator: g.faker.FirstName(),
		Department:   pick(g, g.domains.Departments),
		Team:         pick(g, g.domains.Teams),
		Others:       []string{pick(g, g.domains.OtherTags), pick(g, g.domains.OtherTags)},
	}
}

func (g *Generator) attributes(kind domain.AttributeKind) domain.Attributes {
	switch kind {
	case domain.KindProcess:
		return g.process()
	case domain.KindSystemMetric:
		return g.systemMetric()
	case domain.KindSyslog:
		return g.syslog()
	case domain.KindSystemProperties:
		return g.systemProperties()
	case domain.KindWorkflowLog:
		return g.workflowLog()
	default:
		panic(fmt.Sprintf("generator: unhandled attribute kind %q", kind))
	}
}

func (g *Generator) process() domain.ProcessProperties {
	files := make([]domain.InputFile, 0, 2)
	for i := 0; i < 2; i++ {
		dir := g.path()
		name := g.faker.Word() + "." + g.faker.FileExtension()
		files = append(files, domain.InputFile{
			FileName:      name,
			FileSize:      g.intIn(g.domains.FileSize),
			FilePath:      dir + "/" + name,
			FileDirectory: dir,
			UpdatedAt:     g.isoTimestamp(),
		})
	}

	return domain.ProcessProperties{
		ToolName:                     g.faker.AppName(),
		ToolPID:                      g.faker.DigitN(5),
		ToolParentPID:                g.faker.DigitN(5),
		ToolBinaryPath:               "/usr/bin/" + strings.ToLower(g.faker.Word()),
		ToolCmd:                      g.faker.HackerPhrase(),
		StartTimestamp:               g.isoTimestamp(),
		ProcessCPUUtilization:        g.floatIn(g.domains.CPUUtilization),
		ProcessMemoryUsage:           g.intIn(g.domains.ProcessMemory),
		ProcessMemoryVirtual:         g.intIn(g.domains.ProcessVirtual),
		ProcessRunTime:               g.intIn(g.domains.ProcessRunTime),
		ProcessDiskReadLastInterval:  g.intIn(g.domains.IntervalDiskIO),
		ProcessDiskWriteLastInterval: g.intIn(g.domains.IntervalDiskIO),
		ProcessDiskReadTotal:         g.intIn(g.domains.TotalDiskIO),
		ProcessDiskWriteTotal:        g.intIn(g.domains.TotalDiskIO),
		ProcessStatus:                pick(g, g.domains.Statuses),
		InputFiles:                   files,
		ContainerID:                  g.faker.UUID(),
		JobID:                        g.faker.UUID(),
		WorkingDirectory:             g.path(),
	}
}

func (g *Generator) systemMetric() domain.SystemMetric {
	return domain.SystemMetric{
		EventsName:              g.faker.Word(),
		SystemMemoryTotal:       g.intIn(g.domains.SystemMemory),
		SystemMemoryUsed:        g.intIn(g.domains.SystemUsed),
		SystemMemoryAvailable:   g.intIn(g.domains.SystemUsed),
		SystemMemoryUtilization: g.floatIn(g.domains.CPUUtilization),
		SystemMemorySwapTotal:   g.intIn(g.domains.SwapTotal),
		SystemMemorySwapUsed:    g.intIn(g.domains.SwapUsed),
		SystemCPUUtilization:    g.floatIn(g.domains.CPUUtilization),
		SystemDiskIO:            g.disks(3),
	}
}

func (g *Generator) syslog() domain.SyslogProperties {
	previous := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		previous = append(previous, g.faker.HackerPhrase())
	}
	return domain.SyslogProperties{
		SystemMetrics:    g.systemMetric(),
		ErrorDisplayName: g.faker.Word(),
		ErrorID:          g.faker.UUID(),
		ErrorLine:        g.faker.HackerPhrase(),
		FileLineNumber:   g.intIn(g.domains.LineNumber),
		FilePreviousLogs: previous,
	}
}

func (g *Generator) systemProperties() domain.SystemProperties {
	return domain.SystemProperties{
		OS:            "Linux",
		OSVersion:     fmt.Sprintf("%d.%d.%d", g.faker.IntRange(4, 6), g.faker.IntRange(0, 19), g.faker.IntRange(0, 99)),
		KernelVersion: fmt.Sprintf("%d.%d.%d-generic", g.faker.IntRange(4, 6), g.faker.IntRange(0, 19), g.faker.IntRange(0, 99)),
		Arch:          pick(g, g.domains.Architectures),
		NumCPUs:       g.intIn(g.domains.NumCPUs),
		Hostname:      "ip-" + g.faker.DigitN(3) + "-" + g.faker.DigitN(3) + "." + g.faker.DomainName(),
		TotalMemory:   g.intIn(g.domains.HostMemory),
		TotalSwap:     g.intIn(g.domains.HostSwap),
		Uptime:        g.intIn(g.domains.Uptime),
		AWSMetadata: &domain.AWSInstanceMetadata{
			InstanceID:       g.faker.UUID(),
			InstanceType:     pick(g, g.domains.InstanceTypes),
			AvailabilityZone: pick(g, g.domains.AvailabilityZones),
			Region:           pick(g, g.domains.Regions),
		},
		IsAWSInstance:  g.faker.Bool(),
		SystemDiskIO:   g.disks(2),
		EC2CostPerHour: pick(g, g.domains.EC2CostPerHour),
	}
}

func (g *Generator) workflowLog() domain.WorkflowLog {
	return domain.WorkflowLog{
		SessionUUID: g.faker.UUID(),
		JobIDs:      []string{g.faker.UUID(), g.faker.UUID(), g.faker.UUID()},
	}
}

// disks returns statistics for /dev/sda, /dev/sdb, ...
func (g *Generator) disks(n int) map[string]domain.DiskStatistic {
	out := make(map[string]domain.DiskStatistic, n)
	for i := 0; i < n; i++ {
		out[fmt.Sprintf("/dev/sd%c", 'a'+i)] = domain.DiskStatistic{
			TotalSpace:     g.intIn(g.domains.DiskTotalSpace),
			UsedSpace:      g.intIn(g.domains.DiskUsedSpace),
			AvailableSpace: g.intIn(g.domains.DiskAvailable),
			Utilization:    g.floatIn(g.domains.DiskUtilization),
		}
	}
	return out
}

func (g *Generator) path() string {
	return "/" + strings.ToLower(g.faker.Word()) + "/" + strings.ToLower(g.faker.Word())
}

func (g *Generator) isoTimestamp() string {
	window := int(g.domains.RunStartWindow / time.Second)
	return g.now().UTC().Add(-time.Duration(g.faker.IntRange(0, window)) * time.Second).Format(time.RFC3339)
}

func (g *Generator) intIn(r IntRange) int64 {
	return int64(g.faker.IntRange(r.Min, r.Max))
}

// floatIn rounds to two decimals like the metric agents report.
func (g *Generator) floatIn(r FloatRange) float64 {
	v := g.faker.Float64Range(r.Min, r.Max)
	v = float64(int64(v*100+0.5)) / 100
	if v > r.Max {
		v = r.Max
	}
	if v < r.Min {
		v = r.Min
	}
	return v
}

func pick[T any](g *Generator, values []T) T {
	return values[g.faker.IntRange(0, len(values)-1)]
}
