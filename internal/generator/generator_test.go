// SPDX-License-Identifier: Apache-2.0

package generator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	g, err := New(DefaultDomains(), seed, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return g
}

func TestGenerateExactCount(t *testing.T) {
	g := newTestGenerator(t, 7)

	for _, n := range []int{0, 1, 19, 20, 21, 250} {
		events, err := g.Generate(n)
		require.NoError(t, err)
		assert.Len(t, events, n)
	}
}

func TestGenerateRejectsNegativeCount(t *testing.T) {
	g := newTestGenerator(t, 7)

	_, err := g.Generate(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestGenerateSameSeedSameValues(t *testing.T) {
	a, err := newTestGenerator(t, 42).Generate(50)
	require.NoError(t, err)
	b, err := newTestGenerator(t, 42).Generate(50)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestGenerateFreshValuesPerCall(t *testing.T) {
	g := newTestGenerator(t, 42)

	first, err := g.Generate(10)
	require.NoError(t, err)
	second, err := g.Generate(10)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].RunID, second[0].RunID)
}

func TestGenerateGroupsEventsIntoRuns(t *testing.T) {
	g := newTestGenerator(t, 3)

	events, err := g.Generate(500)
	require.NoError(t, err)

	type runInfo struct {
		pipeline string
		name     string
		tags     domain.PipelineTags
		last     time.Time
		count    int
	}
	runs := map[uuid.UUID]*runInfo{}
	for _, ev := range events {
		info, ok := runs[ev.RunID]
		if !ok {
			runs[ev.RunID] = &runInfo{pipeline: ev.PipelineName, name: ev.RunName, tags: ev.Tags, last: ev.Timestamp, count: 1}
			continue
		}
		assert.Equal(t, info.pipeline, ev.PipelineName)
		assert.Equal(t, info.name, ev.RunName)
		assert.Equal(t, info.tags, ev.Tags)
		assert.False(t, ev.Timestamp.Before(info.last), "timestamps within a run must not decrease")
		info.last = ev.Timestamp
		info.count++
	}

	assert.Greater(t, len(runs), 1)
	for id, info := range runs {
		assert.LessOrEqual(t, info.count, DefaultDomains().EventsPerRun.Max, "run %s", id)
	}
}

func TestNewRejectsEmptyDomain(t *testing.T) {
	tests := map[string]func(d *Domains){
		"no statuses":      func(d *Domains) { d.Statuses = nil },
		"no pipelines":     func(d *Domains) { d.PipelineNames = []string{} },
		"no kinds":         func(d *Domains) { d.AttributeKinds = nil },
		"unknown kind":     func(d *Domains) { d.AttributeKinds = []domain.AttributeKind{"gpu"} },
		"no ec2 costs":     func(d *Domains) { d.EC2CostPerHour = nil },
		"inverted range":   func(d *Domains) { d.ProcessMemory = IntRange{Min: 10, Max: 1} },
		"inverted cpu":     func(d *Domains) { d.CPUUtilization = FloatRange{Min: 100, Max: 0} },
		"zero run size":    func(d *Domains) { d.EventsPerRun = IntRange{Min: 0, Max: 0} },
		"zero start range": func(d *Domains) { d.RunStartWindow = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := DefaultDomains()
			mutate(&d)

			g, err := New(d, 1)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
		})
	}
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, "process", EventTypeFor(domain.KindProcess))
	assert.Equal(t, "system", EventTypeFor(domain.KindSystemMetric))
	assert.Equal(t, "system", EventTypeFor(domain.KindSystemProperties))
	assert.Equal(t, "log", EventTypeFor(domain.KindSyslog))
	assert.Equal(t, "log", EventTypeFor(domain.KindWorkflowLog))
}

func TestSingleKindDomain(t *testing.T) {
	d := DefaultDomains()
	d.AttributeKinds = []domain.AttributeKind{domain.KindWorkflowLog}

	g, err := New(d, 9)
	require.NoError(t, err)

	events, err := g.Generate(30)
	require.NoError(t, err)
	for _, ev := range events {
		wf, ok := ev.Attributes.(domain.WorkflowLog)
		require.True(t, ok, "expected workflow log payload, got %T", ev.Attributes)
		assert.Len(t, wf.JobIDs, 3)
		assert.Equal(t, "log", ev.EventType)
	}
}
