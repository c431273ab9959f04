// SPDX-License-Identifier: Apache-2.0

package flattags

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(status string, attrs domain.Attributes) domain.Event {
	return domain.Event{
		Timestamp:     time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		ProcessStatus: status,
		PipelineName:  "nf-core/atacseq",
		RunName:       "sleepy_hopper",
		RunID:         uuid.MustParse("9a0c1f4e-2b7d-4f0e-8a61-5e2f7c3d4b10"),
		Tags:          domain.PipelineTags{Environment: "dev", UserOperator: "ana"},
		Attributes:    attrs,
	}
}

func TestAnalysisType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"nf-core/atacseq", "ATAC-seq"},
		{"ATAC_pipeline", "ATAC-seq"},
		{"chipseq", "ChIP-seq"},
		{"ChIP-exo", "ChIP-seq"},
		{"rnaseq", "RNA-seq"},
		{"sarek", "RNA-seq"},
		{"", "RNA-seq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalysisType(tt.name))
		})
	}
}

func TestPipelineName(t *testing.T) {
	assert.Equal(t, "nf-core/atacseq", PipelineName(event("running", nil)))

	ev := event("running", nil)
	ev.PipelineName = "   "
	assert.Equal(t, unnamedPipeline, PipelineName(ev))
}

func TestRawAttributes(t *testing.T) {
	raw, err := RawAttributes(event("failed", domain.WorkflowLog{SessionUUID: "s-9"}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "failed", got["status"])
	log, ok := got["nextflow_log"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s-9", log["session_uuid"])

	raw, err = RawAttributes(event("running", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"running"}`, string(raw))
}

func TestRunArgs(t *testing.T) {
	ev := event("running", domain.SystemMetric{})
	args, err := RunArgs(7, ev)
	require.NoError(t, err)
	require.Len(t, args, 12)

	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, ev.RunID, args[1])
	assert.Equal(t, ev.Timestamp, args[3])
	assert.Equal(t, "dev", *args[4].(*string))
	assert.Nil(t, args[5].(*string), "empty tags are stored as NULL")
	assert.Equal(t, "ana", *args[6].(*string))
	assert.Equal(t, true, args[9])

	args, err = RunArgs(7, event("completed", nil))
	require.NoError(t, err)
	assert.Equal(t, false, args[9])
}

func TestMetricFor(t *testing.T) {
	t.Run("system metric", func(t *testing.T) {
		m, ok := MetricFor(event("running", domain.SystemMetric{SystemCPUUtilization: 40, SystemMemoryUsed: 2 * bytesPerGiB}))
		require.True(t, ok)
		assert.Equal(t, 40.0, *m.CPUUsage)
		assert.InDelta(t, 2.0, *m.MemUsedGB, 1e-9)
		assert.Nil(t, m.CostPerHour)
	})

	t.Run("process", func(t *testing.T) {
		m, ok := MetricFor(event("running", domain.ProcessProperties{ProcessCPUUtilization: 12.5, ProcessMemoryUsage: bytesPerGiB / 2}))
		require.True(t, ok)
		assert.Equal(t, 12.5, *m.CPUUsage)
		assert.InDelta(t, 0.5, *m.MemUsedGB, 1e-9)
	})

	t.Run("system properties", func(t *testing.T) {
		m, ok := MetricFor(event("running", domain.SystemProperties{EC2CostPerHour: 1.25}))
		require.True(t, ok)
		assert.Equal(t, 1.25, *m.CostPerHour)
		assert.Nil(t, m.CPUUsage)
	})

	for _, attrs := range []domain.Attributes{nil, domain.WorkflowLog{}, domain.SyslogProperties{}} {
		_, ok := MetricFor(event("running", attrs))
		assert.False(t, ok)
	}
}
