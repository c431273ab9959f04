// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHelpersRecord(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(checkpointsCounter)
	IncCheckpoints()
	if got := testutil.ToFloat64(checkpointsCounter); got != before+1 {
		t.Fatalf("checkpoints = %v, want %v", got, before+1)
	}

	IncVariantRun("default_json", "SUCCEEDED")
	if got := testutil.ToFloat64(variantRunsCounter.WithLabelValues("default_json", "SUCCEEDED")); got < 1 {
		t.Fatalf("variant runs = %v, want >= 1", got)
	}

	SetQueryExecution("default_json", "query_q", 12.5)
	SetQueryExecution("default_json", "query_q", 3.25)
	if got := testutil.ToFloat64(queryExecutionGauge.WithLabelValues("default_json", "query_q")); got != 3.25 {
		t.Fatalf("query gauge = %v, want last value 3.25", got)
	}

	IncMeasurementFailure("default_json", "query_q")
	if got := testutil.ToFloat64(measurementFailuresCounter.WithLabelValues("default_json", "query_q")); got != 1 {
		t.Fatalf("measurement failures = %v, want 1", got)
	}

	before = testutil.ToFloat64(generatedEventsCounter)
	AddGeneratedEvents(0)
	AddGeneratedEvents(-3)
	AddGeneratedEvents(40)
	if got := testutil.ToFloat64(generatedEventsCounter); got != before+40 {
		t.Fatalf("generated events = %v, want %v", got, before+40)
	}

	ObserveInsertDuration("default_json", 250*time.Millisecond)
	if n := testutil.CollectAndCount(insertDurationMetric); n != 1 {
		t.Fatalf("insert duration series = %d, want 1", n)
	}

	IncHTTPRequest("/status", 200)
	IncHTTPRequest("/status", 200)
	if got := testutil.ToFloat64(httpRequestsCounter.WithLabelValues("/status", "200")); got != 2 {
		t.Fatalf("http requests = %v, want 2", got)
	}
}

func TestRegisterVariantExportsEveryStatus(t *testing.T) {
	Init()

	before := testutil.CollectAndCount(variantRunsCounter)
	RegisterVariant("schema_registered_only")
	RegisterVariant("schema_registered_only")
	if got, want := testutil.CollectAndCount(variantRunsCounter), before+len(domain.AllRunStatuses); got != want {
		t.Fatalf("variant run series = %d, want %d", got, want)
	}

	for _, status := range domain.AllRunStatuses {
		if got := testutil.ToFloat64(variantRunsCounter.WithLabelValues("schema_registered_only", string(status))); got != 0 {
			t.Fatalf("%s = %v, want 0", status, got)
		}
	}
}
