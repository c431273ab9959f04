// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	checkpointsCounter         prometheus.Counter
	variantRunsCounter         *prometheus.CounterVec
	insertDurationMetric       *prometheus.HistogramVec
	queryExecutionGauge        *prometheus.GaugeVec
	measurementFailuresCounter *prometheus.CounterVec
	generatedEventsCounter     prometheus.Counter
	httpRequestsCounter        *prometheus.CounterVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		checkpointsCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "eventbench_checkpoints_total",
				Help: "Total number of checkpoints processed.",
			},
		)

		variantRunsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbench_variant_runs_total",
				Help: "Total number of variant runs by final status.",
			},
			[]string{"variant", "status"},
		)

		insertDurationMetric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventbench_insert_duration_seconds",
				Help:    "Duration of batch inserts in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"variant"},
		)

		queryExecutionGauge = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eventbench_query_execution_ms",
				Help: "Last reported execution time of a benchmark query in milliseconds.",
			},
			[]string{"variant", "query"},
		)

		measurementFailuresCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbench_measurement_failures_total",
				Help: "Total number of declared queries that produced no measurement.",
			},
			[]string{"variant", "query"},
		)

		generatedEventsCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "eventbench_generated_events_total",
				Help: "Total number of synthetic events generated.",
			},
		)

		httpRequestsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbench_http_requests_total",
				Help: "Total number of progress server requests by route and status code.",
			},
			[]string{"route", "code"},
		)

		prometheus.MustRegister(
			checkpointsCounter,
			variantRunsCounter,
			insertDurationMetric,
			queryExecutionGauge,
			measurementFailuresCounter,
			generatedEventsCounter,
			httpRequestsCounter,
		)
	})
}

func IncCheckpoints() {
	Init()
	checkpointsCounter.Inc()
}

// RegisterVariant exports a zero series for every run status of variant so
// rate() sees the first failure.
func RegisterVariant(variant string) {
	Init()
	for _, status := range domain.AllRunStatuses {
		variantRunsCounter.WithLabelValues(variant, string(status))
	}
}

func IncVariantRun(variant, status string) {
	Init()
	variantRunsCounter.WithLabelValues(variant, status).Inc()
}

func ObserveInsertDuration(variant string, d time.Duration) {
	Init()
	insertDurationMetric.WithLabelValues(variant).Observe(d.Seconds())
}

func SetQueryExecution(variant, query string, ms float64) {
	Init()
	queryExecutionGauge.WithLabelValues(variant, query).Set(ms)
}

func IncMeasurementFailure(variant, query string) {
	Init()
	measurementFailuresCounter.WithLabelValues(variant, query).Inc()
}

func AddGeneratedEvents(n int) {
	if n <= 0 {
		return
	}
	Init()
	generatedEventsCounter.Add(float64(n))
}

// IncHTTPRequest counts a served request. route is the matched pattern, not
// the raw path.
func IncHTTPRequest(route string, code int) {
	Init()
	httpRequestsCounter.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
