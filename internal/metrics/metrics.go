// Package metrics records batch-run metrics on a private prometheus registry.
// One-shot runs push the registry to a Pushgateway; the trigger server
// exposes it on /metrics instead.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// API call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeAPIError    = "api_error"
	OutcomeError       = "error"
)

// Recorder owns the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	apiCalls      *prometheus.CounterVec
	rowsWritten   *prometheus.CounterVec
	countries     *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	uploadedBytes *prometheus.CounterVec
	lastSuccess   *prometheus.GaugeVec
}

// NewRecorder registers the metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		apiCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ytetl_api_calls_total",
			Help: "Video API requests by endpoint and outcome",
		}, []string{"pipeline", "endpoint", "outcome"}),
		rowsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ytetl_rows_written_total",
			Help: "Rows written to snapshots",
		}, []string{"pipeline"}),
		countries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ytetl_countries_total",
			Help: "Countries processed, by completeness",
		}, []string{"pipeline", "status"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ytetl_runs_total",
			Help: "Pipeline runs by result status code",
		}, []string{"pipeline", "status_code"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytetl_run_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
		}, []string{"pipeline"}),
		uploadedBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ytetl_uploaded_bytes_total",
			Help: "Bytes uploaded to object storage",
		}, []string{"pipeline"}),
		lastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ytetl_last_success_timestamp_seconds",
			Help: "Unix time of the last run that returned 200",
		}, []string{"pipeline"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// APICall counts one request.
func (r *Recorder) APICall(pipeline, endpoint, outcome string) {
	r.apiCalls.WithLabelValues(pipeline, endpoint, outcome).Inc()
}

// Country counts one processed country.
func (r *Recorder) Country(pipeline string, complete bool) {
	status := "complete"
	if !complete {
		status = "incomplete"
	}
	r.countries.WithLabelValues(pipeline, status).Inc()
}

// Uploaded counts the artifact size.
func (r *Recorder) Uploaded(pipeline string, n int) {
	r.uploadedBytes.WithLabelValues(pipeline).Add(float64(n))
}

// RunFinished records the run outcome.
func (r *Recorder) RunFinished(pipeline string, statusCode int, rows int64, elapsed time.Duration, now time.Time) {
	r.runs.WithLabelValues(pipeline, strconv.Itoa(statusCode)).Inc()
	r.runDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
	r.rowsWritten.WithLabelValues(pipeline).Add(float64(rows))
	if statusCode == http.StatusOK {
		r.lastSuccess.WithLabelValues(pipeline).Set(float64(now.Unix()))
	}
}

// Handler serves the registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway under job, with the pipeline as
// the instance grouping key. The series already carry a pipeline label, and
// the gateway rejects a grouping label that collides with one.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job, pipeline string) error {
	err := push.New(gatewayURL, job).
		Gatherer(r.registry).
		Grouping("instance", pipeline).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	return nil
}
