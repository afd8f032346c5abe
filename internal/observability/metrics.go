// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Matching metrics
	LeaguesOnboarded  *prometheus.CounterVec
	LeaguesUnmatched  *prometheus.CounterVec
	FixturesMatched   *prometheus.CounterVec
	FixturesUnmatched *prometheus.CounterVec

	// Ingestion metrics
	OddsIngested *prometheus.CounterVec
	OddsDropped  *prometheus.CounterVec

	// Adapter metrics
	AdapterFailures       *prometheus.CounterVec
	AdapterRequestLatency *prometheus.HistogramVec

	// Aggregation metrics
	BestOddsWritten            *prometheus.CounterVec
	BestOddsChanged            *prometheus.CounterVec
	CountryAggregationFailures *prometheus.CounterVec
	ChangeEventsPublished      *prometheus.CounterVec
	ChangeEventPublishErrors   prometheus.Counter

	// Job metrics
	JobRunsTotal      *prometheus.CounterVec
	JobDuration       *prometheus.HistogramVec
	LastSuccessfulJob *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "odds_aggregator"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Matching metrics
		LeaguesOnboarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "leagues_onboarded_total",
			Help:      "Total number of source leagues newly mapped to a canonical league",
		}, []string{"source"}),
		LeaguesUnmatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "leagues_unmatched_total",
			Help:      "Total number of source leagues that could not be mapped, by reason",
		}, []string{"source", "reason"}),
		FixturesMatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "fixtures_matched_total",
			Help:      "Total number of source fixtures mapped to a canonical fixture",
		}, []string{"source"}),
		FixturesUnmatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "fixtures_unmatched_total",
			Help:      "Total number of source fixtures that could not be mapped, by reason",
		}, []string{"source", "reason"}),

		// Ingestion metrics
		OddsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "odds_ingested_total",
			Help:      "Total number of source odds upserted",
		}, []string{"source"}),
		OddsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "odds_dropped_total",
			Help:      "Total number of source odds dropped, by reason",
		}, []string{"source", "reason"}),

		// Adapter metrics
		AdapterFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "failures_total",
			Help:      "Total number of failed adapter runs",
		}, []string{"source", "job"}),
		AdapterRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "request_latency_seconds",
			Help:      "Feed request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "status"}),

		// Aggregation metrics
		BestOddsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "best_odds_written_total",
			Help:      "Total number of best odds rows upserted",
		}, []string{"country"}),
		BestOddsChanged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "best_odds_changed_total",
			Help:      "Total number of best odds rows whose coefficient changed",
		}, []string{"country"}),
		CountryAggregationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "country_failures_total",
			Help:      "Total number of failed per-country aggregations",
		}, []string{"country"}),
		ChangeEventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "change_events_published_total",
			Help:      "Total number of best odds change events published",
		}, []string{"country"}),
		ChangeEventPublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "publish_errors_total",
			Help:      "Total number of failed change event publishes",
		}),

		// Job metrics
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Total number of job runs by status",
		}, []string{"job", "status"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Job execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		LastSuccessfulJob: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_job_timestamp",
			Help:      "Unix timestamp of last successful job run",
		}, []string{"job"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordLeagueOnboarded increments the onboarded leagues counter.
func RecordLeagueOnboarded(source string) {
	DefaultMetrics.LeaguesOnboarded.WithLabelValues(source).Inc()
}

// RecordLeagueUnmatched records a league that could not be mapped.
func RecordLeagueUnmatched(source, reason string) {
	DefaultMetrics.LeaguesUnmatched.WithLabelValues(source, reason).Inc()
}

// RecordFixtureMatched increments the matched fixtures counter.
func RecordFixtureMatched(source string) {
	DefaultMetrics.FixturesMatched.WithLabelValues(source).Inc()
}

// RecordFixtureUnmatched records a fixture that could not be mapped.
func RecordFixtureUnmatched(source, reason string) {
	DefaultMetrics.FixturesUnmatched.WithLabelValues(source, reason).Inc()
}

// RecordOddsIngested adds n to the ingested odds counter.
func RecordOddsIngested(source string, n int) {
	DefaultMetrics.OddsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordOddsDropped adds n dropped odds rows for reason.
func RecordOddsDropped(source, reason string, n int) {
	DefaultMetrics.OddsDropped.WithLabelValues(source, reason).Add(float64(n))
}

// RecordAdapterFailure records a failed adapter run.
func RecordAdapterFailure(source, job string) {
	DefaultMetrics.AdapterFailures.WithLabelValues(source, job).Inc()
}

// RecordAdapterRequest records feed request latency.
func RecordAdapterRequest(source, status string, seconds float64) {
	DefaultMetrics.AdapterRequestLatency.WithLabelValues(source, status).Observe(seconds)
}

// RecordBestOdds records written and changed best odds rows of a country.
func RecordBestOdds(country string, written, changed int) {
	DefaultMetrics.BestOddsWritten.WithLabelValues(country).Add(float64(written))
	DefaultMetrics.BestOddsChanged.WithLabelValues(country).Add(float64(changed))
}

// RecordCountryFailure records a failed per-country aggregation.
func RecordCountryFailure(country string) {
	DefaultMetrics.CountryAggregationFailures.WithLabelValues(country).Inc()
}

// RecordChangeEvents records published change events, or a publish error.
func RecordChangeEvents(country string, published int, err error) {
	if err != nil {
		DefaultMetrics.ChangeEventPublishErrors.Inc()
		return
	}
	DefaultMetrics.ChangeEventsPublished.WithLabelValues(country).Add(float64(published))
}

// RecordJobRun records a job run.
func RecordJobRun(job, status string, duration time.Duration) {
	DefaultMetrics.JobRunsTotal.WithLabelValues(job, status).Inc()
	DefaultMetrics.JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if status == StatusSuccess {
		DefaultMetrics.LastSuccessfulJob.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}

// Job run statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)
