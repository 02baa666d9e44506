// Package metrics exposes Prometheus collectors for the addon service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeRunsTotal          *prometheus.CounterVec
	scrapeListingsTotal      prometheus.Counter
	scrapePagesFailedTotal   prometheus.Counter
	scrapeRunDurationSeconds prometheus.Histogram
	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	tmdbLookupsTotal         *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapeRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musortv_scrape_runs_total",
				Help: "Total number of extraction runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scrapeListingsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "musortv_scrape_listings_total",
				Help: "Total number of listings recovered across runs.",
			},
		)

		scrapePagesFailedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "musortv_scrape_pages_failed_total",
				Help: "Total number of source pages that failed after retries.",
			},
		)

		scrapeRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "musortv_scrape_run_duration_seconds",
				Help:    "Wall-clock duration of extraction runs.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		tmdbLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musortv_tmdb_lookups_total",
				Help: "Total number of TMDB lookups, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// ObserveRun records one extraction run.
func ObserveRun(outcome string, listings, pagesFailed int, duration time.Duration) {
	if scrapeRunsTotal == nil {
		return
	}
	scrapeRunsTotal.WithLabelValues(outcome).Inc()
	scrapeListingsTotal.Add(float64(listings))
	scrapePagesFailedTotal.Add(float64(pagesFailed))
	scrapeRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, code string, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, code).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveTMDBLookup records one IMDb-ID lookup attempt.
func ObserveTMDBLookup(result string) {
	if tmdbLookupsTotal == nil {
		return
	}
	tmdbLookupsTotal.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
