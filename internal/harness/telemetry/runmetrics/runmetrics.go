// Package runmetrics provides opt-in Prometheus telemetry for harness runs.
// It is designed for long sweep sessions: each completed run observes its
// counters once, well outside the timed region, so enabling the endpoint
// never perturbs a measurement. When no endpoint is served the registration
// is harmless and the observe calls are cheap.
package runmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global metrics only: per-config labels would duplicate what the record
// stream already carries.
var (
	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "histbench_runs_total",
		Help: "Total benchmark runs completed (correct or not)",
	})
	elementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "histbench_elements_processed_total",
		Help: "Total dataset elements binned across all runs",
	})
	verifyFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "histbench_verification_failures_total",
		Help: "Runs whose bin counters did not sum to the dataset size",
	})
	runSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "histbench_run_seconds",
		Help:    "Elapsed wall-clock time of the timed parallel region",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	})
)

func init() {
	prometheus.MustRegister(runsTotal, elementsTotal, verifyFailuresTotal, runSeconds)
}

// ObserveRun records one completed run.
func ObserveRun(n int, elapsed time.Duration, correct bool) {
	runsTotal.Inc()
	elementsTotal.Add(float64(n))
	runSeconds.Observe(elapsed.Seconds())
	if !correct {
		verifyFailuresTotal.Inc()
	}
}

// Serve starts a standalone /metrics endpoint on addr in a background
// goroutine. Leave addr empty to disable. Errors from the listener are
// delivered on the returned channel; the harness only logs them.
func Serve(addr string) <-chan error {
	errc := make(chan error, 1)
	if addr == "" {
		close(errc)
		return errc
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		errc <- http.ListenAndServe(addr, mux)
	}()
	return errc
}
