// Package metrics exposes the orchestrator's run-time counters, gauges, and
// latency histograms over a Prometheus registry. Nothing in the core reads
// these back to make decisions; they are observability only, mirroring the
// ambient logging stack's "observational only" rule.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the orchestrator and pipeline update during
// a run. A fresh Registry (and its own prometheus.Registerer) is created per
// process so repeated test runs never collide on global registration.
type Registry struct {
	reg *prometheus.Registry

	PagesProcessed   prometheus.Counter
	PagesFailed      prometheus.Counter
	FrontierSize     prometheus.Gauge
	StoreBytes       prometheus.Gauge
	LLMCallDuration  *prometheus.HistogramVec
	FetchDuration    prometheus.Histogram
	DuplicatesDropped prometheus.Counter
}

// New constructs and registers every metric.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		PagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intentcrawl_pages_processed_total",
			Help: "Total number of URLs successfully processed.",
		}),
		PagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intentcrawl_pages_failed_total",
			Help: "Total number of URLs that terminated with a failure.",
		}),
		FrontierSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intentcrawl_frontier_size",
			Help: "Number of items currently queued in the frontier.",
		}),
		StoreBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intentcrawl_store_bytes",
			Help: "Total bytes written to the content store so far.",
		}),
		LLMCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "intentcrawl_llm_call_duration_seconds",
			Help: "Latency of LLM capability calls by tier.",
		}, []string{"tier"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "intentcrawl_fetch_duration_seconds",
			Help: "Latency of HTMLFetcher.Fetch calls.",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intentcrawl_duplicates_skipped_total",
			Help: "Total number of raw artifacts skipped due to content-hash dedup.",
		}),
	}

	reg.MustRegister(
		r.PagesProcessed, r.PagesFailed, r.FrontierSize, r.StoreBytes,
		r.LLMCallDuration, r.FetchDuration, r.DuplicatesDropped,
	)

	return r
}

// ObserveLLMCall records the wall-clock duration of one LLM call under tier.
func (r *Registry) ObserveLLMCall(tier string, d time.Duration) {
	r.LLMCallDuration.WithLabelValues(tier).Observe(d.Seconds())
}

// Serve runs a metrics HTTP server on addr until ctx is cancelled. Intended
// to be launched in its own goroutine from the CLI when --metrics-addr is
// set; the orchestrator's control loop never calls this itself.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
