package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ReviewsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewinsights", Name: "reviews_processed_total", Help: "Reviews run through extraction and standardization."},
		[]string{"mode"}, // mode: business|batch|dataset
	)
	CleanerFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviewinsights", Name: "cleaner_fallbacks_total", Help: "Model outputs passed through uncleaned."},
	)
	BusinessesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewinsights", Name: "businesses_processed_total", Help: "Businesses aggregated."},
		[]string{"status"}, // status: ok|error
	)
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewinsights", Name: "llm_requests_total", Help: "Model generation calls."},
		[]string{"provider", "status"},
	)
	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviewinsights", Name: "llm_request_duration_seconds",
			Help:    "Model generation latency seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewinsights", Name: "cache_events_total", Help: "Response cache hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set|error
	)
)

// Registry holds every collector above
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(ReviewsProcessed, CleanerFallbacks, BusinessesProcessed, LLMRequests, LLMLatency, CacheEvents)
}

// MetricsHandler exposes the registry in the Prometheus text format
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve starts a /metrics listener on addr until ctx is done.
// An empty addr disables the listener.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// ObserveLLM records one model call
func ObserveLLM(provider string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMRequests.WithLabelValues(provider, status).Inc()
	LLMLatency.WithLabelValues(provider).Observe(dur.Seconds())
}

// ObserveCache records a cache event (hit|miss|set|error)
func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveBusiness records a finished business aggregation
func ObserveBusiness(err error) {
	if err != nil {
		BusinessesProcessed.WithLabelValues("error").Inc()
		return
	}
	BusinessesProcessed.WithLabelValues("ok").Inc()
}
