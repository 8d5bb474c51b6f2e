// Package metrics provides the Prometheus registry reference and scrape
// handler for the twin client.
// All metrics are defined in their respective packages (client, cache, stream)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Sternrassler/twin-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the twin client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry metrics are scraped from.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the scrape handler for Gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// shutdownTimeout bounds how long Serve waits for open scrapes on exit.
var shutdownTimeout = 5 * time.Second

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, ln)
}

func serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger := logging.NewLogger(logging.ComponentMetrics)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str("addr", ln.Addr().String()).Msg("Metrics server shutdown failed")
		}
	}()

	logger.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

// Metrics Documentation
//
// Stream Metrics (pkg/stream):
//   - twin_stream_sessions_total{result} (Counter): Finished sessions by result (done, eof, failed, abandoned)
//   - twin_stream_events_total{kind} (Counter): Decoded events by kind (data, done, error)
//   - twin_stream_bytes_total (Counter): Raw bytes read from streaming bodies
//   - twin_stream_duration_seconds (Histogram): Session wall time
//
// Cache Metrics (pkg/cache):
//   - twin_cache_hits_total{backend} (Counter): Fresh entries served by backend (memory, redis)
//   - twin_cache_misses_total{backend} (Counter): Absent or expired lookups
//   - twin_cache_entries{backend="memory"} (Gauge): Entries held by the memory backend
//   - twin_cache_errors_total{backend, operation} (Counter): Backend operation errors
//
// Request Metrics (pkg/client):
//   - twin_requests_total{endpoint, status} (Counter): Non-streaming requests by endpoint and HTTP status
//   - twin_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - twin_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Example Prometheus Queries:
//
//   # Health Cache Hit Rate
//   sum(rate(twin_cache_hits_total[5m])) /
//   (sum(rate(twin_cache_hits_total[5m])) + sum(rate(twin_cache_misses_total[5m])))
//
//   # Failed Stream Ratio
//   sum(rate(twin_stream_sessions_total{result="failed"}[5m])) /
//   sum(rate(twin_stream_sessions_total[5m]))
//
//   # P95 Stream Duration
//   histogram_quantile(0.95, rate(twin_stream_duration_seconds_bucket[5m]))
