package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session result labels.
const (
	resultDone      = "done"
	resultEOF       = "eof"
	resultFailed    = "failed"
	resultAbandoned = "abandoned"
)

var (
	// SessionsTotal counts finished sessions by result (done, eof, failed, abandoned).
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twin_stream_sessions_total",
		Help: "Total streaming sessions by result",
	}, []string{"result"})

	// EventsTotal counts decoded events by kind.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twin_stream_events_total",
		Help: "Total decoded stream events by kind",
	}, []string{"kind"})

	// BytesTotal counts raw bytes read from stream bodies.
	BytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "twin_stream_bytes_total",
		Help: "Total bytes read from streaming responses",
	})

	// SessionDuration observes session wall time.
	SessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "twin_stream_duration_seconds",
		Help:    "Streaming session duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)
