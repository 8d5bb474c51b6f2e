// Package stream runs one streaming request against the twin backend and
// turns its event stream into data and terminal outcomes.
package stream

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/twin-client/pkg/logging"
	"github.com/Sternrassler/twin-client/pkg/sse"
	"github.com/rs/zerolog"
)

const (
	// DefaultChunkSize is the read buffer size for the response body.
	DefaultChunkSize = 4096

	// RequestIDHeader correlates a session with server logs.
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody bounds how much of a failed response is read for its detail.
	maxErrorBody = 4096
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithChunkSize sets the body read buffer size.
func WithChunkSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// Session owns one in-flight streaming request.
//
// Exactly one terminal outcome (Done or Failed) is produced per session and
// it always follows every data outcome that preceded it in the byte stream.
// A stream that ends without a sentinel completes normally.
//
// A session is single use. Cancel, a cancelled parent context, or breaking out
// of Outcomes abandons it: the response body is closed and nothing further is
// delivered, not even a terminal outcome.
type Session struct {
	doer      Doer
	req       *http.Request
	logger    zerolog.Logger
	chunkSize int

	used      atomic.Bool
	cancelled atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSession creates a session for req. The request is not sent until the
// session is run.
func NewSession(doer Doer, req *http.Request, opts ...Option) *Session {
	s := &Session{
		doer:      doer,
		req:       req,
		logger:    logging.NewLogger(logging.ComponentStream),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cancel abandons the session. It is safe to call from any goroutine and
// more than once.
func (s *Session) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Start runs the session and dispatches outcomes to h on the calling goroutine.
// It returns once the session has ended or been abandoned. Failures are only
// ever reported through h.OnError.
func (s *Session) Start(ctx context.Context, h Handlers) {
	for o := range s.Outcomes(ctx) {
		h.dispatch(o)
	}
}

// Text runs the session and concatenates its data outcomes.
func (s *Session) Text(ctx context.Context) (string, error) {
	var sb strings.Builder
	for o := range s.Outcomes(ctx) {
		switch o.Kind {
		case OutcomeData:
			sb.WriteString(o.Text)
		case OutcomeDone:
			return sb.String(), nil
		case OutcomeFailed:
			return sb.String(), o.Err
		}
	}
	// No terminal outcome means the session was abandoned.
	return sb.String(), context.Canceled
}

// Outcomes returns the lazy sequence of session outcomes. The request is
// issued when iteration begins; stopping the iteration early abandons the
// session.
func (s *Session) Outcomes(ctx context.Context) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		if !s.used.CompareAndSwap(false, true) {
			yield(Failed(ErrSessionUsed))
			return
		}
		s.run(ctx, yield)
	}
}

// sessionStats is what a run reports for logs and metrics.
type sessionStats struct {
	bytes  int
	events int
}

func (s *Session) run(parent context.Context, yield func(Outcome) bool) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	logger := s.logger.With().
		Str("request_id", s.req.Header.Get(RequestIDHeader)).
		Str("endpoint", s.req.URL.Path).
		Logger()

	startTime := time.Now()
	var stats sessionStats

	// emit reports false when the session was abandoned. A terminal outcome
	// that reached the consumer is delivered even if iteration stops there.
	result := s.stream(ctx, logger, &stats, func(o Outcome) bool {
		if s.abandoned(ctx) {
			return false
		}
		return yield(o) || o.Terminal()
	})

	duration := time.Since(startTime)
	SessionsTotal.WithLabelValues(result).Inc()
	SessionDuration.Observe(duration.Seconds())

	event := logger.Debug()
	if result == resultFailed {
		event = logger.Warn()
	}
	event.
		Str("result", result).
		Int("events", stats.events).
		Int("bytes", stats.bytes).
		Dur("duration", duration).
		Msg("Stream session finished")
}

// stream performs the request and feeds the body through the decoder.
// It returns the result label of the session.
func (s *Session) stream(ctx context.Context, logger zerolog.Logger, stats *sessionStats, emit func(Outcome) bool) string {
	if s.abandoned(ctx) {
		return resultAbandoned
	}

	logger.Debug().Str("method", s.req.Method).Msg("Opening stream")

	resp, err := s.doer.Do(s.req.WithContext(ctx))
	if err != nil {
		if s.abandoned(ctx) {
			return resultAbandoned
		}
		emit(Failed(&Error{Class: ErrorClassNetwork, Message: "connect", Err: err}))
		return resultFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(ErrorClassStatus)).
			Msg("Stream request rejected")
		if !emit(Failed(&Error{
			Class:      ErrorClassStatus,
			StatusCode: resp.StatusCode,
			Message:    ErrorDetail(body),
		})) {
			return resultAbandoned
		}
		return resultFailed
	}

	dec := sse.NewDecoder()
	buf := make([]byte, s.chunkSize)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			stats.bytes += n
			BytesTotal.Add(float64(n))

			for _, ev := range dec.Feed(buf[:n]) {
				stats.events++
				EventsTotal.WithLabelValues(string(ev.Kind)).Inc()

				switch ev.Kind {
				case sse.KindData:
					if !emit(Data(ev.Payload)) {
						return resultAbandoned
					}
				case sse.KindDone:
					if !emit(Done()) {
						return resultAbandoned
					}
					return resultDone
				case sse.KindError:
					logger.Warn().
						Str("error_class", string(ErrorClassProtocol)).
						Str("message", ev.Payload).
						Msg("Server reported stream error")
					if !emit(Failed(&Error{Class: ErrorClassProtocol, Message: ev.Payload})) {
						return resultAbandoned
					}
					return resultFailed
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			if rest := dec.Buffered(); rest > 0 {
				logger.Debug().Int("buffered", rest).Msg("Stream ended inside an event block")
			}
			if !emit(Done()) {
				return resultAbandoned
			}
			return resultEOF
		}
		if readErr != nil {
			if s.abandoned(ctx) {
				return resultAbandoned
			}
			emit(Failed(&Error{Class: ErrorClassNetwork, Message: "read", Err: readErr}))
			return resultFailed
		}
	}
}

// abandoned reports whether the owner gave up on the session. A deadline on
// the context is a transport failure, not an abandonment.
func (s *Session) abandoned(ctx context.Context) bool {
	return s.cancelled.Load() || errors.Is(ctx.Err(), context.Canceled)
}
