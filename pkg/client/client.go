// Package client provides the twin backend API client: the streaming chat
// session and the plain JSON endpoints, with idempotent reads guarded by the
// response cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/twin-client/pkg/cache"
	"github.com/Sternrassler/twin-client/pkg/logging"
	"github.com/Sternrassler/twin-client/pkg/stream"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for non-streaming API calls.
var (
	twinRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twin_requests_total",
		Help: "Total twin API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	twinRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "twin_request_duration_seconds",
		Help:    "Twin API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"endpoint"})

	twinErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twin_errors_total",
		Help: "Total twin API errors by class",
	}, []string{"class"})
)

// Client is the twin backend client.
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client
	cache        cache.Cache
	baseURL      string
	config       Config
	logger       zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API including its version prefix
	// Example: "http://localhost:8000/api/v1"
	BaseURL string

	// User-Agent header sent with every request
	UserAgent string

	// Timeout for non-streaming requests. Streaming requests have no client
	// timeout; bound them with a context deadline instead.
	Timeout time.Duration

	// Cache for idempotent reads (defaults to an in-memory cache with cache.DefaultTTL)
	Cache cache.Cache

	// StreamChunkSize is the read buffer size for streaming bodies
	StreamChunkSize int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		UserAgent:       "twin-client/0.1.0",
		Timeout:         60 * time.Second,
		StreamChunkSize: stream.DefaultChunkSize,
	}
}

// New creates a new twin client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url host is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{},
		cache:        cfg.Cache,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		config:       cfg,
		logger:       logging.NewLogger(logging.ComponentClient),
	}, nil
}

// apiRequest describes one non-streaming call.
type apiRequest struct {
	method   string
	endpoint string
	// route is the metrics label; it defaults to endpoint
	route string
	query url.Values
	body  any
	// cacheable marks idempotent reads that may be served from the cache
	cacheable bool
}

// do performs a JSON request and decodes the response into out.
// Cacheable GETs consult the cache first and populate it on success.
func (c *Client) do(ctx context.Context, r apiRequest, out any) error {
	route := r.route
	if route == "" {
		route = r.endpoint
	}

	cacheable := r.cacheable && r.method == http.MethodGet
	cacheKey := cache.Key{Endpoint: r.endpoint, Query: r.query}.String()

	// Step 1: Check Cache
	if cacheable {
		data, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, out); err == nil {
				c.logger.Debug().Str("endpoint", route).Bool("cache_hit", true).Msg("Serving cached response")
				return nil
			}
			c.logger.Warn().Str("endpoint", route).Msg("Cached response could not be decoded")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", route).Msg("Cache get error")
		}
	}

	// Step 2: Build request
	req, err := c.newRequest(ctx, r.method, r.endpoint, r.query, r.body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	// Step 3: Execute
	startTime := time.Now()
	defer func() {
		twinRequestDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().
		Str("endpoint", route).
		Str("method", r.method).
		Msg("Executing twin request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		twinErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		twinRequestsTotal.WithLabelValues(route, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", route).Msg("HTTP request failed")
		return &APIError{Endpoint: route, ErrorClass: ErrorClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	twinRequestsTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		twinErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &APIError{Endpoint: route, StatusCode: resp.StatusCode, ErrorClass: ErrorClassNetwork, Err: err}
	}

	// Step 4: Handle HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		twinErrorsTotal.WithLabelValues(string(errClass)).Inc()

		apiErr := &APIError{
			Endpoint:   route,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Detail:     stream.ErrorDetail(body),
		}
		c.logger.Warn().
			Str("endpoint", route).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Str("detail", apiErr.Detail).
			Msg("Twin request error")
		return apiErr
	}

	// Step 5: Decode
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			twinErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
			return &APIError{Endpoint: route, StatusCode: resp.StatusCode, ErrorClass: ErrorClassDecode, Err: err}
		}
	}

	// Step 6: Update Cache on success
	if cacheable {
		if err := c.cache.Put(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", route).Msg("Failed to cache response")
		} else {
			c.logger.Debug().Str("endpoint", route).Str("key", cacheKey).Msg("Cached response")
		}
	}

	return nil
}

// encodedBody is a request body that is sent as is.
type encodedBody struct {
	contentType string
	data        []byte
}

// newRequest builds a request against the base URL. Bodies other than
// encodedBody are sent as JSON.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	var contentType string
	switch b := body.(type) {
	case nil:
	case encodedBody:
		reader = bytes.NewReader(b.data)
		contentType = b.contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	return req, nil
}

// NewChatSession prepares a streaming chat session for message. Nothing is
// sent until the session is run.
func (c *Client) NewChatSession(message string) (*stream.Session, error) {
	req, err := c.newRequest(context.Background(), http.MethodPost, chatStreamEndpoint, nil, chatRequest{Message: message})
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(stream.RequestIDHeader, requestID)

	return stream.NewSession(c.streamClient, req,
		stream.WithLogger(logging.NewLogger(logging.ComponentStream)),
		stream.WithChunkSize(c.config.StreamChunkSize),
	), nil
}

// ChatStream sends message and dispatches the streamed reply to h on the
// calling goroutine. Failures are reported through h.OnError only.
// Cancel ctx to abandon the stream.
func (c *Client) ChatStream(ctx context.Context, message string, h stream.Handlers) {
	session, err := c.NewChatSession(message)
	if err != nil {
		if h.OnError != nil {
			h.OnError(err)
		}
		return
	}
	session.Start(ctx, h)
}

// Cache returns the response cache.
func (c *Client) Cache() cache.Cache {
	return c.cache
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
	return nil
}
