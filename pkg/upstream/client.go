// Package upstream provides the resilient HTTP transport used to query the
// Roblox web APIs: per-attempt timeouts, bounded retries with exponential
// backoff, and Retry-After hints honored on 429/503.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Flash5127/DU81-Proxy/pkg/logging"
)

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roproxy_upstream_requests_total",
		Help: "Total upstream request attempts by host and status",
	}, []string{"host", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roproxy_upstream_request_duration_seconds",
		Help:    "Upstream request attempt duration in seconds by host",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roproxy_upstream_retries_total",
		Help: "Total retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roproxy_upstream_retry_backoff_seconds",
		Help:    "Backoff duration before retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roproxy_upstream_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Config holds the transport configuration.
type Config struct {
	// UserAgent is sent on every request. Roblox endpoints reject requests
	// without a browser-like User-Agent.
	UserAgent string

	// RequestTimeout bounds a single attempt, not the whole retry loop.
	RequestTimeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; it doubles per attempt and is
	// overridden by a Retry-After hint when the upstream provides one.
	RetryBaseDelay time.Duration
}

// DefaultConfig returns a safe default transport configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		RequestTimeout: 10 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 400 * time.Millisecond,
	}
}

// Client performs resilient GET requests against the upstream APIs.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a transport client. Zero config fields fall back to defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = def.RetryBaseDelay
	}

	return &Client{
		// No client-level timeout: each attempt carries its own deadline.
		httpClient: &http.Client{},
		config:     cfg,
		logger:     logging.NewLogger("upstream"),
	}
}

// Payload is the parsed body of a completed upstream request.
//
// JSON is set when the body is valid JSON; otherwise the body is carried
// verbatim in Raw so malformed upstream responses are surfaced instead of
// masked. Non-429 4xx responses with a parseable body (the upstream expresses
// "no results" as a 404 with an error body) are returned as a Payload, not an
// error; callers must inspect the body for an embedded error field.
type Payload struct {
	StatusCode int
	JSON       json.RawMessage
	Raw        string
}

// GetJSON performs one logical GET with the configured retry policy and
// returns the parsed body.
//
// 429/503 responses sleep the server-provided Retry-After duration when
// present, otherwise the exponential schedule. 5xx and network failures use
// the exponential schedule. After exhausting all attempts, the last failure
// is returned wrapped in ErrRetryExhausted.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (*Payload, error) {
	attempts := c.config.MaxRetries + 1

	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt < attempts; attempt++ {
		payload, hint, err := c.attempt(ctx, rawURL)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("url", rawURL).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return payload, nil
		}

		lastErr = err
		lastClass = classOf(err)

		if !shouldRetry(lastClass) {
			return nil, err
		}
		if attempt == attempts-1 {
			break
		}

		// Server hint wins; otherwise base delay × 2^attempt.
		delay := c.config.RetryBaseDelay << attempt
		if hint > 0 {
			delay = hint
		}

		retriesTotal.WithLabelValues(string(lastClass)).Inc()
		retryBackoffSeconds.WithLabelValues(string(lastClass)).Observe(delay.Seconds())

		c.logger.Debug().
			Str("url", rawURL).
			Str("error_class", string(lastClass)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Retrying upstream request after backoff")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(delay):
		}
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Warn().
		Str("url", rawURL).
		Str("error_class", string(lastClass)).
		Int("attempts", attempts).
		Msg("Upstream retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, attempts, lastErr)
}

// attempt performs a single GET. The returned duration is the Retry-After
// hint for rate-limit failures, zero otherwise.
func (c *Client) attempt(ctx context.Context, rawURL string) (*Payload, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &Error{Class: ErrorClassClient, Message: "invalid request", Err: err}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestDuration.WithLabelValues(req.URL.Host).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(req.URL.Host, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "reading response body",
			Err:        err,
		}
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		return nil, retryAfterHint(resp.Header), &Error{
			StatusCode: status,
			Class:      ErrorClassRateLimit,
			Message:    http.StatusText(status),
		}

	case status >= 500:
		return nil, 0, &Error{
			StatusCode: status,
			Class:      ErrorClassServer,
			Message:    http.StatusText(status),
		}

	case status >= 400:
		// Terminal: return the body as data when it parses so an "empty
		// result expressed as 404" reaches the caller.
		if p := parseBody(status, body); p.JSON != nil {
			return p, 0, nil
		}
		return nil, 0, &Error{
			StatusCode: status,
			Class:      ErrorClassClient,
			Message:    http.StatusText(status),
		}

	default:
		return parseBody(status, body), 0, nil
	}
}

// parseBody decodes a response body, falling back to the verbatim text when
// it is not valid JSON regardless of the declared content type.
func parseBody(status int, body []byte) *Payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return &Payload{StatusCode: status, JSON: json.RawMessage(trimmed)}
	}
	return &Payload{StatusCode: status, Raw: string(body)}
}

// retryAfterHint reads a numeric Retry-After header in seconds.
func retryAfterHint(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// classOf extracts the error class, defaulting to network for plain errors.
func classOf(err error) ErrorClass {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Class
	}
	return ErrorClassNetwork
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
