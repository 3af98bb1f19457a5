// Package transport implements the rate-limited Helix request
// dispatcher. Requests sharing an endpoint signature are serialized
// through a gate, transient failures are retried with linear backoff,
// and exhausted quotas hold the gate closed until the reported reset
// time.
package transport

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/streamkit/helix-client/pkg/cache"
)

// Prometheus metrics for dispatcher operations.
var (
	helixRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_requests_total",
		Help: "Total Helix requests by endpoint and status",
	}, []string{"endpoint", "status"})

	helixRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helix_request_duration_seconds",
		Help:    "Helix request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	helixRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_retries_total",
		Help: "Total number of retry attempts by status code",
	}, []string{"status"})

	helixRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helix_retry_exhausted_total",
		Help: "Total number of requests that exhausted the retry budget",
	})

	helixRateLimitDeferralsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helix_rate_limit_deferrals_total",
		Help: "Total number of gate releases deferred to the quota reset",
	})

	helixRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "helix_rate_limit_wait_seconds",
		Help:    "Duration a gate stayed closed waiting for quota reset",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
	})
)

const (
	// DefaultBaseURL is the production Helix API root.
	DefaultBaseURL = "https://api.twitch.tv/helix"

	// DefaultAuthURL is the OAuth2 client-credentials token endpoint.
	DefaultAuthURL = "https://id.twitch.tv/oauth2/token"

	// maxAttempts bounds the retry loop for transient failures.
	maxAttempts = 5
)

// Config holds the dispatcher configuration.
type Config struct {
	// ClientID is sent as the Client-Id header on every request (REQUIRED).
	ClientID string

	// Token is the optional bearer token. It can also be acquired later
	// via FetchAppToken.
	Token string

	// BaseURL overrides the Helix API root (used by tests and proxies).
	BaseURL string

	// AuthURL overrides the OAuth token endpoint.
	AuthURL string

	// Cache is an optional response cache for GET routes. Nil disables
	// caching.
	Cache *cache.Manager

	// RequestsPerSecond applies a global pacer across all endpoints
	// when > 0. Gate serialization is always active regardless.
	RequestsPerSecond int

	// Timeout per HTTP call.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(clientID string) Config {
	return Config{
		ClientID: clientID,
		BaseURL:  DefaultBaseURL,
		AuthURL:  DefaultAuthURL,
		Timeout:  30 * time.Second,
	}
}

// Dispatcher executes Helix requests with rate-limit serialization and
// bounded retry. It is safe for concurrent use; the gate registry is
// the only shared mutable state.
type Dispatcher struct {
	httpClient *http.Client
	config     Config
	gates      *gateRegistry
	pacer      *rate.Limiter
	cache      *cache.Manager
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string

	// backoff computes the sleep before retrying attempt+1. Replaced in
	// tests to avoid wall-clock sleeps.
	backoff func(attempt int) time.Duration
}

// New creates a dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "helix-transport").Logger()

	var pacer *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond)
	}

	return &Dispatcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		gates:      newGateRegistry(),
		pacer:      pacer,
		cache:      cfg.Cache,
		logger:     logger,
		token:      cfg.Token,
		backoff:    linearBackoff,
	}, nil
}

// linearBackoff is the transient-failure schedule: 1s, 3s, 5s, 7s.
func linearBackoff(attempt int) time.Duration {
	return time.Duration(1+attempt*2) * time.Second
}

// Token returns the current bearer token ("" when unauthenticated).
func (d *Dispatcher) Token() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.token
}

// SetToken replaces the bearer token used for subsequent requests.
func (d *Dispatcher) SetToken(token string) {
	d.mu.Lock()
	d.token = token
	d.mu.Unlock()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (d *Dispatcher) SetHTTPClient(client *http.Client) {
	d.httpClient = client
}

// Do executes one logical request to completion. It acquires the gate
// for the route's signature, attempts the HTTP call up to maxAttempts
// times, and returns the decoded payload or an *APIError.
//
// Transient statuses (429, 500, 502, 503) sleep and retry under the
// same gate; any other non-2xx status fails immediately. When a
// response reports Ratelimit-Remaining 0 (and is not itself a 429),
// the gate release is deferred to the Ratelimit-Reset instant so no
// second request on this signature runs inside the exhausted window.
func (d *Dispatcher) Do(ctx context.Context, route Route) (*Payload, error) {
	endpoint := route.Path
	start := time.Now()
	defer func() {
		helixRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if d.pacer != nil {
		if err := d.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacer wait: %w", err)
		}
	}

	sig := route.Signature()

	if d.cache != nil && route.Method == http.MethodGet {
		entry, err := d.cache.Get(ctx, sig)
		switch {
		case err == nil:
			d.logger.Debug().Str("endpoint", endpoint).Msg("Serving response from cache")
			helixRequestsTotal.WithLabelValues(endpoint, "cached").Inc()
			return &Payload{
				Status: http.StatusOK,
				Header: http.Header{},
				Body:   entry.Body,
				IsJSON: entry.IsJSON,
			}, nil
		case err != cache.ErrCacheMiss:
			d.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	gh := d.gates.acquire(sig)
	defer gh.finish()

	var last *Payload
	for attempt := 0; attempt < maxAttempts; attempt++ {
		payload, err := d.attempt(ctx, route)
		if err != nil {
			return nil, err
		}
		last = payload

		d.observeRateLimit(gh, endpoint, payload)

		if payload.Status >= 200 && payload.Status < 300 {
			helixRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(payload.Status)).Inc()
			if attempt > 0 {
				d.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			d.storeCache(ctx, route, sig, payload)
			return payload, nil
		}

		helixRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(payload.Status)).Inc()

		if !transient(payload.Status) {
			d.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", payload.Status).
				Msg("Helix request failed")
			return nil, &APIError{Status: payload.Status, Body: payload.Body, IsJSON: payload.IsJSON}
		}

		if attempt == maxAttempts-1 {
			break
		}

		wait := d.backoff(attempt)
		helixRetriesTotal.WithLabelValues(strconv.Itoa(payload.Status)).Inc()
		d.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", payload.Status).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Transient Helix error, retrying after backoff")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(wait):
		}
	}

	helixRetryExhaustedTotal.Inc()
	d.logger.Error().
		Str("endpoint", endpoint).
		Int("status", last.Status).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")
	return nil, &APIError{Status: last.Status, Body: last.Body, IsJSON: last.IsJSON, Err: ErrRetryExhausted}
}

// attempt performs a single HTTP call and decodes the body.
func (d *Dispatcher) attempt(ctx context.Context, route Route) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, route.Method, route.URL(d.config.BaseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Client-Id", d.config.ClientID)
	if token := d.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	return readPayload(resp)
}

// observeRateLimit inspects the quota headers of a response and, when
// the quota is spent, defers this gate's release until the reset
// timestamp. A 429 is exempt: the retry loop already backs off, and
// its headers describe the window that rejected us, not a new one.
func (d *Dispatcher) observeRateLimit(gh *gateHandle, endpoint string, p *Payload) {
	if p.Header.Get("Ratelimit-Remaining") != "0" || p.Status == http.StatusTooManyRequests {
		return
	}

	resetStr := p.Header.Get("Ratelimit-Reset")
	if resetStr == "" {
		return
	}
	reset, err := strconv.ParseFloat(resetStr, 64)
	if err != nil {
		d.logger.Warn().Err(err).Str("ratelimit_reset", resetStr).Msg("Unparseable Ratelimit-Reset header")
		return
	}

	sec, frac := math.Modf(reset)
	resetAt := time.Unix(int64(sec), int64(frac*float64(time.Second)))
	delta := time.Until(resetAt)
	if delta < 0 {
		delta = 0
	}

	helixRateLimitDeferralsTotal.Inc()
	helixRateLimitWaitSeconds.Observe(delta.Seconds())
	d.logger.Warn().
		Str("endpoint", endpoint).
		Time("reset_at", resetAt).
		Dur("wait", delta).
		Msg("Endpoint quota exhausted, deferring gate release")

	gh.deferRelease(delta)
}

// storeCache writes a successful GET payload to the response cache.
func (d *Dispatcher) storeCache(ctx context.Context, route Route, sig string, p *Payload) {
	if d.cache == nil || route.Method != http.MethodGet || p.Status != http.StatusOK {
		return
	}
	entry := &cache.Entry{Body: p.Body, IsJSON: p.IsJSON, StoredAt: time.Now()}
	if err := d.cache.Set(ctx, sig, entry); err != nil {
		d.logger.Warn().Err(err).Str("endpoint", route.Path).Msg("Failed to cache response")
	}
}
