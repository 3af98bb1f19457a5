// Package testutil provides testing utilities for the Helix client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock Helix endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockHelix is a configurable mock Helix server for testing. Besides
// canned responses it tracks, per path, how many requests arrived and
// the maximum number that were in flight at the same time, which lets
// tests assert gate serialization.
type MockHelix struct {
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	requestCount map[string]int
	inFlight     map[string]int
	maxInFlight  map[string]int

	LastRequestHeader http.Header
	LastRequestQuery  string
}

// NewMockHelix creates a new mock Helix server.
func NewMockHelix() *MockHelix {
	mock := &MockHelix{
		handlers:     make(map[string]func(w http.ResponseWriter, r *http.Request)),
		requestCount: make(map[string]int),
		inFlight:     make(map[string]int),
		maxInFlight:  make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		mock.mu.Lock()
		mock.requestCount[path]++
		mock.inFlight[path]++
		if mock.inFlight[path] > mock.maxInFlight[path] {
			mock.maxInFlight[path] = mock.inFlight[path]
		}
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastRequestQuery = r.URL.RawQuery
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight[path]--
			mock.mu.Unlock()
		}()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockHelix) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHelix) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockHelix) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = make(map[string]int)
	m.inFlight = make(map[string]int)
	m.maxInFlight = make(map[string]int)
	m.LastRequestHeader = nil
	m.LastRequestQuery = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockHelix) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockHelix) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to a path.
func (m *MockHelix) RequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[path]
}

// MaxInFlight returns the maximum number of concurrent in-flight
// requests observed on a path.
func (m *MockHelix) MaxInFlight(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight[path]
}

// defaultHandler provides a default Helix-like envelope response.
func (m *MockHelix) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Ratelimit-Remaining", "799")
	w.Header().Set("Ratelimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Minute).Unix()))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data": []}`))
}

// Envelope renders a Helix success envelope from record objects, with
// an optional pagination cursor.
func Envelope(cursor string, records ...any) string {
	env := map[string]any{"data": records}
	if cursor != "" {
		env["pagination"] = map[string]string{"cursor": cursor}
	}
	body, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	return string(body)
}

// NewEnvelopeResponse creates a 200 OK envelope response with healthy
// rate limit headers.
func NewEnvelopeResponse(cursor string, records ...any) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       Envelope(cursor, records...),
		Headers: map[string]string{
			"Ratelimit-Remaining": "799",
			"Ratelimit-Reset":     fmt.Sprintf("%d", time.Now().Add(time.Minute).Unix()),
			"Content-Type":        "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Too Many Requests", "status": 429}`,
		Headers: map[string]string{
			"Ratelimit-Remaining": "0",
			"Ratelimit-Reset":     fmt.Sprintf("%d", time.Now().Add(30*time.Second).Unix()),
			"Content-Type":        "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal Server Error", "status": 500}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewExhaustedQuotaResponse creates a 200 OK response whose headers
// report the endpoint quota as spent until resetAt.
func NewExhaustedQuotaResponse(body string, resetAt time.Time) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Ratelimit-Remaining": "0",
			"Ratelimit-Reset":     fmt.Sprintf("%.3f", float64(resetAt.UnixNano())/float64(time.Second)),
			"Content-Type":        "application/json; charset=utf-8",
		},
	}
}
