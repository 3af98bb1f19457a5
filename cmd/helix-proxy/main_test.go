package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/streamkit/helix-client/internal/testutil"
	"github.com/streamkit/helix-client/pkg/transport"
)

func newProxyDispatcher(t *testing.T, mock *testutil.MockHelix) *transport.Dispatcher {
	t.Helper()

	cfg := transport.DefaultConfig("proxy-client-id")
	cfg.BaseURL = mock.URL()

	dispatcher, err := transport.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return dispatcher
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != "OK" {
		t.Errorf("body = %q, want OK", body)
	}
}

func TestProxyHandler_ForwardsPathAndQuery(t *testing.T) {
	mock := testutil.NewMockHelix()
	defer mock.Close()
	mock.SetResponse("/streams", testutil.NewEnvelopeResponse("",
		map[string]any{"id": "s-1", "user_name": "alice", "type": "live"},
	))

	handler := proxyHandler(newProxyDispatcher(t, mock))

	req := httptest.NewRequest(http.MethodGet, "/helix/streams?first=5&language=en", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}
	if !strings.Contains(rec.Body.String(), `"alice"`) {
		t.Errorf("body = %s, want upstream envelope", rec.Body.String())
	}

	query, err := url.ParseQuery(mock.LastRequestQuery)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if got := query.Get("first"); got != "5" {
		t.Errorf("first = %q, want 5", got)
	}
	if got := query.Get("language"); got != "en" {
		t.Errorf("language = %q, want en", got)
	}
}

func TestProxyHandler_PassesThroughAPIErrors(t *testing.T) {
	mock := testutil.NewMockHelix()
	defer mock.Close()
	mock.SetResponse("/users", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "Not Found", "status": 404}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	})

	handler := proxyHandler(newProxyDispatcher(t, mock))

	req := httptest.NewRequest(http.MethodGet, "/helix/users?login=nobody", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 passed through", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not Found") {
		t.Errorf("body = %s, want upstream error body", rec.Body.String())
	}
}

func TestProxyHandler_UnreachableUpstream(t *testing.T) {
	mock := testutil.NewMockHelix()
	mock.Close() // connection refused

	handler := proxyHandler(newProxyDispatcher(t, mock))

	req := httptest.NewRequest(http.MethodGet, "/helix/games?id=1", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 for transport errors", rec.Code)
	}
}

func TestWritePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	writePayload(rec, http.StatusOK, true, []byte(`{"data": []}`))

	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}

	rec = httptest.NewRecorder()
	writePayload(rec, http.StatusServiceUnavailable, false, []byte("maintenance"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "maintenance" {
		t.Errorf("body = %q, want maintenance", body)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("HELIX_PROXY_TEST_VAR", "set")
	defer os.Unsetenv("HELIX_PROXY_TEST_VAR")

	if got := getEnv("HELIX_PROXY_TEST_VAR", "fallback"); got != "set" {
		t.Errorf("getEnv() = %q, want set", got)
	}
	if got := getEnv("HELIX_PROXY_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv() = %q, want fallback", got)
	}
}
