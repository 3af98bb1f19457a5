package transport

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestTransient(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusGatewayTimeout, false},
	}

	for _, tt := range tests {
		if got := transient(tt.status); got != tt.want {
			t.Errorf("transient(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Status: http.StatusNotFound, Body: []byte(`{}`)}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Error() = %q, want status code included", err.Error())
	}

	wrapped := &APIError{Status: http.StatusServiceUnavailable, Err: ErrRetryExhausted}
	if !strings.Contains(wrapped.Error(), "retry attempts exhausted") {
		t.Errorf("Error() = %q, want wrapped cause included", wrapped.Error())
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{Status: http.StatusBadGateway, Err: ErrRetryExhausted}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Error("errors.Is(err, ErrRetryExhausted) = false, want true")
	}

	plain := &APIError{Status: http.StatusBadRequest}
	if errors.Is(plain, ErrRetryExhausted) {
		t.Error("errors.Is(plain, ErrRetryExhausted) = true, want false")
	}
}
