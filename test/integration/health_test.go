package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	resp := do(t, http.MethodGet, "/healthz", "", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "ok") {
		t.Errorf("body = %q, want to contain 'ok'", body)
	}
}

func TestMetricsEndpointNoAuth(t *testing.T) {
	resp := do(t, http.MethodGet, "/metrics", "", nil)
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "despesas_requests_total") {
		t.Error("metrics output missing despesas_requests_total")
	}
}

func TestRequestIDHeader(t *testing.T) {
	resp := do(t, http.MethodGet, "/healthz", "", nil)
	resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response is missing X-Request-ID")
	}
}
