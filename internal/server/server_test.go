package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandlerReturnsHealthy(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1:0"})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestHealthHandlerRejectsNonGet(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1:0"})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1:0"})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hseg_server_http_requests_total")
}
