// Package server exposes the driver's Prometheus metrics and a health
// endpoint over HTTP (spec §1.6), adapted from the teacher's OCR API
// server down to the two concerns a long-running hseg batch job actually
// needs: "is it alive" and "scrape me".
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds server configuration.
type Config struct {
	Addr string // e.g. "127.0.0.1:9090" (spec §1.6 MetricsConfig.Addr)
}

// Server holds the HTTP server state.
type Server struct {
	addr string
	http *http.Server
}

// NewServer creates a new metrics/health server instance.
func NewServer(config Config) *Server {
	s := &Server{addr: config.Addr}
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.loggingMiddleware(s.healthHandler))
	mux.Handle("/metrics", s.loggingMiddleware(promhttp.Handler().ServeHTTP))
}

// Start begins serving and blocks until the server stops or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close shuts the server down, releasing its listener.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
