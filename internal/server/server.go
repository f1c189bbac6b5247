// Package server contains the HTTP API for batch submission and status queries.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"regdoc/internal/config"
)

// Server is the HTTP server for the batch API.
type Server struct {
	httpServer *http.Server
}

// New creates the server and wires routes and middleware.
func New(addr string, h *Handlers, cfg *config.Config, metricsHandler http.Handler, log *slog.Logger) *Server {
	mux := http.NewServeMux()

	uploadHandler := http.Handler(http.HandlerFunc(h.UploadBatch))
	if cfg.RateLimit > 0 {
		uploadHandler = RateLimitMiddleware(cfg.RateLimit, cfg.RateLimitBurst)(uploadHandler)
	}
	mux.Handle("POST /batch/upload", uploadHandler)

	mux.HandleFunc("GET /status/{job_id}", h.GetStatus)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /healthz", h.Healthz)

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	handler := RequestIDMiddleware(log)(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     handler,
			ReadTimeout: 60 * time.Second,
			// Long write timeout: uploads of many files are parsed
			// synchronously before the job id is returned.
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
