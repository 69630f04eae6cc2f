// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package httpserver provides the public HTTP API server.
//
// It uses the Go standard library net/http for routing, with a small
// middleware chain for CORS, request IDs, panic recovery, and request
// logging.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with the timeouts the API uses.
type Server struct {
	httpServer *http.Server
}

// Options configure the HTTP server.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New creates a new HTTP server for the given handler.
func New(addr string, handler http.Handler, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe() //nolint:wrapcheck // callers handle ErrServerClosed directly
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx) //nolint:wrapcheck // context deadline error is clear as-is
}
