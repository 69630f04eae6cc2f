// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package handler provides the HTTP request handlers for the bookclub
// API. Errors are written as plain-text bodies with the status the
// error code maps to, which is the contract the original API clients
// expect.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/bookclub/bookclub/internal/auth"
	"github.com/bookclub/bookclub/internal/observability"
	"github.com/bookclub/bookclub/internal/profile"
	"github.com/bookclub/bookclub/internal/shelf"
	"github.com/bookclub/bookclub/internal/volumes"
	"github.com/bookclub/bookclub/pkg/errutil"
)

// missingAuthHeader is the body returned when a guarded route is called
// without an Authorization header.
const missingAuthHeader = "Missing Authorization header in request to protected endpoint"

// Handler routes bookclub API requests to the domain services.
type Handler struct {
	auth     *auth.Service
	profiles *profile.Service
	shelves  *shelf.Service
	volumes  *volumes.Client
	logger   *slog.Logger
	metrics  *observability.Metrics
	mux      *http.ServeMux
}

// Config holds the services the handler dispatches to. Metrics is
// optional.
type Config struct {
	Auth     *auth.Service
	Profiles *profile.Service
	Shelves  *shelf.Service
	Volumes  *volumes.Client
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// New creates a Handler with all routes registered.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		auth:     cfg.Auth,
		profiles: cfg.Profiles,
		shelves:  cfg.Shelves,
		volumes:  cfg.Volumes,
		logger:   logger,
		metrics:  cfg.Metrics,
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	// Health endpoints (no auth required)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Volume proxy endpoints
	h.mux.HandleFunc("GET /api/v1/volumes", h.handleSearchVolumes)
	h.mux.HandleFunc("GET /api/v1/volumes/{volume_id}", h.handleGetVolume)
	h.mux.HandleFunc("GET /api/v1/nyt-top-ten", h.handleTopTen)

	// Auth endpoints
	h.mux.HandleFunc("POST /api/v1/register", h.handleRegister)
	h.mux.HandleFunc("POST /api/v1/login", h.handleLogin)
	h.mux.HandleFunc("POST /api/v1/deactivate", h.handleDeactivate)
	h.mux.HandleFunc("GET /api/v1/user/{username}", h.handleGetUser)

	// User-scoped endpoints. ServeMux panics on overlapping wildcard
	// patterns where neither is more specific, so the GET routes share
	// one pattern and dispatch on the trailing segment; the literal
	// volumes and user prefixes above stay strictly more specific and
	// keep precedence.
	h.mux.HandleFunc("GET /api/v1/{user_id}/{resource}", h.handleUserScoped)
	h.mux.HandleFunc("PATCH /api/v1/{user_id}/shelves/exclusive", h.protected(h.handleModifyShelves))
	h.mux.HandleFunc("PATCH /api/v1/{user_id}/profile", h.protected(h.handleUpdateProfile))
}

// handleUserScoped routes the GET /api/v1/{user_id}/... family.
func (h *Handler) handleUserScoped(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("resource") {
	case "protected_endpoint":
		h.protected(h.handleProtectedDemo)(w, r)
	case "shelves":
		h.handleGetShelves(w, r)
	case "profile":
		h.handleGetProfile(w, r)
	default:
		http.NotFound(w, r)
	}
}

// protected wraps a handler with the bearer-token guard. The user_id
// path segment names the token's owner.
func (h *Handler) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			h.writeText(w, http.StatusBadRequest, missingAuthHeader)
			return
		}

		accessToken := strings.TrimPrefix(header, "Bearer ")

		// A user_id that is not a ULID can never own a token, so it
		// gets the same answer as a token/owner mismatch.
		userID, err := ulid.Parse(r.PathValue("user_id"))
		if err != nil {
			if h.metrics != nil {
				h.metrics.AuthFailuresTotal.WithLabelValues(auth.CodeUnauthorized).Inc()
			}
			h.writeText(w, http.StatusUnauthorized, "Invalid token/user_id combination")
			return
		}

		if err := h.auth.VerifyToken(r.Context(), userID, accessToken); err != nil {
			if h.metrics != nil {
				h.metrics.AuthFailuresTotal.WithLabelValues(errutil.Code(err)).Inc()
			}
			h.writeServiceError(w, err)
			return
		}

		next(w, r)
	}
}

// writeJSON writes data as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeText writes a plain-text response.
func (h *Handler) writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // nothing useful to do when the client is gone
	w.Write([]byte(body))
}

// writeServiceError maps a service error to its HTTP status and writes
// the error message as the body. Internal errors are logged and hidden
// behind a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		errutil.LogError(h.logger, "internal error", err)
		h.writeText(w, status, "internal server error")
		return
	}
	h.writeText(w, status, err.Error())
}

// StatusForError maps domain error codes to HTTP statuses. Anything
// unrecognized is an internal error.
func StatusForError(err error) int {
	switch errutil.Code(err) {
	case auth.CodeInvalidInput, shelf.CodeInvalidInput, volumes.CodeInvalidInput:
		return http.StatusBadRequest
	case auth.CodeUnauthorized:
		return http.StatusUnauthorized
	case auth.CodeNotFound, profile.CodeNotFound, shelf.CodeNotFound:
		return http.StatusNotFound
	case auth.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
