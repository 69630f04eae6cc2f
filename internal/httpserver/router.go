// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/bookclub/bookclub/internal/auth"
	"github.com/bookclub/bookclub/internal/httpserver/handler"
	"github.com/bookclub/bookclub/internal/observability"
	"github.com/bookclub/bookclub/internal/profile"
	"github.com/bookclub/bookclub/internal/shelf"
	"github.com/bookclub/bookclub/internal/volumes"
)

// RouterConfig holds the services and settings for the API router.
type RouterConfig struct {
	AuthService    *auth.Service
	ProfileService *profile.Service
	ShelfService   *shelf.Service
	VolumesClient  *volumes.Client

	Logger *slog.Logger

	// Metrics records request counters; optional.
	Metrics *observability.Metrics

	// CORSOrigins is the list of allowed origins. Empty or "*" allows
	// all.
	CORSOrigins []string
}

// NewRouter builds the API handler with the full middleware chain:
// Recover -> CORS -> RequestID -> RequestLog -> routes.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(handler.Config{
		Auth:     cfg.AuthService,
		Profiles: cfg.ProfileService,
		Shelves:  cfg.ShelfService,
		Volumes:  cfg.VolumesClient,
		Logger:   logger,
		Metrics:  cfg.Metrics,
	})

	return Chain(h,
		Recover(logger),
		CORS(cfg.CORSOrigins),
		RequestID(),
		RequestLog(logger, cfg.Metrics),
	)
}
