// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bookclub/bookclub/internal/auth"
	authpg "github.com/bookclub/bookclub/internal/auth/postgres"
	"github.com/bookclub/bookclub/internal/config"
	"github.com/bookclub/bookclub/internal/httpserver"
	"github.com/bookclub/bookclub/internal/logging"
	"github.com/bookclub/bookclub/internal/observability"
	"github.com/bookclub/bookclub/internal/profile"
	profilepg "github.com/bookclub/bookclub/internal/profile/postgres"
	"github.com/bookclub/bookclub/internal/shelf"
	shelfpg "github.com/bookclub/bookclub/internal/shelf/postgres"
	"github.com/bookclub/bookclub/internal/store"
	"github.com/bookclub/bookclub/internal/volumes"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bookclub API server",
		Long: `Start the bookclub API server. Pending database migrations are
applied before the server begins accepting requests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("server.addr", defaults.Server.Addr, "API listen address")
	cmd.Flags().String("database.url", defaults.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("metrics.addr", defaults.Metrics.Addr, "metrics/health listen address")
	cmd.Flags().Bool("metrics.enabled", defaults.Metrics.Enabled, "serve metrics and health probes")
	cmd.Flags().String("log.level", defaults.Log.Level, "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("bookclub", version, cfg.Log.Level, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("SERVE_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := migrateUp(cfg.Database.URL); err != nil {
		return err
	}
	logger.Info("database schema up to date")

	hasher, err := auth.NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	authSvc, err := auth.NewServiceWithLogger(
		authpg.NewUserRepository(pool),
		authpg.NewTokenRepository(pool),
		hasher,
		logger,
	)
	if err != nil {
		return err
	}

	profileSvc, err := profile.NewService(profilepg.NewRepository(pool))
	if err != nil {
		return err
	}

	shelfSvc, err := shelf.NewService(shelfpg.NewRepository(pool))
	if err != nil {
		return err
	}

	booksClient := volumes.NewClient(cfg.Books.BaseURL, cfg.Books.Timeout)

	// The observability server owns the metrics registry; the API router
	// records into it.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	var obsErrCh <-chan error
	if cfg.Metrics.Enabled {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.Code("SERVE_FAILED").With("operation", "start observability server").Wrap(err)
		}
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		AuthService:    authSvc,
		ProfileService: profileSvc,
		ShelfService:   shelfSvc,
		VolumesClient:  booksClient,
		Logger:         logger,
		Metrics:        metrics,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	srv := httpserver.New(cfg.Server.Addr, router, httpserver.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- srv.ListenAndServe()
	}()

	logger.Info("bookclub server started", "addr", cfg.Server.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = oops.Code("SERVE_FAILED").With("operation", "serve http").Wrap(err)
		}
	case err, ok := <-obsErrCh:
		if ok && err != nil {
			runErr = oops.Code("SERVE_FAILED").With("operation", "serve observability").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// migrateUp applies all pending migrations and releases the migrator.
func migrateUp(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}

	upErr := migrator.Up()
	if closeErr := migrator.Close(); closeErr != nil && upErr == nil {
		return closeErr
	}
	return upErr
}
