// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package config loads server configuration from defaults, a YAML file,
// environment variables, and CLI flags, in increasing priority.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is the environment variable prefix.
// Example: BOOKCLUB_SERVER_ADDR=0.0.0.0:8080 maps to server.addr.
const EnvPrefix = "BOOKCLUB_"

// Config is the root configuration for the bookclub server.
type Config struct {
	Server   ServerSection   `koanf:"server"`
	Database DatabaseSection `koanf:"database"`
	Auth     AuthSection     `koanf:"auth"`
	Books    BooksSection    `koanf:"books"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the HTTP API server.
type ServerSection struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseSection configures the PostgreSQL connection.
type DatabaseSection struct {
	URL string `koanf:"url"`
}

// AuthSection configures credential hashing.
type AuthSection struct {
	BcryptCost int `koanf:"bcrypt_cost"`
}

// BooksSection configures the Google Books API client.
type BooksSection struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// MetricsSection configures the observability endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Server: ServerSection{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseSection{
			URL: "postgres://localhost:5432/bookclub?sslmode=disable",
		},
		Auth: AuthSection{
			BcryptCost: bcrypt.DefaultCost,
		},
		Books: BooksSection{
			BaseURL: "https://www.googleapis.com/books/v1",
			Timeout: 10 * time.Second,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Addr:    ":9090",
		},
		Log: LogSection{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. Sources are applied in order, later
// sources overriding earlier ones: defaults, YAML file (if path is
// non-empty), environment variables, CLI flags (if flags is non-nil).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	// BOOKCLUB_SERVER_READ_TIMEOUT -> server.read_timeout. Sections are
	// single words, so only the first underscore separates section from
	// key; the rest belong to snake_case key names.
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		s = strings.Replace(s, "_", ".", 1)
		return s
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would fail at runtime.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr must not be empty")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url must not be empty")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return oops.Code("CONFIG_INVALID").
			With("bcrypt_cost", c.Auth.BcryptCost).
			Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Books.BaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("books.base_url must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.Log.Level).
			Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log.format must be json or text")
	}
	return nil
}
