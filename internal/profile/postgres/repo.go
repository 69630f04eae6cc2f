// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package postgres implements the profile repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/bookclub/bookclub/internal/auth"
	"github.com/bookclub/bookclub/internal/profile"
)

// poolIface is the subset of *pgxpool.Pool the repository uses.
// pgxmock satisfies it too, so repository tests need no live database.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements profile.Repository using PostgreSQL.
type Repository struct {
	pool poolIface
}

// NewRepository creates a new profile Repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new profile row. UpdatedAt is set server-side.
func (r *Repository) Create(ctx context.Context, p *profile.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, display_name, bio, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, now())
	`,
		p.UserID,
		p.DisplayName,
		p.Bio,
		p.AvatarURL,
	)
	if err != nil {
		return oops.Code("PROFILE_CREATE_FAILED").
			With("operation", "insert profile").
			With("user_id", p.UserID).
			Wrap(err)
	}
	return nil
}

// Get retrieves a profile by user ID.
func (r *Repository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, display_name, bio, avatar_url, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)

	var (
		p         profile.Profile
		updatedAt time.Time
	)
	err := row.Scan(&p.UserID, &p.DisplayName, &p.Bio, &p.AvatarURL, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_MISSING").
			With("user_id", userID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("operation", "get profile").
			With("user_id", userID).
			Wrap(err)
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

// Update replaces the mutable fields of a profile row.
func (r *Repository) Update(ctx context.Context, p *profile.Profile) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET display_name = $2, bio = $3, avatar_url = $4, updated_at = now()
		WHERE user_id = $1
	`,
		p.UserID,
		p.DisplayName,
		p.Bio,
		p.AvatarURL,
	)
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").
			With("operation", "update profile").
			With("user_id", p.UserID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROFILE_MISSING").
			With("user_id", p.UserID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ profile.Repository = (*Repository)(nil)
