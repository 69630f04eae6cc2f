// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package postgres implements the shelf repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/bookclub/bookclub/internal/auth"
	"github.com/bookclub/bookclub/internal/shelf"
)

// poolIface is the subset of *pgxpool.Pool the repository uses.
// pgxmock satisfies it too, so repository tests need no live database.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements shelf.Repository using PostgreSQL.
type Repository struct {
	pool poolIface
}

// NewRepository creates a new shelf Repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or replaces a shelf entry. The (user_id, volume_id)
// primary key makes the exclusive-shelf semantics a single statement.
func (r *Repository) Upsert(ctx context.Context, e *shelf.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shelf_entries (user_id, volume_id, shelf, completed, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, volume_id)
		DO UPDATE SET shelf = EXCLUDED.shelf, completed = EXCLUDED.completed, updated_at = now()
	`,
		e.UserID,
		e.VolumeID,
		e.Shelf,
		e.Completed,
	)
	if err != nil {
		return oops.Code("SHELF_UPSERT_FAILED").
			With("operation", "upsert shelf entry").
			With("user_id", e.UserID).
			With("volume_id", e.VolumeID).
			Wrap(err)
	}
	return nil
}

// Get retrieves the entry for one of a user's volumes.
func (r *Repository) Get(ctx context.Context, userID, volumeID string) (*shelf.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, volume_id, shelf, completed, updated_at
		FROM shelf_entries
		WHERE user_id = $1 AND volume_id = $2
	`, userID, volumeID)

	var e shelf.Entry
	err := row.Scan(&e.UserID, &e.VolumeID, &e.Shelf, &e.Completed, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SHELF_ENTRY_MISSING").
			With("user_id", userID).
			With("volume_id", volumeID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SHELF_GET_FAILED").
			With("operation", "get shelf entry").
			With("user_id", userID).
			Wrap(err)
	}
	return &e, nil
}

// Delete removes a user's entry for a volume, returning the number of
// rows deleted.
func (r *Repository) Delete(ctx context.Context, userID, volumeID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM shelf_entries WHERE user_id = $1 AND volume_id = $2
	`, userID, volumeID)
	if err != nil {
		return 0, oops.Code("SHELF_DELETE_FAILED").
			With("operation", "delete shelf entry").
			With("user_id", userID).
			With("volume_id", volumeID).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// ListByUser returns all of a user's entries ordered by update time.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]shelf.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, volume_id, shelf, completed, updated_at
		FROM shelf_entries
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, oops.Code("SHELF_LIST_FAILED").
			With("operation", "list shelf entries").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	var entries []shelf.Entry
	for rows.Next() {
		var e shelf.Entry
		if err := rows.Scan(&e.UserID, &e.VolumeID, &e.Shelf, &e.Completed, &e.UpdatedAt); err != nil {
			return nil, oops.Code("SHELF_SCAN_FAILED").
				With("operation", "scan shelf entry").
				Wrap(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SHELF_LIST_FAILED").
			With("operation", "iterate shelf entries").
			Wrap(err)
	}
	return entries, nil
}

// Compile-time interface check.
var _ shelf.Repository = (*Repository)(nil)
