// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/bookclub/bookclub/internal/auth"
)

// TokenRepository implements auth.TokenRepository using PostgreSQL.
type TokenRepository struct {
	pool poolIface
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool poolIface) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Insert stores a new token and returns the stored record.
func (r *TokenRepository) Insert(ctx context.Context, token *auth.Token) (*auth.Token, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tokens (access_token, user_id, expiry, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		token.AccessToken,
		token.UserID.String(),
		token.Expiry,
		token.CreatedAt,
	)
	if err != nil {
		return nil, oops.Code("TOKEN_INSERT_FAILED").
			With("operation", "insert token").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}
	return token, nil
}

// Get retrieves a token by (user ID, access token) pair.
func (r *TokenRepository) Get(ctx context.Context, userID ulid.ULID, accessToken string) (*auth.Token, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT access_token, user_id, expiry, created_at
		FROM tokens
		WHERE user_id = $1 AND access_token = $2
	`, userID.String(), accessToken)

	var (
		tokenStr  string
		userIDStr string
		expiry    time.Time
		createdAt time.Time
	)
	err := row.Scan(&tokenStr, &userIDStr, &expiry, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_FAILED").
			With("operation", "get token").
			With("user_id", userID.String()).
			Wrap(err)
	}

	id, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID_USER_ID").
			With("operation", "parse token user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &auth.Token{
		UserID:      id,
		AccessToken: tokenStr,
		Expiry:      expiry,
		CreatedAt:   createdAt,
	}, nil
}

// Delete removes the token with the given access token value and returns
// the number of records deleted.
func (r *TokenRepository) Delete(ctx context.Context, accessToken string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tokens WHERE access_token = $1
	`, accessToken)
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete token").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.TokenRepository = (*TokenRepository)(nil)
