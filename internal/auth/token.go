// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Access token configuration.
const (
	// TokenLength is the length of an access token: a UUID with the
	// hyphens stripped, so 32 hexadecimal characters.
	TokenLength = 32

	// TokenTTL is how long a freshly issued token stays valid.
	TokenTTL = 14 * 24 * time.Hour
)

// Token is an opaque bearer credential bound to a user. Multiple live
// tokens per user are allowed; issuing a new one never revokes the rest.
type Token struct {
	UserID      ulid.ULID
	AccessToken string
	Expiry      time.Time
	CreatedAt   time.Time
}

// IsExpiredAt reports whether the token is expired at the given instant.
// Expiry is an exclusive upper bound: a token is invalid from the exact
// expiry instant onwards.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// NewAccessToken generates a random opaque access token. Uniqueness is
// not checked on insert; it rests on the 122 bits of UUID entropy.
func NewAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TokenRepository manages token persistence.
type TokenRepository interface {
	// Insert stores a new token and returns the stored record.
	Insert(ctx context.Context, token *Token) (*Token, error)

	// Get retrieves a token by (user ID, access token) pair. Both must
	// match. Returns an error wrapping ErrNotFound on miss.
	Get(ctx context.Context, userID ulid.ULID, accessToken string) (*Token, error)

	// Delete removes the token with the given access token value and
	// returns how many records were deleted (0 or 1).
	Delete(ctx context.Context, accessToken string) (int64, error)
}

// Issuer mints access tokens. The clock and the token generator are
// injected so tests can control time and token values.
type Issuer struct {
	tokens   TokenRepository
	now      func() time.Time
	generate func() string
}

// NewIssuer creates an Issuer using the wall clock and NewAccessToken.
func NewIssuer(tokens TokenRepository) (*Issuer, error) {
	return NewIssuerWithSource(tokens, time.Now, NewAccessToken)
}

// NewIssuerWithSource creates an Issuer with an explicit clock and token
// generator.
func NewIssuerWithSource(tokens TokenRepository, now func() time.Time, generate func() string) (*Issuer, error) {
	if tokens == nil {
		return nil, oops.Code("ISSUER_INVALID_DEPS").Errorf("token repository is required")
	}
	if now == nil {
		return nil, oops.Code("ISSUER_INVALID_DEPS").Errorf("clock is required")
	}
	if generate == nil {
		return nil, oops.Code("ISSUER_INVALID_DEPS").Errorf("token generator is required")
	}
	return &Issuer{tokens: tokens, now: now, generate: generate}, nil
}

// Issue mints a token for the user, persists it, and returns the stored
// record. Every issuance is independent: no reuse, no rotation.
func (i *Issuer) Issue(ctx context.Context, userID ulid.ULID) (*Token, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TOKEN_INVALID_USER").Errorf("user ID cannot be zero")
	}

	now := i.now()
	token := &Token{
		UserID:      userID,
		AccessToken: i.generate(),
		Expiry:      now.Add(TokenTTL),
		CreatedAt:   now,
	}

	stored, err := i.tokens.Insert(ctx, token)
	if err != nil {
		return nil, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "insert token").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return stored, nil
}
