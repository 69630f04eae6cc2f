// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SourceBookclub tags users registered through this application.
const SourceBookclub = "bookclub"

// User represents a registered account. Created once at registration;
// this core never updates it afterwards.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Email        string
	Source       string
	CreatedAt    time.Time
}

// NewUser creates a validated User with a fresh ID. The password hash
// must already be produced by a PasswordHasher; NewUser never sees the
// plaintext.
func NewUser(username, passwordHash, email string) (*User, error) {
	if username == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("Missing `username` in request")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if email == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("Missing `email` in request")
	}

	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Source:       SourceBookclub,
		CreatedAt:    time.Now(),
	}, nil
}

// Info is the public projection of a User. It never carries the
// password hash.
type Info struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
}

// Info returns the public projection of the user.
func (u *User) Info() Info {
	return Info{Username: u.Username, UserID: u.ID.String()}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns an error wrapping ErrDuplicate
	// if the username is already taken.
	Create(ctx context.Context, user *User) error

	// GetByUsername retrieves a user by username. Returns an error
	// wrapping ErrNotFound if no user matches.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Delete removes a user. Used to roll back a registration whose
	// token issuance failed.
	Delete(ctx context.Context, id ulid.ULID) error
}
