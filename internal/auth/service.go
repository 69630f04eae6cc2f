// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/bookclub/bookclub/pkg/errutil"
)

// Grant is the payload returned on successful registration or login.
type Grant struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
	Username    string    `json:"username"`
}

// Service provides the authentication operations. It is stateless
// between calls and safe for concurrent use.
type Service struct {
	users  UserRepository
	tokens TokenRepository
	hasher PasswordHasher
	issuer *Issuer
	logger *slog.Logger
}

// NewService creates a Service with a default token issuer.
func NewService(users UserRepository, tokens TokenRepository, hasher PasswordHasher) (*Service, error) {
	issuer, err := newIssuerFor(tokens)
	if err != nil {
		return nil, err
	}
	return NewServiceWithIssuer(users, tokens, hasher, issuer)
}

// NewServiceWithLogger creates a Service that logs best-effort failures
// (such as registration rollbacks) to the given logger.
func NewServiceWithLogger(users UserRepository, tokens TokenRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("logger is required")
	}
	svc, err := NewService(users, tokens, hasher)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// NewServiceWithIssuer creates a Service with an explicit Issuer. Tests
// use this to control the clock and token values deterministically.
func NewServiceWithIssuer(users UserRepository, tokens TokenRepository, hasher PasswordHasher, issuer *Issuer) (*Service, error) {
	if users == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("token repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("token issuer is required")
	}
	return &Service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		issuer: issuer,
		logger: slog.Default(),
	}, nil
}

func newIssuerFor(tokens TokenRepository) (*Issuer, error) {
	if tokens == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("token repository is required")
	}
	return NewIssuer(tokens)
}

// validateCredentials checks the shared login/registration input rules.
// The username is checked before the password.
func validateCredentials(username, password string) error {
	if username == "" {
		return oops.Code(CodeInvalidInput).Errorf("Missing `username` in request")
	}
	if password == "" {
		return oops.Code(CodeInvalidInput).Errorf("Missing `password` in request")
	}
	return nil
}

// Register creates a user and issues their first token. Field presence
// is checked in order username, password, email. Registration never
// creates a user without also issuing a token: if issuance fails, the
// just-created user is deleted again.
func (s *Service) Register(ctx context.Context, username, password, email string) (*Grant, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("Missing `email` in request")
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil, oops.Code(CodeConflict).Errorf("User already exists")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash, email)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique constraint on username catches registrations that
		// raced past the existence check above.
		if errors.Is(err, ErrDuplicate) {
			return nil, oops.Code(CodeConflict).Errorf("User already exists")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}

	token, err := s.issuer.Issue(ctx, user.ID)
	if err != nil {
		// No partial success: drop the user so the failed registration
		// leaves nothing behind.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			errutil.LogError(s.logger, "failed to roll back user after token issuance failure", delErr)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "issue token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	return &Grant{
		UserID:      user.ID.String(),
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Username:    username,
	}, nil
}

// Login verifies the credentials and issues a new token. Previously
// issued tokens stay valid.
func (s *Service) Login(ctx context.Context, username, password string) (*Grant, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).Errorf("User does not exist")
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return nil, oops.Code(CodeUnauthorized).Errorf("Incorrect password")
	}

	token, err := s.issuer.Issue(ctx, user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	return &Grant{
		UserID:      user.ID.String(),
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Username:    username,
	}, nil
}

// GetUserByUsername returns the public projection of a user. The
// password hash is never exposed.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*Info, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).Errorf("User does not exist")
		}
		return nil, oops.Code("AUTH_GET_USER_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}
	info := user.Info()
	return &info, nil
}

// Logout deletes the token record, making the token permanently
// unobservable to verification.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return oops.Code(CodeInvalidInput).Errorf("Missing `access_token` in Logout Request")
	}

	deleted, err := s.tokens.Delete(ctx, accessToken)
	if err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete token").
			Wrap(err)
	}
	if deleted == 0 {
		return oops.Code(CodeNotFound).Errorf("Could not delete token: No such token found in database")
	}
	return nil
}

// VerifyToken checks that the (user ID, access token) pair names a live
// token. It is a guard: success carries no payload.
func (s *Service) VerifyToken(ctx context.Context, userID ulid.ULID, accessToken string) error {
	token, err := s.tokens.Get(ctx, userID, accessToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeUnauthorized).Errorf("Invalid token/user_id combination")
		}
		return oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "get token").
			Wrap(err)
	}

	if token.IsExpiredAt(s.issuer.now()) {
		return oops.Code(CodeUnauthorized).Errorf("Token expired")
	}
	return nil
}
