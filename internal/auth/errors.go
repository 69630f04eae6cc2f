// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package auth

import "errors"

// Domain error codes. Transports map these to protocol status codes
// (see handler.StatusForError); any other code is an internal failure.
const (
	// CodeInvalidInput marks a missing or empty required field.
	CodeInvalidInput = "AUTH_INVALID_INPUT"

	// CodeUnauthorized marks a bad password, bad token, or expired token.
	CodeUnauthorized = "AUTH_UNAUTHORIZED"

	// CodeNotFound marks an unknown user or token.
	CodeNotFound = "AUTH_NOT_FOUND"

	// CodeConflict marks a duplicate username.
	CodeConflict = "AUTH_CONFLICT"
)

// ErrNotFound is returned by repositories when a requested record does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by repositories when an insert violates a
// uniqueness constraint. The users table enforces username uniqueness,
// which closes the check-then-insert race under concurrent registration.
var ErrDuplicate = errors.New("duplicate")
