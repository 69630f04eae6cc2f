// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package auth provides the credential and session core for Bookclub.
//
// # Domain Types
//
// Domain types (User, Token) should be created using their constructors:
//   - NewUser - creates a User with validated username, email, and hash
//   - Issuer.Issue - mints and persists a Token for a user
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service orchestrates registration, login, logout, and token verification
// against the UserRepository and TokenRepository adapters. It holds no
// state of its own; every call is a fresh round trip to the adapters, so
// instances are safe for concurrent use.
//
// All failures carry a samber/oops code. The four domain codes
// (CodeInvalidInput, CodeUnauthorized, CodeNotFound, CodeConflict) signal
// caller mistakes or authentic rejections; any other code is an internal
// failure and must not be presented as a domain rejection.
package auth
