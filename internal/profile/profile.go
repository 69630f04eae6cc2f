// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package profile manages public user profiles.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/bookclub/bookclub/internal/auth"
)

// Error codes carried by oops errors from this package.
const (
	CodeNotFound = "PROFILE_NOT_FOUND"
)

// Profile is a user's public profile. One row per user, created with
// defaults at registration.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fields lists the profile fields a client may update.
func Fields() []string {
	return []string{"display_name", "bio", "avatar_url"}
}

// Repository persists profiles.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

// Service implements profile operations on top of a Repository.
type Service struct {
	profiles Repository
}

// NewService creates a profile service.
func NewService(profiles Repository) (*Service, error) {
	if profiles == nil {
		return nil, oops.Errorf("profile repository is required")
	}
	return &Service{profiles: profiles}, nil
}

// CreateDefault creates the default profile generated at registration.
// The display name starts as the username.
func (s *Service) CreateDefault(ctx context.Context, userID, username string) (*Profile, error) {
	p := &Profile{
		UserID:      userID,
		DisplayName: username,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, oops.Code("PROFILE_CREATE_FAILED").With("user_id", userID).Wrap(err)
	}
	return p, nil
}

// Get returns a user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("user_id", userID).Errorf("Profile does not exist")
		}
		return nil, oops.Code("PROFILE_GET_FAILED").With("user_id", userID).Wrap(err)
	}
	return p, nil
}

// UpdateFields applies the recognized fields from updates to the user's
// profile and returns the result. Unrecognized keys are ignored.
func (s *Service) UpdateFields(ctx context.Context, userID string, updates map[string]string) (*Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, field := range Fields() {
		value, ok := updates[field]
		if !ok {
			continue
		}
		switch field {
		case "display_name":
			p.DisplayName = value
		case "bio":
			p.Bio = value
		case "avatar_url":
			p.AvatarURL = value
		}
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("user_id", userID).Errorf("Profile does not exist")
		}
		return nil, oops.Code("PROFILE_UPDATE_FAILED").With("user_id", userID).Wrap(err)
	}
	return p, nil
}
