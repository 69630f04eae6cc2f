// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package shelf manages per-user book shelves. The three shelves are
// exclusive: a volume lives on at most one of them at a time.
package shelf

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/bookclub/bookclub/internal/auth"
)

// Error codes carried by oops errors from this package.
const (
	CodeInvalidInput = "SHELF_INVALID_INPUT"
	CodeNotFound     = "SHELF_NOT_FOUND"
)

// Exclusive shelf names.
const (
	ShelfToRead  = "to-read"
	ShelfReading = "reading"
	ShelfRead    = "read"
)

// Operations accepted by ModifyExclusive.
const (
	OpAdd    = "add"
	OpMove   = "move"
	OpRemove = "remove"
)

// Entry records one volume on one shelf.
type Entry struct {
	UserID    string    `json:"user_id"`
	VolumeID  string    `json:"volume_id"`
	Shelf     string    `json:"shelf"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserShelf groups a user's entries by shelf.
type UserShelf struct {
	ToRead  []Entry `json:"to-read"`
	Reading []Entry `json:"reading"`
	Read    []Entry `json:"read"`
}

// Repository persists shelf entries. The (user_id, volume_id) primary
// key is what makes the shelves exclusive: Upsert on a shelved volume
// replaces its shelf instead of adding a second row.
type Repository interface {
	Upsert(ctx context.Context, e *Entry) error
	Get(ctx context.Context, userID, volumeID string) (*Entry, error)
	Delete(ctx context.Context, userID, volumeID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
}

// Service implements shelf operations on top of a Repository.
type Service struct {
	entries Repository
	now     func() time.Time
}

// NewService creates a shelf service.
func NewService(entries Repository) (*Service, error) {
	if entries == nil {
		return nil, oops.Errorf("shelf repository is required")
	}
	return &Service{entries: entries, now: time.Now}, nil
}

// ValidShelf reports whether name is one of the exclusive shelves.
func ValidShelf(name string) bool {
	switch name {
	case ShelfToRead, ShelfReading, ShelfRead:
		return true
	}
	return false
}

// GetUserShelf returns all of a user's entries grouped by shelf.
func (s *Service) GetUserShelf(ctx context.Context, userID string) (*UserShelf, error) {
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("SHELF_LIST_FAILED").With("user_id", userID).Wrap(err)
	}

	us := &UserShelf{
		ToRead:  []Entry{},
		Reading: []Entry{},
		Read:    []Entry{},
	}
	for _, e := range entries {
		switch e.Shelf {
		case ShelfToRead:
			us.ToRead = append(us.ToRead, e)
		case ShelfReading:
			us.Reading = append(us.Reading, e)
		case ShelfRead:
			us.Read = append(us.Read, e)
		}
	}
	return us, nil
}

// ModifyExclusive applies one shelf operation for a user.
//
// op "add" places the volume on toShelf. op "move" requires the volume
// to already be shelved and relocates it to toShelf. op "remove" takes
// the volume off whatever shelf it is on. setCompleted, when non-nil,
// updates the completed flag for add and move.
func (s *Service) ModifyExclusive(ctx context.Context, userID, op, volumeID, toShelf string, setCompleted *bool) (*Entry, error) {
	if volumeID == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("Missing `volume_id` in request")
	}

	switch op {
	case OpAdd, OpMove:
		if !ValidShelf(toShelf) {
			return nil, oops.Code(CodeInvalidInput).
				With("to_shelf", toShelf).
				Errorf("Invalid shelf `%s`", toShelf)
		}
	case OpRemove:
	default:
		return nil, oops.Code(CodeInvalidInput).
			With("op", op).
			Errorf("Invalid shelf operation `%s`", op)
	}

	switch op {
	case OpAdd:
		entry := &Entry{
			UserID:    userID,
			VolumeID:  volumeID,
			Shelf:     toShelf,
			UpdatedAt: s.now(),
		}
		if setCompleted != nil {
			entry.Completed = *setCompleted
		}
		if err := s.entries.Upsert(ctx, entry); err != nil {
			return nil, oops.Code("SHELF_UPSERT_FAILED").With("user_id", userID).Wrap(err)
		}
		return entry, nil

	case OpMove:
		existing, err := s.entries.Get(ctx, userID, volumeID)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				return nil, oops.Code(CodeNotFound).
					With("volume_id", volumeID).
					Errorf("Volume not found on any shelf")
			}
			return nil, oops.Code("SHELF_GET_FAILED").With("user_id", userID).Wrap(err)
		}
		existing.Shelf = toShelf
		existing.UpdatedAt = s.now()
		if setCompleted != nil {
			existing.Completed = *setCompleted
		}
		if err := s.entries.Upsert(ctx, existing); err != nil {
			return nil, oops.Code("SHELF_UPSERT_FAILED").With("user_id", userID).Wrap(err)
		}
		return existing, nil

	default: // OpRemove
		deleted, err := s.entries.Delete(ctx, userID, volumeID)
		if err != nil {
			return nil, oops.Code("SHELF_DELETE_FAILED").With("user_id", userID).Wrap(err)
		}
		if deleted == 0 {
			return nil, oops.Code(CodeNotFound).
				With("volume_id", volumeID).
				Errorf("Volume not found on any shelf")
		}
		return nil, nil
	}
}
