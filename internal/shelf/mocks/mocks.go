// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package mocks provides testify mocks for the shelf repository.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bookclub/bookclub/internal/shelf"
)

// testingT is the subset of *testing.T the mocks need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockRepository is a testify mock of shelf.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a mock that asserts its expectations at the
// end of the test.
func NewMockRepository(t testingT) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Upsert(ctx context.Context, e *shelf.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, userID, volumeID string) (*shelf.Entry, error) {
	args := m.Called(ctx, userID, volumeID)
	if e := args.Get(0); e != nil {
		return e.(*shelf.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID, volumeID string) (int64, error) {
	args := m.Called(ctx, userID, volumeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]shelf.Entry, error) {
	args := m.Called(ctx, userID)
	if entries := args.Get(0); entries != nil {
		return entries.([]shelf.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

// Compile-time interface check.
var _ shelf.Repository = (*MockRepository)(nil)
