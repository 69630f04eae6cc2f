// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package mocks provides testify mocks for the profile repository.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bookclub/bookclub/internal/profile"
)

// testingT is the subset of *testing.T the mocks need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockRepository is a testify mock of profile.Repository.
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

func (m *MockRepository) Create(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// Compile-time interface check.
var _ profile.Repository = (*MockRepository)(nil)
