// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package mocks provides testify mocks for the auth adapter interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/bookclub/bookclub/internal/auth"
)

// testingT is the subset of *testing.T the mocks need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a testify mock of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock that asserts its expectations at
// the end of the test.
func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenRepository is a testify mock of auth.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a mock that asserts its expectations at
// the end of the test.
func NewMockTokenRepository(t testingT) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenRepository) Insert(ctx context.Context, token *auth.Token) (*auth.Token, error) {
	args := m.Called(ctx, token)
	if rf, ok := args.Get(0).(func(context.Context, *auth.Token) (*auth.Token, error)); ok {
		return rf(ctx, token)
	}
	if stored := args.Get(0); stored != nil {
		return stored.(*auth.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) Get(ctx context.Context, userID ulid.ULID, accessToken string) (*auth.Token, error) {
	args := m.Called(ctx, userID, accessToken)
	if token := args.Get(0); token != nil {
		return token.(*auth.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, accessToken string) (int64, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a testify mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations at
// the end of the test.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository  = (*MockUserRepository)(nil)
	_ auth.TokenRepository = (*MockTokenRepository)(nil)
	_ auth.PasswordHasher  = (*MockPasswordHasher)(nil)
)
