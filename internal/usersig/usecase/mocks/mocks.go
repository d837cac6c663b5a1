// Package mocks provides testify mock implementations of the usersig use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// MockUserSigUseCase is a mock implementation of UserSigUseCase.
type MockUserSigUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of UserSigUseCase.
func (m *MockUserSigUseCase) Issue(
	ctx context.Context,
	input *usersigDomain.IssueUserSigInput,
) (*usersigDomain.IssueUserSigOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usersigDomain.IssueUserSigOutput), args.Error(1)
}

// IssueAgent mocks the IssueAgent method of UserSigUseCase.
func (m *MockUserSigUseCase) IssueAgent(
	ctx context.Context,
	requestID string,
	expire time.Duration,
) (*usersigDomain.IssueUserSigOutput, error) {
	args := m.Called(ctx, requestID, expire)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usersigDomain.IssueUserSigOutput), args.Error(1)
}

// Verify mocks the Verify method of UserSigUseCase.
func (m *MockUserSigUseCase) Verify(
	ctx context.Context,
	token string,
) (*usersigDomain.VerifyUserSigOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usersigDomain.VerifyUserSigOutput), args.Error(1)
}

// HealthCheck mocks the HealthCheck method of UserSigUseCase.
func (m *MockUserSigUseCase) HealthCheck(ctx context.Context) (*usersigDomain.HealthReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usersigDomain.HealthReport), args.Error(1)
}

// ListIssuances mocks the ListIssuances method of UserSigUseCase.
func (m *MockUserSigUseCase) ListIssuances(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*usersigDomain.Issuance), args.Error(1)
}

// CleanIssuances mocks the CleanIssuances method of UserSigUseCase.
func (m *MockUserSigUseCase) CleanIssuances(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockIssuanceRepository is a mock implementation of IssuanceRepository.
type MockIssuanceRepository struct {
	mock.Mock
}

// Create mocks the Create method of IssuanceRepository.
func (m *MockIssuanceRepository) Create(ctx context.Context, issuance *usersigDomain.Issuance) error {
	args := m.Called(ctx, issuance)
	return args.Error(0)
}

// List mocks the List method of IssuanceRepository.
func (m *MockIssuanceRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*usersigDomain.Issuance), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of IssuanceRepository.
func (m *MockIssuanceRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
