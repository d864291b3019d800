package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
)

type MockDeletionRepository struct {
	mock.Mock
}

func (m *MockDeletionRepository) DueForDeletion(ctx context.Context, cutoff time.Time) ([]entity.User, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockDeletionRepository) DeleteUser(ctx context.Context, user entity.User) (*entity.DeletionResult, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeletionResult), args.Error(1)
}

func (m *MockDeletionRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, entry *entity.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
