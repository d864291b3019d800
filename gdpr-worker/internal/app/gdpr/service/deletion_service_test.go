package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/gdpr-worker/internal/app/gdpr/repository"
	"recipehub/gdpr-worker/internal/app/gdpr/repository/mocks"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDeletionService() (*DeletionService, *mocks.MockDeletionRepository, *mocks.MockAuditRepository) {
	deletionRepo := new(mocks.MockDeletionRepository)
	auditRepo := new(mocks.MockAuditRepository)
	svc := NewDeletionService(deletionRepo, auditRepo, 7*24*time.Hour)
	svc.now = func() time.Time { return fixedNow }
	return svc, deletionRepo, auditRepo
}

func TestDeletionService_Sweep_UsesGracePeriodCutoff(t *testing.T) {
	ctx := context.Background()
	svc, deletionRepo, _ := newTestDeletionService()

	deletionRepo.On("DueForDeletion", ctx, fixedNow.Add(-7*24*time.Hour)).Return([]entity.User{}, nil)

	result, err := svc.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, &SweepResult{}, result)
	deletionRepo.AssertExpectations(t)
}

func TestDeletionService_Sweep_ContinuesAfterFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, deletionRepo, auditRepo := newTestDeletionService()
	requested := fixedNow.Add(-8 * 24 * time.Hour)
	users := []entity.User{
		{ID: 1, Username: "anna", DeletionRequestedAt: &requested},
		{ID: 2, Username: "bert", DeletionRequestedAt: &requested},
		{ID: 3, Username: "carl", DeletionRequestedAt: &requested},
	}

	deletionRepo.On("DueForDeletion", ctx, mock.Anything).Return(users, nil)
	deletionRepo.On("DeleteUser", ctx, users[0]).Return(&entity.DeletionResult{UserID: 1, RatingsDeleted: 2}, nil)
	deletionRepo.On("DeleteUser", ctx, users[1]).Return(nil, errors.New("deadlock detected"))
	deletionRepo.On("DeleteUser", ctx, users[2]).Return(&entity.DeletionResult{UserID: 3}, nil)
	auditRepo.On("Insert", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(nil)

	// Act
	result, err := svc.Sweep(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Due: 3, Deleted: 2, Failed: 1}, result)

	var actions []string
	for _, call := range auditRepo.Calls {
		entry := call.Arguments.Get(1).(*entity.AuditEntry)
		actions = append(actions, entry.Action)
		assert.NotEmpty(t, entry.ID)
	}
	assert.Equal(t, []string{
		entity.ActionDeletionExecuted,
		entity.ActionDeletionFailed,
		entity.ActionDeletionExecuted,
	}, actions)

	first := auditRepo.Calls[0].Arguments.Get(1).(*entity.AuditEntry)
	assert.Equal(t, int64(1), first.UserID)
	assert.Equal(t, int64(2), first.Details["ratings_deleted"])
	assert.Equal(t, requested, first.Details["requested_at"])
}

func TestDeletionService_Sweep_SkipsAlreadyRemoved(t *testing.T) {
	ctx := context.Background()
	svc, deletionRepo, auditRepo := newTestDeletionService()
	user := entity.User{ID: 4, Username: "gone"}

	deletionRepo.On("DueForDeletion", ctx, mock.Anything).Return([]entity.User{user}, nil)
	deletionRepo.On("DeleteUser", ctx, user).Return(nil, repository.ErrUserNotFound)

	result, err := svc.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Due: 1}, result)
	auditRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDeletionService_Sweep_AuditFailureDoesNotFailSweep(t *testing.T) {
	ctx := context.Background()
	svc, deletionRepo, auditRepo := newTestDeletionService()
	user := entity.User{ID: 1, Username: "anna"}

	deletionRepo.On("DueForDeletion", ctx, mock.Anything).Return([]entity.User{user}, nil)
	deletionRepo.On("DeleteUser", ctx, user).Return(&entity.DeletionResult{UserID: 1}, nil)
	auditRepo.On("Insert", ctx, mock.Anything).Return(errors.New("mongo down"))

	result, err := svc.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
}

func TestDeletionService_Sweep_ListError(t *testing.T) {
	ctx := context.Background()
	svc, deletionRepo, _ := newTestDeletionService()

	deletionRepo.On("DueForDeletion", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.Sweep(ctx)

	assert.Error(t, err)
	deletionRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestDeletionService_Sweep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, deletionRepo, _ := newTestDeletionService()

	deletionRepo.On("DueForDeletion", ctx, mock.Anything).Return([]entity.User{{ID: 1}, {ID: 2}}, nil)
	cancel()

	result, err := svc.Sweep(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Deleted)
	deletionRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}
