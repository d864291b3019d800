package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipehub/auth-service/internal/app/auth/config"
	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/auth-service/internal/app/auth/repository"
	"recipehub/auth-service/internal/app/auth/repository/mocks"
	"recipehub/auth-service/internal/app/auth/util"
)

const testPassword = "Geheim123"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type authDeps struct {
	users     *mocks.MockUserRepository
	activity  *mocks.MockActivityRepository
	blacklist *mocks.MockTokenBlacklist
	publisher *mocks.MockMessagePublisher
	jwt       *util.JWTManager
}

func newTestAuthService() (*AuthService, *authDeps) {
	deps := &authDeps{
		users:     new(mocks.MockUserRepository),
		activity:  new(mocks.MockActivityRepository),
		blacklist: new(mocks.MockTokenBlacklist),
		publisher: new(mocks.MockMessagePublisher),
		jwt:       util.NewJWTManager("test-secret-key", 30*time.Minute),
	}
	svc := NewAuthService(deps.users, deps.blacklist, deps.publisher, deps.jwt, config.LockoutConfig{
		MaxAttempts: 5,
		Duration:    15 * time.Minute,
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, deps
}

var testHash = func() string {
	hash, err := util.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return hash
}()

func newTestUser() *entity.User {
	return &entity.User{
		ID:                    7,
		Username:              "anna",
		Email:                 "anna@example.com",
		FirstName:             "Anna",
		LastName:              "Schmidt",
		PasswordHash:          testHash,
		IsActive:              true,
		DataProcessingConsent: true,
		CreatedAt:             fixedNow.Add(-24 * time.Hour),
	}
}

func decodeEvent(t *testing.T, raw []byte) entity.UserEvent {
	t.Helper()
	var event entity.UserEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

// ==================== Register ====================

func validRegisterRequest() *entity.RegisterRequest {
	return &entity.RegisterRequest{
		Username:         "anna",
		Email:            " Anna@Example.com ",
		FirstName:        "Anna",
		LastName:         "Schmidt",
		Password:         testPassword,
		ConsentMarketing: true,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*entity.User)
			u.ID = 7
			u.CreatedAt = fixedNow
		}).
		Return(nil)
	deps.publisher.On("PublishMessage", ctx, "7", mock.Anything).Return(nil)

	// Act
	profile, err := svc.Register(ctx, validRegisterRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, "anna@example.com", profile.Email)
	assert.True(t, profile.IsActive)

	created := deps.users.Calls[0].Arguments.Get(1).(*entity.User)
	assert.NotEqual(t, testPassword, created.PasswordHash)
	assert.True(t, util.CheckPassword(testPassword, created.PasswordHash))
	assert.True(t, created.ConsentMarketing)
	assert.False(t, created.ConsentAnalytics)
	assert.True(t, created.DataProcessingConsent, "data processing consent defaults to true")

	event := decodeEvent(t, deps.publisher.Calls[0].Arguments.Get(2).([]byte))
	assert.Equal(t, entity.EventUserRegistered, event.EventType)
	assert.Equal(t, int64(7), event.UserID)
	require.NotNil(t, event.Consents)
	assert.True(t, event.Consents.Marketing)
	assert.True(t, event.Consents.DataProcessing)
	assert.NotEmpty(t, event.EventID)
}

func TestAuthService_Register_ExplicitDataProcessingOptOut(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	deps.publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	req := validRegisterRequest()
	optOut := false
	req.DataProcessingConsent = &optOut

	_, err := svc.Register(ctx, req)

	require.NoError(t, err)
	created := deps.users.Calls[0].Arguments.Get(1).(*entity.User)
	assert.False(t, created.DataProcessingConsent)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, deps := newTestAuthService()

	req := validRegisterRequest()
	req.Password = "alllowercase1"

	_, err := svc.Register(context.Background(), req)

	assert.ErrorIs(t, err, ErrWeakPassword)
	deps.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    error
	}{
		{"username", repository.ErrUsernameTaken, ErrUsernameTaken},
		{"email", repository.ErrEmailTaken, ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, deps := newTestAuthService()
			deps.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(tt.repoErr)

			_, err := svc.Register(ctx, validRegisterRequest())

			assert.ErrorIs(t, err, tt.want)
			deps.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_PublishFailureIgnored(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	deps.publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := svc.Register(ctx, validRegisterRequest())

	assert.NoError(t, err)
}

// ==================== Login ====================

func TestAuthService_Login_ByUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()
	user.FailedLoginAttempts = 3

	deps.users.On("GetByUsername", ctx, "anna").Return(user, nil)
	deps.users.On("RecordLogin", ctx, int64(7), fixedNow).Return(nil)

	// Act
	resp, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: testPassword})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(1800), resp.ExpiresIn)
	assert.Equal(t, "anna", resp.User.Username)

	claims, err := deps.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "anna", claims.Username)
	deps.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	deps.users.AssertExpectations(t)
}

func TestAuthService_Login_FallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()

	deps.users.On("GetByUsername", ctx, "anna@example.com").Return(nil, repository.ErrUserNotFound)
	deps.users.On("GetByEmail", ctx, "anna@example.com").Return(user, nil)
	deps.users.On("RecordLogin", ctx, int64(7), fixedNow).Return(nil)

	resp, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna@example.com", Password: testPassword})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound)
	deps.users.On("GetByEmail", ctx, "ghost").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, &entity.LoginRequest{Username: "ghost", Password: testPassword})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_StoreError(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("GetByUsername", ctx, "anna").Return(nil, errors.New("connection refused"))

	_, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: testPassword})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_WrongPasswordCountsAttempt(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()

	deps.users.On("GetByUsername", ctx, "anna").Return(user, nil)
	deps.users.On("RegisterFailedLogin", ctx, int64(7), 5, fixedNow.Add(15*time.Minute)).Return(1, nil)

	_, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: "Wrong1234"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	deps.users.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything)
	deps.users.AssertExpectations(t)
}

func TestAuthService_Login_FifthFailureLocksThenRejects(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()
	user.FailedLoginAttempts = 4

	deps.users.On("GetByUsername", ctx, "anna").Return(user, nil).Once()
	deps.users.On("RegisterFailedLogin", ctx, int64(7), 5, fixedNow.Add(15*time.Minute)).Return(5, nil)

	_, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: "Wrong1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "the locking attempt itself still reports bad credentials")

	locked := newTestUser()
	lockedUntil := fixedNow.Add(15 * time.Minute)
	locked.FailedLoginAttempts = 5
	locked.LockedUntil = &lockedUntil
	deps.users.On("GetByUsername", ctx, "anna").Return(locked, nil).Once()

	_, err = svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: testPassword})
	assert.ErrorIs(t, err, ErrAccountLocked, "even the right password is refused while locked")
	deps.users.AssertNumberOfCalls(t, "RegisterFailedLogin", 1)
}

func TestAuthService_Login_ExpiredLockAllowsLogin(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()
	expired := fixedNow.Add(-time.Minute)
	user.LockedUntil = &expired
	user.FailedLoginAttempts = 5

	deps.users.On("GetByUsername", ctx, "anna").Return(user, nil)
	deps.users.On("RecordLogin", ctx, int64(7), fixedNow).Return(nil)

	resp, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: testPassword})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()
	user := newTestUser()
	user.IsActive = false

	deps.users.On("GetByUsername", ctx, "anna").Return(user, nil)

	_, err := svc.Login(ctx, &entity.LoginRequest{Username: "anna", Password: testPassword})

	assert.ErrorIs(t, err, ErrAccountInactive)
	deps.users.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything)
}

// ==================== Tokens ====================

func TestAuthService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	token, issued, err := deps.jwt.GenerateAccessToken(7, "anna", "anna@example.com")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		deps.blacklist.On("IsRevoked", ctx, issued.ID).Return(false, nil).Once()

		claims, err := svc.ValidateToken(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
	})

	t.Run("revoked", func(t *testing.T) {
		deps.blacklist.On("IsRevoked", ctx, issued.ID).Return(true, nil).Once()

		_, err := svc.ValidateToken(ctx, token)

		assert.ErrorIs(t, err, ErrTokenBlacklisted)
	})

	t.Run("blacklist unavailable", func(t *testing.T) {
		deps.blacklist.On("IsRevoked", ctx, issued.ID).Return(false, errors.New("redis down")).Once()

		_, err := svc.ValidateToken(ctx, token)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "garbage")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_Logout_RevokesUntilExpiry(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	_, claims, err := deps.jwt.GenerateAccessToken(7, "anna", "anna@example.com")
	require.NoError(t, err)
	deps.blacklist.On("Revoke", ctx, claims.ID, claims.ExpiresAt.Time).Return(nil)

	require.NoError(t, svc.Logout(ctx, claims))
	deps.blacklist.AssertExpectations(t)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestAuthService()

	deps.users.On("GetByID", ctx, int64(7)).Return(newTestUser(), nil)
	deps.users.On("GetByID", ctx, int64(8)).Return(nil, repository.ErrUserNotFound)

	profile, err := svc.Me(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "anna", profile.Username)

	_, err = svc.Me(ctx, 8)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
