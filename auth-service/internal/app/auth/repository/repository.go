package repository

import (
	"context"
	"errors"
	"time"

	"recipehub/auth-service/internal/app/auth/entity"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

type UserRepository interface {
	// Create inserts the user and fills ID and CreatedAt
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// RegisterFailedLogin increments the failure counter in one statement and
	// sets locked_until once the counter reaches maxAttempts. Returns the new count.
	RegisterFailedLogin(ctx context.Context, id int64, maxAttempts int, lockUntil time.Time) (int, error)
	// RecordLogin resets the failure counter, clears the lock and sets last_login
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	MarkExportRequested(ctx context.Context, id int64, at time.Time) error
	// RequestDeletion deactivates the account and starts the grace period
	RequestDeletion(ctx context.Context, id int64, at time.Time) error
}

// ActivityRepository reads the user's footprint in the recipe tables
type ActivityRepository interface {
	Activity(ctx context.Context, userID int64, username string) (*entity.ActivityData, error)
}

// TokenBlacklist keeps revoked token ids until the token would expire anyway
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
