package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/pkg/metrics"
)

const serviceName = "auth-service"

const userColumns = `id, username, email, first_name, last_name, hashed_password,
	is_active, is_verified, consent_marketing, consent_analytics, data_processing_consent,
	created_at, updated_at, last_login, failed_login_attempts, locked_until,
	deletion_requested_at, export_requested_at`

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "users")
	defer timer.ObserveDuration()

	query := `
		INSERT INTO users (username, email, first_name, last_name, hashed_password,
			is_active, consent_marketing, consent_analytics, data_processing_consent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.IsActive, user.ConsentMarketing, user.ConsentAnalytics, user.DataProcessingConsent,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return taken
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) RegisterFailedLogin(ctx context.Context, id int64, maxAttempts int, lockUntil time.Time) (int, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer timer.ObserveDuration()

	// SET expressions see the pre-update row, hence the +1 in the CASE
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts
	`

	var attempts int
	if err := r.db.QueryRow(ctx, query, id, maxAttempts, lockUntil).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return 0, fmt.Errorf("failed to register failed login: %w", err)
	}
	return attempts, nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = $2
		WHERE id = $1
	`, id, at)
}

func (r *userRepository) MarkExportRequested(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET export_requested_at = $2, updated_at = $2 WHERE id = $1`, id, at)
}

func (r *userRepository) RequestDeletion(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET deletion_requested_at = $2, is_active = FALSE, updated_at = $2
		WHERE id = $1
	`, id, at)
}

func (r *userRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "users")
	defer timer.ObserveDuration()

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.IsVerified, &u.ConsentMarketing, &u.ConsentAnalytics, &u.DataProcessingConsent,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &u.FailedLoginAttempts, &u.LockedUntil,
		&u.DeletionRequestedAt, &u.ExportRequestedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueViolation maps a 23505 on the users constraints to a sentinel.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return ErrUsernameTaken
	case emailConstraint:
		return ErrEmailTaken
	}
	return ErrEmailTaken
}
