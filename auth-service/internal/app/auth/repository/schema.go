package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id                      BIGSERIAL PRIMARY KEY,
	username                VARCHAR(50)  NOT NULL,
	email                   VARCHAR(255) NOT NULL,
	first_name              VARCHAR(100) NOT NULL DEFAULT '',
	last_name               VARCHAR(100) NOT NULL DEFAULT '',
	hashed_password         TEXT         NOT NULL,
	is_active               BOOLEAN      NOT NULL DEFAULT TRUE,
	is_verified             BOOLEAN      NOT NULL DEFAULT FALSE,
	consent_marketing       BOOLEAN      NOT NULL DEFAULT FALSE,
	consent_analytics       BOOLEAN      NOT NULL DEFAULT FALSE,
	data_processing_consent BOOLEAN      NOT NULL DEFAULT TRUE,
	created_at              TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at              TIMESTAMPTZ,
	last_login              TIMESTAMPTZ,
	failed_login_attempts   INTEGER      NOT NULL DEFAULT 0,
	locked_until            TIMESTAMPTZ,
	deletion_requested_at   TIMESTAMPTZ,
	export_requested_at     TIMESTAMPTZ,
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);
CREATE INDEX IF NOT EXISTS idx_users_deletion_requested_at
	ON users (deletion_requested_at) WHERE deletion_requested_at IS NOT NULL;
`

// EnsureSchema creates the users table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users schema: %w", err)
	}
	return nil
}
