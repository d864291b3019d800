package repository

import (
	"context"
	"time"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
)

// DeletionRepository executes hard deletes in the shared PostgreSQL database
type DeletionRepository interface {
	// DueForDeletion lists users whose deletion request is at or before cutoff
	DueForDeletion(ctx context.Context, cutoff time.Time) ([]entity.User, error)
	// DeleteUser removes the account and its activity in one transaction and
	// recomputes the aggregates of every recipe the user had rated.
	DeleteUser(ctx context.Context, user entity.User) (*entity.DeletionResult, error)
	Ping(ctx context.Context) error
}

// AuditRepository appends to the gdpr_audit trail
type AuditRepository interface {
	Insert(ctx context.Context, entry *entity.AuditEntry) error
	Ping(ctx context.Context) error
}
