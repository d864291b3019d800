package service

import (
	"context"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
)

type DeletionServiceInterface interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

type AuditServiceInterface interface {
	HandleEvent(ctx context.Context, event *entity.UserEvent) error
}
