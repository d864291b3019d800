package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/gdpr-worker/internal/app/gdpr/repository"
	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

var ErrInvalidEvent = errors.New("invalid user event")

type AuditService struct {
	auditRepo repository.AuditRepository
	now       func() time.Time
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// HandleEvent records one audit entry per GDPR-relevant event. Other event
// types are ignored. The entry id is derived from the event id so a
// redelivery is written once.
func (s *AuditService) HandleEvent(ctx context.Context, event *entity.UserEvent) error {
	if event.UserID <= 0 {
		return fmt.Errorf("%w: missing user_id", ErrInvalidEvent)
	}

	var action string
	details := map[string]interface{}{}
	switch event.EventType {
	case entity.EventUserRegistered:
		action = entity.ActionConsentRecorded
		if event.Consents != nil {
			details["marketing"] = event.Consents.Marketing
			details["analytics"] = event.Consents.Analytics
			details["data_processing"] = event.Consents.DataProcessing
		}
	case entity.EventUserDataExported:
		action = entity.ActionDataExported
	case entity.EventUserDeletionRequested:
		action = entity.ActionDeletionRequested
	default:
		logger.Debug().Str("event_type", event.EventType).Msg("Ignoring non-GDPR user event")
		return nil
	}

	occurredAt := event.Timestamp
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}

	entry := &entity.AuditEntry{
		ID:         entryID(event),
		Action:     action,
		UserID:     event.UserID,
		EventID:    event.EventID,
		OccurredAt: occurredAt,
		RecordedAt: s.now().UTC(),
	}
	if len(details) > 0 {
		entry.Details = details
	}

	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	metrics.GDPRAuditEntries.WithLabelValues(action).Inc()
	logger.Info().
		Int64("user_id", event.UserID).
		Str("action", action).
		Str("event_id", event.EventID).
		Msg("GDPR audit entry recorded")
	return nil
}

func entryID(event *entity.UserEvent) string {
	if event.EventID == "" {
		return uuid.NewString()
	}
	return event.EventID
}
