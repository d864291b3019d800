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

// SweepResult counts the outcome of one pass over due accounts
type SweepResult struct {
	Due     int
	Deleted int
	Failed  int
}

type DeletionService struct {
	deletionRepo repository.DeletionRepository
	auditRepo    repository.AuditRepository
	gracePeriod  time.Duration
	now          func() time.Time
}

func NewDeletionService(
	deletionRepo repository.DeletionRepository,
	auditRepo repository.AuditRepository,
	gracePeriod time.Duration,
) *DeletionService {
	return &DeletionService{
		deletionRepo: deletionRepo,
		auditRepo:    auditRepo,
		gracePeriod:  gracePeriod,
		now:          time.Now,
	}
}

// Sweep hard-deletes every account whose grace period has passed. A failure
// on one account is counted and the sweep moves on to the next.
func (s *DeletionService) Sweep(ctx context.Context) (*SweepResult, error) {
	start := s.now()
	defer func() {
		metrics.GDPRSweepDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := start.UTC().Add(-s.gracePeriod)
	users, err := s.deletionRepo.DueForDeletion(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load due accounts: %w", err)
	}

	result := &SweepResult{Due: len(users)}
	for _, user := range users {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		deleted, err := s.deletionRepo.DeleteUser(ctx, user)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				logger.Info().Int64("user_id", user.ID).Msg("Account already removed, skipping")
				continue
			}
			result.Failed++
			metrics.GDPRDeletionsExecuted.WithLabelValues("failed").Inc()
			logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to execute GDPR deletion")
			s.audit(ctx, user.ID, entity.ActionDeletionFailed, map[string]interface{}{"error": err.Error()})
			continue
		}

		result.Deleted++
		metrics.GDPRDeletionsExecuted.WithLabelValues("success").Inc()
		logger.Info().
			Int64("user_id", user.ID).
			Int64("ratings_deleted", deleted.RatingsDeleted).
			Int64("favorites_deleted", deleted.FavoritesDeleted).
			Int64("recipes_anonymized", deleted.RecipesAnonymized).
			Msg("GDPR deletion executed")

		details := map[string]interface{}{
			"ratings_deleted":    deleted.RatingsDeleted,
			"favorites_deleted":  deleted.FavoritesDeleted,
			"recipes_anonymized": deleted.RecipesAnonymized,
			"recomputed_recipes": deleted.RecomputedRecipes,
		}
		if user.DeletionRequestedAt != nil {
			details["requested_at"] = *user.DeletionRequestedAt
		}
		s.audit(ctx, user.ID, entity.ActionDeletionExecuted, details)
	}

	return result, nil
}

// audit failures never undo a committed deletion
func (s *DeletionService) audit(ctx context.Context, userID int64, action string, details map[string]interface{}) {
	now := s.now().UTC()
	entry := &entity.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		UserID:     userID,
		OccurredAt: now,
		RecordedAt: now,
		Details:    details,
	}
	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Str("action", action).Msg("Failed to write audit entry")
		return
	}
	metrics.GDPRAuditEntries.WithLabelValues(action).Inc()
}
