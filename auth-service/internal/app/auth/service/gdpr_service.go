package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/auth-service/internal/app/auth/infrastructure"
	"recipehub/auth-service/internal/app/auth/repository"
	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

const exportFormat = "JSON"

// GDPRService serves data-subject requests. Hard deletion happens later in
// gdpr-worker once the grace period has passed.
type GDPRService struct {
	auth         *AuthService
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	publisher    infrastructure.MessagePublisher // optional
	gracePeriod  time.Duration
	now          func() time.Time
}

func NewGDPRService(
	auth *AuthService,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	publisher infrastructure.MessagePublisher,
	gracePeriod time.Duration,
) *GDPRService {
	return &GDPRService{
		auth:         auth,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		publisher:    publisher,
		gracePeriod:  gracePeriod,
		now:          time.Now,
	}
}

func (s *GDPRService) Export(ctx context.Context, userID int64) (*entity.DataExport, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	activity, err := s.activityRepo.Activity(ctx, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to collect activity: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.MarkExportRequested(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark export: %w", err)
	}

	metrics.GDPRExports.Inc()
	logger.Info().Int64("user_id", user.ID).Msg("GDPR data export served")

	publishUserEvent(ctx, s.publisher, entity.UserEvent{
		EventType: entity.EventUserDataExported,
		UserID:    user.ID,
		Username:  user.Username,
	})

	return &entity.DataExport{
		PersonalData: entity.PersonalData{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			CreatedAt: user.CreatedAt,
			LastLogin: user.LastLogin,
		},
		Consents:     *consentsOf(user),
		ActivityData: *activity,
		ExportDate:   now,
		Format:       exportFormat,
	}, nil
}

// RequestDeletion re-authenticates the caller with the login rules and
// deactivates the account. The returned message names the grace period.
func (s *GDPRService) RequestDeletion(ctx context.Context, userID int64, req *entity.DeleteAccountRequest) (string, error) {
	user, err := s.auth.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return "", err
	}
	if user.ID != userID {
		// credentials of another account
		return "", ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.userRepo.RequestDeletion(ctx, user.ID, now); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to request deletion: %w", err)
	}

	metrics.GDPRDeletionRequests.Inc()
	logger.Info().
		Int64("user_id", user.ID).
		Time("delete_after", now.Add(s.gracePeriod)).
		Msg("GDPR deletion requested")

	publishUserEvent(ctx, s.publisher, entity.UserEvent{
		EventType: entity.EventUserDeletionRequested,
		UserID:    user.ID,
		Username:  user.Username,
	})

	return fmt.Sprintf("Account deactivated. All personal data will be deleted in %s.", formatGracePeriod(s.gracePeriod)), nil
}

func formatGracePeriod(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	switch {
	case d%(24*time.Hour) != 0:
		return d.String()
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
