package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"recipehub/auth-service/internal/app/auth/config"
	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/auth-service/internal/app/auth/infrastructure"
	"recipehub/auth-service/internal/app/auth/repository"
	"recipehub/auth-service/internal/app/auth/util"
	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

const tokenType = "bearer"

// AuthService handles registration, login with lockout, and token lifecycle.
type AuthService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	publisher  infrastructure.MessagePublisher // optional
	jwtManager *util.JWTManager
	lockout    config.LockoutConfig
	now        func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	blacklist repository.TokenBlacklist,
	publisher infrastructure.MessagePublisher,
	jwtManager *util.JWTManager,
	lockout config.LockoutConfig,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		publisher:  publisher,
		jwtManager: jwtManager,
		lockout:    lockout,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.UserProfile, error) {
	if err := util.ValidatePasswordStrength(req.Password); err != nil {
		return nil, ErrWeakPassword
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dataProcessing := true
	if req.DataProcessingConsent != nil {
		dataProcessing = *req.DataProcessingConsent
	}

	user := &entity.User{
		Username:              strings.TrimSpace(req.Username),
		Email:                 strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		PasswordHash:          passwordHash,
		IsActive:              true,
		ConsentMarketing:      req.ConsentMarketing,
		ConsentAnalytics:      req.ConsentAnalytics,
		DataProcessingConsent: dataProcessing,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	s.publishEvent(ctx, entity.UserEvent{
		EventType: entity.EventUserRegistered,
		UserID:    user.ID,
		Username:  user.Username,
		Consents:  consentsOf(user),
	})

	profile := user.Profile()
	return &profile, nil
}

// Login accepts a username or an e-mail address as identifier.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	metrics.AuthTokensIssued.Inc()

	return &entity.AuthResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int64(s.jwtManager.GetAccessTokenDuration().Seconds()),
		User:        user.Profile(),
	}, nil
}

// authenticate applies the lockout rules and is shared with the GDPR
// deletion flow.
func (s *AuthService) authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now()
	if user.IsLocked(now) {
		metrics.AuthLogins.WithLabelValues("locked").Inc()
		return nil, ErrAccountLocked
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		attempts, err := s.userRepo.RegisterFailedLogin(ctx, user.ID, s.lockout.MaxAttempts, now.Add(s.lockout.Duration))
		if err != nil {
			return nil, fmt.Errorf("failed to register failed login: %w", err)
		}
		if attempts >= s.lockout.MaxAttempts {
			logger.Warn().
				Int64("user_id", user.ID).
				Int("attempts", attempts).
				Dur("lock_duration", s.lockout.Duration).
				Msg("Account locked after failed login attempts")
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.AuthLogins.WithLabelValues("inactive").Inc()
		return nil, ErrAccountInactive
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now

	metrics.AuthLogins.WithLabelValues("success").Inc()
	return user, nil
}

// ValidateToken verifies the signature and expiry and rejects revoked tokens.
func (s *AuthService) ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenBlacklisted
	}

	return claims, nil
}

// Logout revokes the token until its own expiry.
func (s *AuthService) Logout(ctx context.Context, claims *util.JWTClaims) error {
	expiresAt := s.now().Add(s.jwtManager.GetAccessTokenDuration())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info().Int64("user_id", claims.UserID).Msg("User logged out")
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*entity.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile := user.Profile()
	return &profile, nil
}

// publishEvent never fails the caller; the database write already happened.
func (s *AuthService) publishEvent(ctx context.Context, event entity.UserEvent) {
	publishUserEvent(ctx, s.publisher, event)
}

func publishUserEvent(ctx context.Context, publisher infrastructure.MessagePublisher, event entity.UserEvent) {
	if publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal user event")
		return
	}

	if err := publisher.PublishMessage(ctx, strconv.FormatInt(event.UserID, 10), data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Int64("user_id", event.UserID).
			Msg("Failed to publish user event")
	}
}

func consentsOf(u *entity.User) *entity.Consents {
	return &entity.Consents{
		Marketing:      u.ConsentMarketing,
		Analytics:      u.ConsentAnalytics,
		DataProcessing: u.DataProcessingConsent,
	}
}
