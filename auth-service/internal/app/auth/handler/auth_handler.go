package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/auth-service/internal/app/auth/service"
	"recipehub/auth-service/internal/app/auth/util"
	"recipehub/pkg/logger"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.UserProfile, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Logout(ctx context.Context, claims *util.JWTClaims) error
	Me(ctx context.Context, userID int64) (*entity.UserProfile, error)
}

type GDPRServiceInterface interface {
	Export(ctx context.Context, userID int64) (*entity.DataExport, error)
	RequestDeletion(ctx context.Context, userID int64, req *entity.DeleteAccountRequest) (string, error)
}

type AuthHandler struct {
	authService AuthServiceInterface
	gdprService GDPRServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService AuthServiceInterface, gdprService GDPRServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gdprService: gdprService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Successfully logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authService.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) ExportData(c *gin.Context) {
	export, err := h.gdprService.Export(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, export)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req entity.DeleteAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	message, err := h.gdprService.RequestDeletion(c.Request.Context(), c.GetInt64("user_id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: message})
}

func (h *AuthHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", formatValidationError(err))
		return false
	}
	return true
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "")
	case errors.Is(err, service.ErrAccountLocked):
		respondError(c, http.StatusForbidden, "Account temporarily locked", "")
	case errors.Is(err, service.ErrAccountInactive):
		respondError(c, http.StatusForbidden, "Account is inactive", "")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found", "")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "Email already registered", "")
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, "Username already taken", "")
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		respondError(c, http.StatusInternalServerError, "Internal server error", "")
	}
}

func respondError(c *gin.Context, status int, message, details string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
