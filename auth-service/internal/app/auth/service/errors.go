package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to too many failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrWeakPassword       = errors.New("password must have at least 8 characters including an uppercase letter, a lowercase letter and a digit")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)
