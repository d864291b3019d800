package entity

import "time"

const (
	EventUserRegistered        = "USER_REGISTERED"
	EventUserDataExported      = "USER_DATA_EXPORTED"
	EventUserDeletionRequested = "USER_DELETION_REQUESTED"
)

type RegisterRequest struct {
	Username              string `json:"username" validate:"required,min=3,max=50"`
	Email                 string `json:"email" validate:"required,email,max=255"`
	FirstName             string `json:"first_name" validate:"required,min=1,max=100"`
	LastName              string `json:"last_name" validate:"required,min=1,max=100"`
	Password              string `json:"password" validate:"required,min=8,max=128"`
	ConsentMarketing      bool   `json:"consent_marketing"`
	ConsentAnalytics      bool   `json:"consent_analytics"`
	DataProcessingConsent *bool  `json:"data_processing_consent"` // defaults to true
}

// LoginRequest accepts a username or an e-mail address in Username
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type DeleteAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"` // seconds
	User        UserProfile `json:"user"`
}

type PersonalData struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

type Consents struct {
	Marketing      bool `json:"marketing"`
	Analytics      bool `json:"analytics"`
	DataProcessing bool `json:"data_processing"`
}

// DataExport is the GDPR access-request payload
type DataExport struct {
	PersonalData PersonalData `json:"personal_data"`
	Consents     Consents     `json:"consents"`
	ActivityData ActivityData `json:"activity_data"`
	ExportDate   time.Time    `json:"export_date"`
	Format       string       `json:"format"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// UserEvent is published to user_events and consumed by gdpr-worker
type UserEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Consents  *Consents `json:"consents,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
