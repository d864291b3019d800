package entity

import "time"

// User is a row of the shared users table
type User struct {
	ID                    int64      `json:"id" db:"id"`
	Username              string     `json:"username" db:"username"`
	Email                 string     `json:"email" db:"email"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	PasswordHash          string     `json:"-" db:"hashed_password"`
	IsActive              bool       `json:"is_active" db:"is_active"`
	IsVerified            bool       `json:"is_verified" db:"is_verified"`
	ConsentMarketing      bool       `json:"consent_marketing" db:"consent_marketing"`
	ConsentAnalytics      bool       `json:"consent_analytics" db:"consent_analytics"`
	DataProcessingConsent bool       `json:"data_processing_consent" db:"data_processing_consent"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             *time.Time `json:"-" db:"updated_at"`
	LastLogin             *time.Time `json:"last_login,omitempty" db:"last_login"`
	FailedLoginAttempts   int        `json:"-" db:"failed_login_attempts"`
	LockedUntil           *time.Time `json:"-" db:"locked_until"`
	DeletionRequestedAt   *time.Time `json:"-" db:"deletion_requested_at"`
	ExportRequestedAt     *time.Time `json:"-" db:"export_requested_at"`
}

// IsLocked reports whether a lockout is still running at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserProfile is the public view returned by /me and login
type UserProfile struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

type RatingActivity struct {
	RecipeID  int64     `json:"recipe_id"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoriteActivity struct {
	RecipeID  int64     `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RecipeActivity struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityData lists everything the user produced in the catalog
type ActivityData struct {
	Ratings        []RatingActivity   `json:"ratings"`
	Favorites      []FavoriteActivity `json:"favorites"`
	RecipesCreated []RecipeActivity   `json:"recipes_created"`
}
