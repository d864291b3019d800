package entity

import "time"

const (
	EventUserRegistered        = "USER_REGISTERED"
	EventUserDataExported      = "USER_DATA_EXPORTED"
	EventUserDeletionRequested = "USER_DELETION_REQUESTED"
)

const (
	ActionConsentRecorded   = "consent_recorded"
	ActionDataExported      = "data_exported"
	ActionDeletionRequested = "deletion_requested"
	ActionDeletionExecuted  = "deletion_executed"
	ActionDeletionFailed    = "deletion_failed"
)

// AnonymousAuthor replaces the username on recipes of deleted accounts
const AnonymousAuthor = "[deleted user]"

// User carries only the columns the sweep needs; auth-service owns the table
type User struct {
	ID                  int64      `gorm:"primaryKey"`
	Username            string     `gorm:"size:50"`
	DeletionRequestedAt *time.Time `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type Recipe struct {
	ID           int64   `gorm:"primaryKey"`
	Title        string  `gorm:"size:200"`
	Author       string  `gorm:"size:120;index"`
	AvgRating    float64 `gorm:"not null;default:0"`
	RatingsCount int64   `gorm:"not null;default:0"`
}

func (Recipe) TableName() string {
	return "recipes"
}

type Rating struct {
	ID       int64 `gorm:"primaryKey"`
	UserID   int64 `gorm:"not null;index"`
	RecipeID int64 `gorm:"not null;index"`
	Stars    int   `gorm:"not null"`
}

func (Rating) TableName() string {
	return "ratings"
}

type Favorite struct {
	ID       int64 `gorm:"primaryKey"`
	UserID   int64 `gorm:"not null;index"`
	RecipeID int64 `gorm:"not null;index"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// DeletionResult summarizes what one hard delete removed
type DeletionResult struct {
	UserID            int64   `bson:"user_id"`
	RatingsDeleted    int64   `bson:"ratings_deleted"`
	FavoritesDeleted  int64   `bson:"favorites_deleted"`
	RecipesAnonymized int64   `bson:"recipes_anonymized"`
	RecomputedRecipes []int64 `bson:"recomputed_recipes"`
}

type Consents struct {
	Marketing      bool `json:"marketing" bson:"marketing"`
	Analytics      bool `json:"analytics" bson:"analytics"`
	DataProcessing bool `json:"data_processing" bson:"data_processing"`
}

// UserEvent is produced by auth-service on user_events
type UserEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Consents  *Consents `json:"consents,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditEntry is one document in the gdpr_audit collection. The username is
// never stored so the trail survives the deletion it records.
type AuditEntry struct {
	ID         string                 `bson:"_id"`
	Action     string                 `bson:"action"`
	UserID     int64                  `bson:"user_id"`
	EventID    string                 `bson:"event_id,omitempty"`
	OccurredAt time.Time              `bson:"occurred_at"`
	RecordedAt time.Time              `bson:"recorded_at"`
	Details    map[string]interface{} `bson:"details,omitempty"`
}
