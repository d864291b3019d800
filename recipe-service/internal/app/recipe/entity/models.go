package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recipe is a catalog entry. AvgRating and RatingsCount are derived from
// the ratings table and only written by the aggregate recompute.
type Recipe struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string     `gorm:"size:200;not null;index:idx_recipe_search" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Category     string     `gorm:"size:80;index:idx_recipe_filters" json:"category"`
	Cuisine      string     `gorm:"size:80;index:idx_recipe_filters" json:"cuisine"`
	Diet         string     `gorm:"size:80;index:idx_recipe_filters" json:"diet"`
	TargetGroup  string     `gorm:"size:80" json:"target_group,omitempty"`
	Difficulty   string     `gorm:"size:40" json:"difficulty,omitempty"`
	Allergens    string     `gorm:"type:text" json:"allergens"`
	Tags         string     `gorm:"type:text" json:"tags"`
	Servings     int        `gorm:"index:idx_recipe_time_servings" json:"servings"`
	PrepTimeMin  int        `json:"prep_time_min,omitempty"`
	CookTimeMin  int        `json:"cook_time_min,omitempty"`
	TotalTimeMin int        `gorm:"index:idx_recipe_time_servings" json:"total_time_min"`
	Calories     *int       `json:"calories,omitempty"`
	ProteinG     *int       `json:"protein_g,omitempty"`
	CarbsG       *int       `json:"carbs_g,omitempty"`
	FatG         *int       `json:"fat_g,omitempty"`
	Ingredients  StringList `gorm:"column:ingredients_json;type:text" json:"ingredients"`
	Steps        StringList `gorm:"column:steps_json;type:text" json:"steps"`
	AvgRating    float64    `gorm:"not null;default:0" json:"avg_rating"`
	RatingsCount int64      `gorm:"not null;default:0" json:"ratings_count"`
	Author       string     `gorm:"size:120;index" json:"author"`
	Language     string     `gorm:"size:8;default:de" json:"language"`
	Slug         *string    `gorm:"size:220;uniqueIndex" json:"slug,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	IsFavorite bool `gorm:"-" json:"is_favorite"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Rating is unique per (user, recipe); a second submission overwrites Stars.
type Rating struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:unique_user_recipe_rating;index" json:"user_id"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:unique_user_recipe_rating;index" json:"recipe_id"`
	Stars     int       `gorm:"not null" json:"stars"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// Favorite is a membership row: presence means favorited.
type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:unique_user_recipe_favorite;index" json:"user_id"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:unique_user_recipe_favorite;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// StringList is an ordered list of strings stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (l *StringList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		*l = StringList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("stored list is not a JSON string array")
	}
	*l = items
	return nil
}
