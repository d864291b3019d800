package entity

import "time"

const (
	EventRecipeCreated         = "RECIPE_CREATED"
	EventRecipeRated           = "RECIPE_RATED"
	EventRecipeFavoriteToggled = "RECIPE_FAVORITE_TOGGLED"
)

// SearchFilters are AND-combined; zero values and nil bounds impose no constraint.
type SearchFilters struct {
	Query           string
	Cuisine         string
	Diet            string
	Category        string
	ExcludeAllergen string
	MinTime         *int
	MaxTime         *int
	MinServings     *int
	MaxServings     *int
}

// SearchRequest is bound from the query string of GET /search
type SearchRequest struct {
	Query           string `form:"query" validate:"max=200"`
	Cuisine         string `form:"cuisine" validate:"max=80"`
	Diet            string `form:"diet" validate:"max=80"`
	Category        string `form:"category" validate:"max=80"`
	ExcludeAllergen string `form:"exclude_allergen" validate:"max=80"`
	MinTime         *int   `form:"min_time" validate:"omitempty,min=0,max=300"`
	MaxTime         *int   `form:"max_time" validate:"omitempty,min=0,max=300"`
	MinServings     *int   `form:"min_servings" validate:"omitempty,min=1,max=20"`
	MaxServings     *int   `form:"max_servings" validate:"omitempty,min=1,max=20"`
	Limit           *int   `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset          *int   `form:"offset" validate:"omitempty,min=0"`
}

type CreateRecipeRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=120"`
	Description  string   `json:"description" validate:"required,min=10,max=500"`
	Category     string   `json:"category" validate:"max=80"`
	Cuisine      string   `json:"cuisine" validate:"max=80"`
	Diet         string   `json:"diet" validate:"max=80"`
	Allergens    string   `json:"allergens" validate:"max=500"`
	Tags         string   `json:"tags" validate:"max=500"`
	Servings     int      `json:"servings" validate:"required,min=1,max=20"`
	TotalTimeMin int      `json:"total_time_min" validate:"required,min=1,max=600"`
	Ingredients  []string `json:"ingredients" validate:"required,min=1,dive,max=300"`
	Steps        []string `json:"steps" validate:"required,min=1,dive,max=2000"`
}

type RateRequest struct {
	Stars int `json:"stars" validate:"required,min=1,max=5"`
}

type FilterOptions struct {
	Categories []string `json:"categories"`
	Cuisines   []string `json:"cuisines"`
	Diets      []string `json:"diets"`
}

type RecipeListResponse struct {
	Total   int64    `json:"total"`
	Recipes []Recipe `json:"recipes"`
}

type RatingResponse struct {
	Message string  `json:"message"`
	Rating  *Rating `json:"rating"`
}

type FavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RecipeEvent is published to recipe_events
type RecipeEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	RecipeID     int64     `json:"recipe_id"`
	UserID       int64     `json:"user_id,omitempty"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Stars        int       `json:"stars,omitempty"`
	AvgRating    float64   `json:"avg_rating,omitempty"`
	RatingsCount int64     `json:"ratings_count,omitempty"`
	IsFavorite   *bool     `json:"is_favorite,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
