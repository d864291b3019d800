package repository

import (
	"context"
	"errors"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

type RecipeRepository interface {
	Create(ctx context.Context, recipe *entity.Recipe) error
	CreateBatch(ctx context.Context, recipes []entity.Recipe, batchSize int) error
	GetByID(ctx context.Context, id int64) (*entity.Recipe, error)
	// Search flags favorites for callerID when it is not nil.
	Search(ctx context.Context, filters entity.SearchFilters, callerID *int64, limit, offset int) ([]entity.Recipe, int64, error)
	// PickRandom returns nil when no recipe outside exclude exists.
	PickRandom(ctx context.Context, exclude []int64) (*entity.Recipe, error)
	FilterOptions(ctx context.Context) (*entity.FilterOptions, error)
}

type RatingRepository interface {
	// Submit upserts the caller's rating and recomputes the recipe aggregate
	// in one transaction holding the recipe row lock.
	Submit(ctx context.Context, userID, recipeID int64, stars int) (*entity.Rating, *entity.Recipe, error)
	// RecomputeAggregate is a no-op for a recipe that does not exist.
	RecomputeAggregate(ctx context.Context, recipeID int64) error
}

type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, recipeID int64) (bool, error)
	// FavoriteSet returns the subset of recipeIDs favorited by userID.
	FavoriteSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
	ListRecipes(ctx context.Context, userID int64) ([]entity.Recipe, error)
}
