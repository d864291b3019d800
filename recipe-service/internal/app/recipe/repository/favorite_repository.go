package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Toggle deletes the membership row if present, otherwise inserts it.
// Returns the new state.
func (r *favoriteRepository) Toggle(ctx context.Context, userID, recipeID int64) (bool, error) {
	var favorited bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check recipe: %w", err)
		}
		if count == 0 {
			return ErrRecipeNotFound
		}

		result := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&entity.Favorite{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete favorite: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			favorited = false
			return nil
		}

		// savepoint keeps the outer transaction usable after a unique violation
		err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&entity.Favorite{UserID: userID, RecipeID: recipeID}).Error
		})
		if err != nil {
			// a concurrent toggle inserted the same pair first
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				favorited = true
				return nil
			}
			return fmt.Errorf("failed to create favorite: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return favorited, nil
}

func (r *favoriteRepository) FavoriteSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&entity.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *favoriteRepository) ListRecipes(ctx context.Context, userID int64) ([]entity.Recipe, error) {
	recipes := make([]entity.Recipe, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, recipes.id ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	for i := range recipes {
		recipes[i].IsFavorite = true
	}
	return recipes, nil
}
