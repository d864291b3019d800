package service

import (
	"context"
	"errors"
	"fmt"

	"recipehub/pkg/metrics"
	"recipehub/recipe-service/internal/app/recipe/entity"
	"recipehub/recipe-service/internal/app/recipe/repository"
)

// ToggleFavorite flips membership and returns the new state.
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, recipeID int64) (bool, error) {
	favorited, err := s.favoriteRepo.Toggle(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return false, ErrRecipeNotFound
		}
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	metrics.RecordFavoriteToggle(favorited)
	s.publishEvent(ctx, entity.RecipeEvent{
		EventType:  entity.EventRecipeFavoriteToggled,
		RecipeID:   recipeID,
		UserID:     userID,
		IsFavorite: &favorited,
	})

	return favorited, nil
}

func (s *RecipeService) ListFavorites(ctx context.Context, userID int64) (*entity.RecipeListResponse, error) {
	recipes, err := s.favoriteRepo.ListRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return &entity.RecipeListResponse{Total: int64(len(recipes)), Recipes: recipes}, nil
}
