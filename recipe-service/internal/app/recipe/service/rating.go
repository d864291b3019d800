package service

import (
	"context"
	"errors"
	"fmt"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
	"recipehub/pkg/rating"
	"recipehub/recipe-service/internal/app/recipe/entity"
	"recipehub/recipe-service/internal/app/recipe/repository"
)

// SubmitRating upserts the caller's stars and recomputes the recipe
// aggregate atomically. Nothing is written for an unknown recipe.
func (s *RecipeService) SubmitRating(ctx context.Context, userID, recipeID int64, stars int) (*entity.Rating, error) {
	if !rating.Valid(stars) {
		return nil, ErrInvalidStars
	}

	saved, recipe, err := s.ratingRepo.Submit(ctx, userID, recipeID, stars)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to submit rating: %w", err)
	}

	metrics.RatingsSubmitted.Observe(float64(stars))
	logger.Info().
		Int64("user_id", userID).
		Int64("recipe_id", recipeID).
		Int("stars", stars).
		Float64("avg_rating", recipe.AvgRating).
		Int64("ratings_count", recipe.RatingsCount).
		Msg("Rating saved")

	s.publishEvent(ctx, entity.RecipeEvent{
		EventType:    entity.EventRecipeRated,
		RecipeID:     recipeID,
		UserID:       userID,
		Stars:        stars,
		AvgRating:    recipe.AvgRating,
		RatingsCount: recipe.RatingsCount,
	})

	return saved, nil
}
