package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
	"recipehub/pkg/rating"
	"recipehub/recipe-service/internal/app/recipe/entity"
)

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Submit(ctx context.Context, userID, recipeID int64, stars int) (*entity.Rating, *entity.Recipe, error) {
	var saved *entity.Rating
	var recipe *entity.Recipe

	err := retryOnConflict(ctx, func() error {
		// a rolled-back attempt must not leak its row ids into the retry
		var attemptRating entity.Rating
		var attemptRecipe entity.Recipe

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockRecipe(tx, recipeID, &attemptRecipe); err != nil {
				return err
			}

			now := time.Now().UTC()
			row := entity.Rating{
				UserID:    userID,
				RecipeID:  recipeID,
				Stars:     stars,
				CreatedAt: now,
				UpdatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"stars", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to upsert rating: %w", err)
			}

			if err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&attemptRating).Error; err != nil {
				return fmt.Errorf("failed to reload rating: %w", err)
			}

			return recomputeLocked(tx, &attemptRecipe)
		})
		if err != nil {
			return err
		}

		saved, recipe = &attemptRating, &attemptRecipe
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return saved, recipe, nil
}

func (r *ratingRepository) RecomputeAggregate(ctx context.Context, recipeID int64) error {
	return retryOnConflict(ctx, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return RecomputeAggregateTx(tx, recipeID)
		})
	})
}

// RecomputeAggregateTx locks the recipe row and rewrites avg_rating and
// ratings_count from the ratings table. A missing recipe is not an error.
func RecomputeAggregateTx(tx *gorm.DB, recipeID int64) error {
	var recipe entity.Recipe
	if err := lockRecipe(tx, recipeID, &recipe); err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			return nil
		}
		return err
	}
	return recomputeLocked(tx, &recipe)
}

func lockRecipe(tx *gorm.DB, recipeID int64, dest *entity.Recipe) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to lock recipe: %w", err)
	}
	return nil
}

// recomputeLocked expects the caller to hold the row lock on recipe.
func recomputeLocked(tx *gorm.DB, recipe *entity.Recipe) error {
	agg, err := rating.Recompute(tx, recipe.ID)
	if err != nil {
		return err
	}
	recipe.AvgRating = agg.AvgRating
	recipe.RatingsCount = agg.RatingsCount
	return nil
}

// retryOnConflict runs fn again once when postgres aborts it with a
// serialization failure or a deadlock.
func retryOnConflict(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !IsTransientConflict(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}

	metrics.RatingConflictRetries.Inc()
	logger.Warn().Err(err).Msg("Transient conflict, retrying transaction")
	return fn()
}

func IsTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
