package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/pkg/metrics"
	"recipehub/pkg/rating"
)

const serviceName = "gdpr-worker"

var ErrUserNotFound = errors.New("user not found")

type deletionRepository struct {
	db *gorm.DB
}

func NewDeletionRepository(db *gorm.DB) DeletionRepository {
	return &deletionRepository{db: db}
}

func (r *deletionRepository) DueForDeletion(ctx context.Context, cutoff time.Time) ([]entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("deletion_requested_at IS NOT NULL AND deletion_requested_at <= ?", cutoff).
		Order("id").
		Find(&users).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to list users due for deletion: %w", err)
	}
	return users, nil
}

func (r *deletionRepository) DeleteUser(ctx context.Context, user entity.User) (*entity.DeletionResult, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "users")
	defer timer.ObserveDuration()

	result := &entity.DeletionResult{UserID: user.ID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipeIDs []int64
		err := tx.Model(&entity.Rating{}).
			Where("user_id = ?", user.ID).
			Distinct().
			Order("recipe_id").
			Pluck("recipe_id", &recipeIDs).Error
		if err != nil {
			return fmt.Errorf("failed to collect rated recipes: %w", err)
		}

		// Lock in id order, the same order concurrent raters take a single row in
		var locked []entity.Recipe
		if len(recipeIDs) > 0 {
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", recipeIDs).
				Order("id").
				Find(&locked).Error
			if err != nil {
				return fmt.Errorf("failed to lock recipes: %w", err)
			}
		}

		res := tx.Where("user_id = ?", user.ID).Delete(&entity.Rating{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete ratings: %w", res.Error)
		}
		result.RatingsDeleted = res.RowsAffected

		res = tx.Where("user_id = ?", user.ID).Delete(&entity.Favorite{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete favorites: %w", res.Error)
		}
		result.FavoritesDeleted = res.RowsAffected

		if user.Username != "" {
			res = tx.Model(&entity.Recipe{}).
				Where("author = ?", user.Username).
				Update("author", entity.AnonymousAuthor)
			if res.Error != nil {
				return fmt.Errorf("failed to anonymize recipes: %w", res.Error)
			}
			result.RecipesAnonymized = res.RowsAffected
		}

		res = tx.Delete(&entity.User{}, user.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		for _, recipe := range locked {
			if _, err := rating.Recompute(tx, recipe.ID); err != nil {
				return err
			}
			result.RecomputedRecipes = append(result.RecomputedRecipes, recipe.ID)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		}
		return nil, err
	}

	return result, nil
}

func (r *deletionRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
