package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *entity.Recipe) error {
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// CreateBatch inserts all recipes in one transaction, batchSize rows per statement.
func (r *recipeRepository) CreateBatch(ctx context.Context, recipes []entity.Recipe, batchSize int) error {
	if len(recipes) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(recipes, batchSize).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to import recipes: %w", err)
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	var recipe entity.Recipe
	result := r.db.WithContext(ctx).First(&recipe, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", result.Error)
	}

	return &recipe, nil
}

// Search counts the filtered set, pages it by id and flags the caller's
// favorites inside one transaction so total, page and flags agree.
// callerID may be nil.
func (r *recipeRepository) Search(ctx context.Context, filters entity.SearchFilters, callerID *int64, limit, offset int) ([]entity.Recipe, int64, error) {
	preds := buildSearchPredicates(filters)
	recipes := make([]entity.Recipe, 0)
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyPredicates(tx.Model(&entity.Recipe{}), preds).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count recipes: %w", err)
		}
		if total == 0 || int64(offset) >= total {
			return nil
		}

		err := applyPredicates(tx.Model(&entity.Recipe{}), preds).
			Order("id ASC").
			Offset(offset).
			Limit(limit).
			Find(&recipes).Error
		if err != nil {
			return fmt.Errorf("failed to search recipes: %w", err)
		}

		if callerID == nil || len(recipes) == 0 {
			return nil
		}
		return markFavoritesTx(tx, *callerID, recipes)
	})
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// markFavoritesTx sets IsFavorite with one lookup for the whole page.
func markFavoritesTx(tx *gorm.DB, userID int64, recipes []entity.Recipe) error {
	ids := make([]int64, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	var favorited []int64
	err := tx.Model(&entity.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, ids).
		Pluck("recipe_id", &favorited).Error
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	set := make(map[int64]bool, len(favorited))
	for _, id := range favorited {
		set[id] = true
	}
	for i := range recipes {
		recipes[i].IsFavorite = set[recipes[i].ID]
	}
	return nil
}

func (r *recipeRepository) PickRandom(ctx context.Context, exclude []int64) (*entity.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&entity.Recipe{})
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var recipes []entity.Recipe
	if err := query.Order("RANDOM()").Limit(1).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to pick random recipe: %w", err)
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

func (r *recipeRepository) FilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	opts := &entity.FilterOptions{}

	columns := []struct {
		name string
		dest *[]string
	}{
		{"category", &opts.Categories},
		{"cuisine", &opts.Cuisines},
		{"diet", &opts.Diets},
	}

	for _, col := range columns {
		*col.dest = make([]string, 0)
		err := r.db.WithContext(ctx).
			Model(&entity.Recipe{}).
			Where(col.name + " IS NOT NULL AND " + col.name + " <> ''").
			Distinct(col.name).
			Order(col.name).
			Pluck(col.name, col.dest).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load %s options: %w", col.name, err)
		}
	}

	return opts, nil
}
