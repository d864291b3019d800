package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recipehub/auth-service/internal/app/auth/entity"
	"recipehub/pkg/metrics"
)

type activityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository reads ratings, favorites and authored recipes. The
// tables belong to recipe-service; this side only selects from them.
func NewActivityRepository(db *pgxpool.Pool) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Activity(ctx context.Context, userID int64, username string) (*entity.ActivityData, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "activity")
	defer timer.ObserveDuration()

	data := &entity.ActivityData{
		Ratings:        []entity.RatingActivity{},
		Favorites:      []entity.FavoriteActivity{},
		RecipesCreated: []entity.RecipeActivity{},
	}

	err := collect(ctx, r.db,
		`SELECT recipe_id, stars, created_at FROM ratings WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
		func(rows pgx.Rows) error {
			var a entity.RatingActivity
			if err := rows.Scan(&a.RecipeID, &a.Stars, &a.CreatedAt); err != nil {
				return err
			}
			data.Ratings = append(data.Ratings, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	err = collect(ctx, r.db,
		`SELECT recipe_id, created_at FROM favorites WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
		func(rows pgx.Rows) error {
			var a entity.FavoriteActivity
			if err := rows.Scan(&a.RecipeID, &a.CreatedAt); err != nil {
				return err
			}
			data.Favorites = append(data.Favorites, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	err = collect(ctx, r.db,
		`SELECT id, title, created_at FROM recipes WHERE author = $1 ORDER BY id`,
		username,
		func(rows pgx.Rows) error {
			var a entity.RecipeActivity
			if err := rows.Scan(&a.ID, &a.Title, &a.CreatedAt); err != nil {
				return err
			}
			data.RecipesCreated = append(data.RecipesCreated, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	return data, nil
}

func collect(ctx context.Context, db *pgxpool.Pool, query string, arg interface{}, scan func(pgx.Rows) error) error {
	rows, err := db.Query(ctx, query, arg)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
