package infrastructure

import (
	"context"
	"time"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

// MessagePublisher sends events to the recipe_events topic
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// FilterCache stores the filter options; Get returns nil, nil on a miss
type FilterCache interface {
	GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error)
	SetFilterOptions(ctx context.Context, opts *entity.FilterOptions, ttl time.Duration) error
	InvalidateFilterOptions(ctx context.Context) error
	Close() error
}

// DocumentRenderer turns a recipe into a printable document
type DocumentRenderer interface {
	RenderRecipe(recipe *entity.Recipe) ([]byte, error)
}
