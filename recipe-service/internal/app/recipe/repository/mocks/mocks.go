package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *entity.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) CreateBatch(ctx context.Context, recipes []entity.Recipe, batchSize int) error {
	args := m.Called(ctx, recipes, batchSize)
	return args.Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Search(ctx context.Context, filters entity.SearchFilters, callerID *int64, limit, offset int) ([]entity.Recipe, int64, error) {
	args := m.Called(ctx, filters, callerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) PickRandom(ctx context.Context, exclude []int64) (*entity.Recipe, error) {
	args := m.Called(ctx, exclude)
	if fn, ok := args.Get(0).(func(context.Context, []int64) *entity.Recipe); ok {
		return fn(ctx, exclude), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FilterOptions), args.Error(1)
}

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Submit(ctx context.Context, userID, recipeID int64, stars int) (*entity.Rating, *entity.Recipe, error) {
	args := m.Called(ctx, userID, recipeID, stars)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.Rating), args.Get(1).(*entity.Recipe), args.Error(2)
}

func (m *MockRatingRepository) RecomputeAggregate(ctx context.Context, recipeID int64) error {
	args := m.Called(ctx, recipeID)
	return args.Error(0)
}

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Toggle(ctx context.Context, userID, recipeID int64) (bool, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) FavoriteSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, recipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockFavoriteRepository) ListRecipes(ctx context.Context, userID int64) ([]entity.Recipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Recipe), args.Error(1)
}

type MockFilterCache struct {
	mock.Mock
}

func (m *MockFilterCache) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FilterOptions), args.Error(1)
}

func (m *MockFilterCache) SetFilterOptions(ctx context.Context, opts *entity.FilterOptions, ttl time.Duration) error {
	args := m.Called(ctx, opts, ttl)
	return args.Error(0)
}

func (m *MockFilterCache) InvalidateFilterOptions(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFilterCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher records every published payload in Messages
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderRecipe(recipe *entity.Recipe) ([]byte, error) {
	args := m.Called(recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
