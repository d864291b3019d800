package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
	"recipehub/recipe-service/internal/app/recipe/entity"
	"recipehub/recipe-service/internal/app/recipe/infrastructure"
	"recipehub/recipe-service/internal/app/recipe/repository"
)

const defaultFilterTTL = 10 * time.Minute

// RecipeService coordinates the recipe, rating and favorite repositories
// with the filter cache and the recipe_events producer.
type RecipeService struct {
	recipeRepo   repository.RecipeRepository
	ratingRepo   repository.RatingRepository
	favoriteRepo repository.FavoriteRepository
	cache        infrastructure.FilterCache      // optional
	publisher    infrastructure.MessagePublisher // optional
	renderer     infrastructure.DocumentRenderer
	tracker      *RecentRandomTracker
	sanitizer    *textSanitizer
	filterTTL    time.Duration
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	ratingRepo repository.RatingRepository,
	favoriteRepo repository.FavoriteRepository,
	cache infrastructure.FilterCache,
	publisher infrastructure.MessagePublisher,
	renderer infrastructure.DocumentRenderer,
	filterTTL time.Duration,
) *RecipeService {
	if filterTTL <= 0 {
		filterTTL = defaultFilterTTL
	}
	return &RecipeService{
		recipeRepo:   recipeRepo,
		ratingRepo:   ratingRepo,
		favoriteRepo: favoriteRepo,
		cache:        cache,
		publisher:    publisher,
		renderer:     renderer,
		tracker:      NewRecentRandomTracker(recentRandomCapacity),
		sanitizer:    newTextSanitizer(),
		filterTTL:    filterTTL,
	}
}

// Search returns one page of matches and the size of the whole filtered set.
// callerID enables favorite flags and may be nil.
func (s *RecipeService) Search(ctx context.Context, filters entity.SearchFilters, callerID *int64, limit, offset int) (*entity.RecipeListResponse, error) {
	filters = s.sanitizer.CleanFilters(filters)

	recipes, total, err := s.recipeRepo.Search(ctx, filters, callerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	metrics.RecipeSearches.Observe(float64(total))
	return &entity.RecipeListResponse{Total: total, Recipes: recipes}, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id int64, callerID *int64) (*entity.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	single := []entity.Recipe{*recipe}
	if err := s.markFavorites(ctx, callerID, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// PickRandom avoids the recently served ids and falls back to the whole
// catalog when nothing else is left. Returns nil for an empty catalog.
func (s *RecipeService) PickRandom(ctx context.Context, callerID *int64) (*entity.Recipe, error) {
	exclude := s.tracker.Snapshot()
	mode := "restricted"

	recipe, err := s.recipeRepo.PickRandom(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to pick random recipe: %w", err)
	}
	if recipe == nil && len(exclude) > 0 {
		mode = "fallback"
		recipe, err = s.recipeRepo.PickRandom(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to pick random recipe: %w", err)
		}
	}
	if recipe == nil {
		metrics.RandomPicks.WithLabelValues("empty").Inc()
		return nil, nil
	}

	s.tracker.Add(recipe.ID)
	metrics.RandomPicks.WithLabelValues(mode).Inc()

	single := []entity.Recipe{*recipe}
	if err := s.markFavorites(ctx, callerID, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// FilterOptions is served from Redis when cached; cache failures fall
// through to the database.
func (s *RecipeService) FilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFilterOptions(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read filter options from cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	opts, err := s.recipeRepo.FilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter options: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetFilterOptions(ctx, opts, s.filterTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache filter options")
		}
	}

	return opts, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, req *entity.CreateRecipeRequest, author string) (*entity.Recipe, error) {
	recipe := &entity.Recipe{
		Title:        s.sanitizer.Clean(req.Title),
		Description:  s.sanitizer.Clean(req.Description),
		Category:     s.sanitizer.Clean(req.Category),
		Cuisine:      s.sanitizer.Clean(req.Cuisine),
		Diet:         s.sanitizer.Clean(req.Diet),
		Allergens:    s.sanitizer.Clean(req.Allergens),
		Tags:         s.sanitizer.Clean(req.Tags),
		Servings:     req.Servings,
		TotalTimeMin: req.TotalTimeMin,
		Ingredients:  s.sanitizer.CleanList(req.Ingredients),
		Steps:        s.sanitizer.CleanList(req.Steps),
		Author:       author,
		Language:     "de",
		CreatedAt:    time.Now().UTC(),
	}

	switch {
	case recipe.Title == "":
		return nil, fmt.Errorf("%w: title is empty", ErrInvalidRecipe)
	case recipe.Description == "":
		return nil, fmt.Errorf("%w: description is empty", ErrInvalidRecipe)
	case len(recipe.Ingredients) == 0:
		return nil, fmt.Errorf("%w: ingredients must not be empty", ErrInvalidRecipe)
	case len(recipe.Steps) == 0:
		return nil, fmt.Errorf("%w: steps must not be empty", ErrInvalidRecipe)
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateRecipe
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	metrics.RecipesCreated.Inc()
	s.invalidateFilters(ctx)
	s.publishEvent(ctx, entity.RecipeEvent{
		EventType: entity.EventRecipeCreated,
		RecipeID:  recipe.ID,
		Title:     recipe.Title,
		Author:    recipe.Author,
	})

	return recipe, nil
}

// ImportRecipes stores a batch from the CSV importer in one transaction.
func (s *RecipeService) ImportRecipes(ctx context.Context, recipes []entity.Recipe, batchSize int) (int, error) {
	if len(recipes) == 0 {
		return 0, nil
	}

	if err := s.recipeRepo.CreateBatch(ctx, recipes, batchSize); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return 0, ErrDuplicateRecipe
		}
		return 0, fmt.Errorf("failed to import recipes: %w", err)
	}

	metrics.RecipesImported.Add(float64(len(recipes)))
	s.invalidateFilters(ctx)
	return len(recipes), nil
}

func (s *RecipeService) RenderPDF(ctx context.Context, id int64) ([]byte, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	data, err := s.renderer.RenderRecipe(recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to render recipe %d: %w", id, err)
	}
	return data, nil
}

// markFavorites sets IsFavorite with a single lookup for the whole page.
func (s *RecipeService) markFavorites(ctx context.Context, callerID *int64, recipes []entity.Recipe) error {
	for i := range recipes {
		recipes[i].IsFavorite = false
	}
	if callerID == nil || len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	favorites, err := s.favoriteRepo.FavoriteSet(ctx, *callerID, ids)
	if err != nil {
		return fmt.Errorf("failed to load favorite flags: %w", err)
	}

	for i := range recipes {
		recipes[i].IsFavorite = favorites[recipes[i].ID]
	}
	return nil
}

func (s *RecipeService) invalidateFilters(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFilterOptions(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate filter options cache")
	}
}

// publishEvent never fails the caller; the write is already committed.
func (s *RecipeService) publishEvent(ctx context.Context, event entity.RecipeEvent) {
	if s.publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal recipe event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(event.RecipeID, 10), data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Int64("recipe_id", event.RecipeID).
			Msg("Failed to publish recipe event")
	}
}
