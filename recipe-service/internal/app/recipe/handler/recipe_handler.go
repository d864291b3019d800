package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"recipehub/pkg/logger"
	"recipehub/recipe-service/internal/app/recipe/entity"
	"recipehub/recipe-service/internal/app/recipe/service"
)

const defaultSearchLimit = 50

type RecipeServiceInterface interface {
	Search(ctx context.Context, filters entity.SearchFilters, callerID *int64, limit, offset int) (*entity.RecipeListResponse, error)
	GetRecipe(ctx context.Context, id int64, callerID *int64) (*entity.Recipe, error)
	PickRandom(ctx context.Context, callerID *int64) (*entity.Recipe, error)
	FilterOptions(ctx context.Context) (*entity.FilterOptions, error)
	CreateRecipe(ctx context.Context, req *entity.CreateRecipeRequest, author string) (*entity.Recipe, error)
	SubmitRating(ctx context.Context, userID, recipeID int64, stars int) (*entity.Rating, error)
	ToggleFavorite(ctx context.Context, userID, recipeID int64) (bool, error)
	ListFavorites(ctx context.Context, userID int64) (*entity.RecipeListResponse, error)
	RenderPDF(ctx context.Context, id int64) ([]byte, error)
}

type RecipeHandler struct {
	recipeService RecipeServiceInterface
	validator     *validator.Validate
}

func NewRecipeHandler(recipeService RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		validator:     validator.New(),
	}
}

// Search handles GET /api/v1/recipes/search
func (h *RecipeHandler) Search(c *gin.Context) {
	var req entity.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", formatValidationError(err))
		return
	}

	limit, offset := defaultSearchLimit, 0
	if req.Limit != nil {
		limit = *req.Limit
	}
	if req.Offset != nil {
		offset = *req.Offset
	}

	filters := entity.SearchFilters{
		Query:           req.Query,
		Cuisine:         req.Cuisine,
		Diet:            req.Diet,
		Category:        req.Category,
		ExcludeAllergen: req.ExcludeAllergen,
		MinTime:         req.MinTime,
		MaxTime:         req.MaxTime,
		MinServings:     req.MinServings,
		MaxServings:     req.MaxServings,
	}

	result, err := h.recipeService.Search(c.Request.Context(), filters, callerID(c), limit, offset)
	if err != nil {
		logger.Error().Err(err).Msg("Recipe search failed")
		respondError(c, http.StatusInternalServerError, "Failed to search recipes", "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Random handles GET /api/v1/recipes/random
func (h *RecipeHandler) Random(c *gin.Context) {
	recipe, err := h.recipeService.PickRandom(c.Request.Context(), callerID(c))
	if err != nil {
		logger.Error().Err(err).Msg("Random recipe failed")
		respondError(c, http.StatusInternalServerError, "Failed to pick random recipe", "")
		return
	}
	if recipe == nil {
		respondError(c, http.StatusNotFound, "No recipes available", "")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// Filters handles GET /api/v1/recipes/filters
func (h *RecipeHandler) Filters(c *gin.Context) {
	opts, err := h.recipeService.FilterOptions(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Filter options failed")
		respondError(c, http.StatusInternalServerError, "Failed to load filter options", "")
		return
	}

	c.JSON(http.StatusOK, opts)
}

// GetRecipe handles GET /api/v1/recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id, callerID(c))
	if err != nil {
		h.respondServiceError(c, err, "Failed to get recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe handles POST /api/v1/recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	username := c.GetString(ctxUsername)

	var req entity.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", formatValidationError(err))
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), &req, username)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create recipe")
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// Rate handles POST /api/v1/recipes/:id/rate
func (h *RecipeHandler) Rate(c *gin.Context) {
	userID := callerID(c)
	if userID == nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	var req entity.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", formatValidationError(err))
		return
	}

	saved, err := h.recipeService.SubmitRating(c.Request.Context(), *userID, id, req.Stars)
	if err != nil {
		h.respondServiceError(c, err, "Failed to save rating")
		return
	}

	c.JSON(http.StatusCreated, entity.RatingResponse{
		Message: "Rating saved",
		Rating:  saved,
	})
}

// ToggleFavorite handles POST /api/v1/recipes/:id/favorite
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	userID := callerID(c)
	if userID == nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	favorited, err := h.recipeService.ToggleFavorite(c.Request.Context(), *userID, id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to toggle favorite")
		return
	}

	c.JSON(http.StatusCreated, entity.FavoriteResponse{IsFavorite: favorited})
}

// MyFavorites handles GET /api/v1/recipes/favorites/me
func (h *RecipeHandler) MyFavorites(c *gin.Context) {
	userID := callerID(c)
	if userID == nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	result, err := h.recipeService.ListFavorites(c.Request.Context(), *userID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to list favorites")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportPDF handles GET /api/v1/recipes/:id/pdf
func (h *RecipeHandler) ExportPDF(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	data, err := h.recipeService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to render PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="recipe_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *RecipeHandler) respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		respondError(c, http.StatusNotFound, "Recipe not found", "")
	case errors.Is(err, service.ErrInvalidStars), errors.Is(err, service.ErrInvalidRecipe):
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, service.ErrDuplicateRecipe):
		respondError(c, http.StatusConflict, "Recipe already exists", "")
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback, "")
	}
}

func parseRecipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid recipe ID", "")
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, status int, message, details string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
