package service

import "errors"

var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrInvalidStars    = errors.New("stars must be between 1 and 5")
	ErrInvalidRecipe   = errors.New("invalid recipe")
	ErrDuplicateRecipe = errors.New("recipe already exists")
)
