// Command import loads a recipe CSV file into the catalog.
//
//	go run ./recipe-service/cmd/import -file rezepte_100.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"recipehub/pkg/logger"
	"recipehub/recipe-service/internal/app/recipe/config"
	"recipehub/recipe-service/internal/app/recipe/importer"
	"recipehub/recipe-service/internal/app/recipe/infrastructure"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/cache"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/database"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/document"
	"recipehub/recipe-service/internal/app/recipe/repository"
	"recipehub/recipe-service/internal/app/recipe/service"
)

func main() {
	file := flag.String("file", "rezepte_100.csv", "path to the recipe CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init("recipe-import", cfg.Logging.Level)

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("Failed to open CSV file")
	}
	defer f.Close()

	recipes, err := importer.Parse(f, importer.Options{Author: cfg.Import.Author})
	if err != nil {
		logger.Fatal().Err(err).Str("file", *file).Msg("Failed to parse CSV file")
	}
	logger.Info().Int("rows", len(recipes)).Str("file", *file).Msg("CSV parsed")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	var filterCache infrastructure.FilterCache
	if redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, cached filter options expire on their own")
	} else {
		defer redisClient.Close()
		filterCache = redisClient
	}

	recipeService := service.NewRecipeService(
		repository.NewRecipeRepository(db),
		repository.NewRatingRepository(db),
		repository.NewFavoriteRepository(db),
		filterCache,
		nil,
		document.NewPDFRenderer(),
		cfg.Redis.FilterTTL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	imported, err := recipeService.ImportRecipes(ctx, recipes, cfg.Import.BatchSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("Import failed, no rows were written")
	}

	logger.Info().
		Int("imported", imported).
		Dur("duration", time.Since(start)).
		Msg("Import finished")
}
