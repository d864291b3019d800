package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

// newTestDB opens a private in-memory database with the recipe schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Recipe{}, &entity.Rating{}, &entity.Favorite{}))
	return db
}

func seedRecipe(t *testing.T, db *gorm.DB, r entity.Recipe) entity.Recipe {
	t.Helper()
	if r.Ingredients == nil {
		r.Ingredients = entity.StringList{}
	}
	if r.Steps == nil {
		r.Steps = entity.StringList{}
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func intPtr(v int) *int { return &v }
