package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipehub/pkg/logger"
	"recipehub/recipe-service/internal/app/recipe/config"
	"recipehub/recipe-service/internal/app/recipe/entity"
)

const connectAttempts = 10

// Connect opens the shared recipehub database, retrying while the server
// is still starting up.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(time.Minute)
					return db, nil
				}
				sqlDB.Close()
			} else {
				err = dbErr
			}
		}

		logger.Warn().
			Err(err).
			Int("attempt", i+1).
			Int("max_attempts", connectAttempts).
			Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

// Migrate creates or updates the recipes, ratings and favorites tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Recipe{}, &entity.Rating{}, &entity.Favorite{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
