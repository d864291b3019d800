package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name  string
		stars []int64
		want  float64
	}{
		{name: "no ratings", stars: nil, want: 0},
		{name: "single", stars: []int64{3}, want: 3.0},
		{name: "five and three", stars: []int64{5, 3}, want: 4.0},
		{name: "rounds up", stars: []int64{4, 5, 5}, want: 4.7},
		{name: "rounds down", stars: []int64{1, 1, 2}, want: 1.3},
		{name: "all max", stars: []int64{5, 5, 5, 5}, want: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sum int64
			for _, s := range tt.stars {
				sum += s
			}
			assert.Equal(t, tt.want, Average(sum, int64(len(tt.stars))))
		})
	}
}

func TestAverage_HalfRoundsUp(t *testing.T) {
	// 85/20 = 4.25 exactly
	assert.Equal(t, 4.3, Average(85, 20))
	// 87/20 = 4.35, not representable as a float64
	assert.Equal(t, 4.4, Average(87, 20))
	// 7/4 = 1.75
	assert.Equal(t, 1.8, Average(7, 4))
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(0))
	assert.True(t, Valid(1))
	assert.True(t, Valid(5))
	assert.False(t, Valid(6))
}

func newAggregateDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec(`CREATE TABLE recipes (id INTEGER PRIMARY KEY, avg_rating REAL NOT NULL DEFAULT 0, ratings_count INTEGER NOT NULL DEFAULT 0)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE ratings (id INTEGER PRIMARY KEY, user_id INTEGER, recipe_id INTEGER, stars INTEGER)`).Error)
	return db
}

func storedAggregate(t *testing.T, db *gorm.DB, recipeID int64) Aggregate {
	t.Helper()
	var agg Aggregate
	require.NoError(t, db.Table("recipes").Select("avg_rating, ratings_count").Where("id = ?", recipeID).Scan(&agg).Error)
	return agg
}

func TestRecompute(t *testing.T) {
	db := newAggregateDB(t)
	require.NoError(t, db.Exec(`INSERT INTO recipes (id, avg_rating, ratings_count) VALUES (1, 1.0, 9), (2, 0, 0)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO ratings (user_id, recipe_id, stars) VALUES (1, 1, 4), (2, 1, 5), (3, 1, 5), (1, 2, 1)`).Error)

	agg, err := Recompute(db, 1)

	require.NoError(t, err)
	assert.Equal(t, Aggregate{AvgRating: 4.7, RatingsCount: 3}, agg)
	assert.Equal(t, agg, storedAggregate(t, db, 1))
	assert.Equal(t, Aggregate{}, storedAggregate(t, db, 2))
}

func TestRecompute_NoRatingsResetsToZero(t *testing.T) {
	db := newAggregateDB(t)
	require.NoError(t, db.Exec(`INSERT INTO recipes (id, avg_rating, ratings_count) VALUES (5, 3.5, 2)`).Error)

	agg, err := Recompute(db, 5)

	require.NoError(t, err)
	assert.Equal(t, Aggregate{}, agg)
	assert.Equal(t, Aggregate{}, storedAggregate(t, db, 5))
}

func TestRecompute_MissingRecipeIsNoop(t *testing.T) {
	db := newAggregateDB(t)

	_, err := Recompute(db, 404)

	assert.NoError(t, err)
}
