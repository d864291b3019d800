// Package rating holds the aggregate math shared by the recipe service and
// the GDPR worker when a recipe's ratings change.
package rating

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	MinStars = 1
	MaxStars = 5
)

// Valid reports whether stars is within the accepted range.
func Valid(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// Average returns sum/count rounded half-up to one decimal place.
// The rounding is done in integers so 4.25 becomes 4.3, not 4.2.
func Average(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}

// Aggregate is the derived score stored on a recipe.
type Aggregate struct {
	AvgRating    float64
	RatingsCount int64
}

// Recompute rewrites avg_rating and ratings_count of one recipe from the
// ratings table. The caller must hold the recipe's row lock in tx. A
// missing recipe row updates nothing.
func Recompute(tx *gorm.DB, recipeID int64) (Aggregate, error) {
	var totals struct {
		TotalStars   int64
		TotalRatings int64
	}
	err := tx.Table("ratings").
		Select("COALESCE(SUM(stars), 0) AS total_stars, COUNT(*) AS total_ratings").
		Where("recipe_id = ?", recipeID).
		Scan(&totals).Error
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	agg := Aggregate{
		AvgRating:    Average(totals.TotalStars, totals.TotalRatings),
		RatingsCount: totals.TotalRatings,
	}
	err = tx.Table("recipes").
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{
			"avg_rating":    agg.AvgRating,
			"ratings_count": agg.RatingsCount,
		}).Error
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to update recipe aggregate: %w", err)
	}
	return agg, nil
}
