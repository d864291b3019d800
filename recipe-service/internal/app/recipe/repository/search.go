package repository

import (
	"strings"

	"gorm.io/gorm"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

// predicate is one parameterized WHERE fragment; a search ANDs all of them.
type predicate struct {
	sql  string
	args []interface{}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func buildSearchPredicates(f entity.SearchFilters) []predicate {
	var preds []predicate

	if f.Query != "" {
		p := containsPattern(f.Query)
		preds = append(preds, predicate{
			sql:  `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(ingredients_json) LIKE ? ESCAPE '\')`,
			args: []interface{}{p, p, p},
		})
	}
	if f.Cuisine != "" {
		preds = append(preds, predicate{sql: `LOWER(cuisine) LIKE ? ESCAPE '\'`, args: []interface{}{containsPattern(f.Cuisine)}})
	}
	if f.Diet != "" {
		preds = append(preds, predicate{sql: `LOWER(diet) LIKE ? ESCAPE '\'`, args: []interface{}{containsPattern(f.Diet)}})
	}
	if f.Category != "" {
		preds = append(preds, predicate{sql: `LOWER(category) LIKE ? ESCAPE '\'`, args: []interface{}{containsPattern(f.Category)}})
	}
	if f.MaxTime != nil {
		preds = append(preds, predicate{sql: "total_time_min <= ?", args: []interface{}{*f.MaxTime}})
	}
	if f.MinTime != nil {
		preds = append(preds, predicate{sql: "total_time_min >= ?", args: []interface{}{*f.MinTime}})
	}
	if f.MinServings != nil {
		preds = append(preds, predicate{sql: "servings >= ?", args: []interface{}{*f.MinServings}})
	}
	if f.MaxServings != nil {
		preds = append(preds, predicate{sql: "servings <= ?", args: []interface{}{*f.MaxServings}})
	}
	if f.ExcludeAllergen != "" {
		// missing allergen data counts as safe
		preds = append(preds, predicate{
			sql:  `(allergens IS NULL OR allergens = '' OR LOWER(allergens) NOT LIKE ? ESCAPE '\')`,
			args: []interface{}{containsPattern(f.ExcludeAllergen)},
		})
	}

	return preds
}

func applyPredicates(db *gorm.DB, preds []predicate) *gorm.DB {
	for _, p := range preds {
		db = db.Where(p.sql, p.args...)
	}
	return db
}
