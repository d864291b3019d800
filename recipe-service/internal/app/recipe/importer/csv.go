// Package importer turns the recipe CSV export into recipe records.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"recipehub/pkg/logger"
	"recipehub/recipe-service/internal/app/recipe/entity"
)

const (
	defaultServings  = 4
	defaultTotalTime = 30
	defaultLanguage  = "de"
	untitled         = "Unbekannt"
)

// columns lists the accepted header names per field, the dataset's own first.
var columns = map[string][]string{
	"title":        {"titel", "title"},
	"description":  {"beschreibung", "description"},
	"category":     {"kategorie", "category"},
	"target_group": {"zielgruppe", "target_group"},
	"cuisine":      {"kuche", "cuisine"},
	"diet":         {"ernahrung", "diet"},
	"difficulty":   {"schwierigkeitsgrad", "difficulty"},
	"servings":     {"portionen", "servings"},
	"prep_time":    {"vorbereitungszeit_min", "prep_time_min"},
	"cook_time":    {"kochzeit_min", "cook_time_min"},
	"total_time":   {"gesamtzeit_min", "total_time_min"},
	"calories":     {"kalorien_kcal", "calories"},
	"protein":      {"protein_g"},
	"carbs":        {"kohlenhydrate_g", "carbs_g"},
	"fat":          {"fett_g", "fat_g"},
	"allergens":    {"allergene", "allergens"},
	"tags":         {"tags"},
	"author":       {"autor", "author"},
	"ingredients":  {"zutaten_json", "ingredients_json"},
	"ingr_plain":   {"zutaten", "ingredients"},
	"steps":        {"schritte_json", "steps_json"},
	"steps_plain":  {"schritte", "steps"},
	"language":     {"sprache", "language"},
	"slug":         {"seo_slug", "slug"},
}

var ErrNoHeader = errors.New("csv has no header row")

type Options struct {
	// Author is used for rows without an author column value
	Author string
}

type row struct {
	index  map[string]int
	record []string
}

func (r row) get(field string) string {
	for _, name := range columns[field] {
		if i, ok := r.index[name]; ok && i < len(r.record) {
			if v := strings.TrimSpace(r.record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

// Parse reads every data row. Malformed list cells fall back to the plain
// columns; malformed numbers fall back to defaults.
func Parse(r io.Reader, opts Options) ([]entity.Recipe, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}

	now := time.Now().UTC()
	recipes := make([]entity.Recipe, 0)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		recipe := buildRecipe(row{index: index, record: record}, opts, now)
		if len(recipe.Ingredients) == 0 {
			logger.Warn().Int("line", line).Str("title", recipe.Title).Msg("Recipe without ingredients imported")
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

func buildRecipe(r row, opts Options, now time.Time) entity.Recipe {
	recipe := entity.Recipe{
		Title:        orDefault(r.get("title"), untitled),
		Description:  r.get("description"),
		Category:     r.get("category"),
		TargetGroup:  r.get("target_group"),
		Cuisine:      r.get("cuisine"),
		Diet:         r.get("diet"),
		Difficulty:   r.get("difficulty"),
		Servings:     lenientInt(r.get("servings"), defaultServings),
		PrepTimeMin:  lenientInt(r.get("prep_time"), 0),
		CookTimeMin:  lenientInt(r.get("cook_time"), 0),
		TotalTimeMin: lenientInt(r.get("total_time"), defaultTotalTime),
		Calories:     lenientIntPtr(r.get("calories")),
		ProteinG:     lenientIntPtr(r.get("protein")),
		CarbsG:       lenientIntPtr(r.get("carbs")),
		FatG:         lenientIntPtr(r.get("fat")),
		Allergens:    r.get("allergens"),
		Tags:         r.get("tags"),
		Author:       orDefault(r.get("author"), opts.Author),
		Ingredients:  parseList(r.get("ingredients"), r.get("ingr_plain"), ","),
		Steps:        parseList(r.get("steps"), r.get("steps_plain"), "."),
		Language:     orDefault(r.get("language"), defaultLanguage),
		CreatedAt:    now,
	}
	if slug := r.get("slug"); slug != "" {
		recipe.Slug = &slug
	}
	return recipe
}

// parseList prefers the JSON cell and otherwise splits the plain cell.
func parseList(jsonCell, plainCell, sep string) entity.StringList {
	if jsonCell != "" {
		var items []string
		if err := json.Unmarshal([]byte(jsonCell), &items); err == nil {
			return trimItems(items)
		}
	}
	if plainCell != "" {
		return trimItems(strings.Split(plainCell, sep))
	}
	return entity.StringList{}
}

func trimItems(items []string) entity.StringList {
	out := make(entity.StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// lenientInt accepts "12" and "12.0"; anything else yields def.
func lenientInt(s string, def int) int {
	if v, ok := parseLenient(s); ok {
		return v
	}
	return def
}

func lenientIntPtr(s string) *int {
	if v, ok := parseLenient(s); ok {
		return &v
	}
	return nil
}

func parseLenient(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
