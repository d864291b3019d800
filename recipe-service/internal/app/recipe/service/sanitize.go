package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

// textSanitizer strips every HTML tag and returns plain text.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Clean(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	// bluemonday escapes entities; values are stored and served as plain text
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// CleanList drops items that are blank after cleaning.
func (s *textSanitizer) CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := s.Clean(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func (s *textSanitizer) CleanFilters(f entity.SearchFilters) entity.SearchFilters {
	f.Query = s.Clean(f.Query)
	f.Cuisine = s.Clean(f.Cuisine)
	f.Diet = s.Clean(f.Diet)
	f.Category = s.Clean(f.Category)
	f.ExcludeAllergen = s.Clean(f.ExcludeAllergen)
	return f
}
