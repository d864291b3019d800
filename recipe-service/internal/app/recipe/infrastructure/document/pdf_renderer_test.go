package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

func TestPDFRenderer_RenderRecipe(t *testing.T) {
	recipe := &entity.Recipe{
		ID:           7,
		Title:        "Käsespätzle",
		Category:     "Hauptgericht",
		Cuisine:      "Deutsch",
		TotalTimeMin: 45,
		Ingredients:  entity.StringList{"400 g Spätzle", "200 g Bergkäse"},
		Steps:        entity.StringList{"Spätzle kochen.", "Mit Käse schichten."},
		Author:       "anna",
	}

	data, err := NewPDFRenderer().RenderRecipe(recipe)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
}

func TestPDFRenderer_ManyStepsBreakPages(t *testing.T) {
	steps := make(entity.StringList, 0, 150)
	for i := 0; i < 150; i++ {
		steps = append(steps, strings.Repeat("Rühren ", 30))
	}
	recipe := &entity.Recipe{Title: "Long", Steps: steps}

	data, err := NewPDFRenderer().RenderRecipe(recipe)
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(data, []byte("/Type /Page\n")), 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "äöü", truncate("äöüß", 3))
	assert.Equal(t, 80, len([]rune(truncate(strings.Repeat("x", 200), maxTitleRunes))))
}
