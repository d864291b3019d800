package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

func TestParse_DatasetColumns(t *testing.T) {
	input := "titel,beschreibung,kategorie,kuche,ernahrung,portionen,gesamtzeit_min,kalorien_kcal,allergene,autor,zutaten_json,schritte_json,seo_slug\n" +
		`Spaghetti Carbonara,Klassisch,Hauptgericht,Italienisch,,4.0,25,650,"Ei, Milch",Team,"[""400g Spaghetti"",""4 Eier""]","[""Kochen"",""Mischen""]",spaghetti-carbonara` + "\n"

	recipes, err := Parse(strings.NewReader(input), Options{Author: "Import"})

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, "Spaghetti Carbonara", r.Title)
	assert.Equal(t, "Italienisch", r.Cuisine)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, 25, r.TotalTimeMin)
	require.NotNil(t, r.Calories)
	assert.Equal(t, 650, *r.Calories)
	assert.Nil(t, r.ProteinG)
	assert.Equal(t, "Ei, Milch", r.Allergens)
	assert.Equal(t, "Team", r.Author)
	assert.Equal(t, entity.StringList{"400g Spaghetti", "4 Eier"}, r.Ingredients)
	assert.Equal(t, entity.StringList{"Kochen", "Mischen"}, r.Steps)
	assert.Equal(t, "de", r.Language)
	require.NotNil(t, r.Slug)
	assert.Equal(t, "spaghetti-carbonara", *r.Slug)
}

func TestParse_DefaultsAndFallbackSplits(t *testing.T) {
	input := "title,portionen,gesamtzeit_min,zutaten,schritte,zutaten_json\n" +
		`Suppe,,abc,"Tomaten, Zwiebel ,, Salz",Schneiden. Kochen. ,not json` + "\n"

	recipes, err := Parse(strings.NewReader(input), Options{Author: "RecipeHub"})

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, 30, r.TotalTimeMin)
	assert.Equal(t, "RecipeHub", r.Author)
	assert.Equal(t, entity.StringList{"Tomaten", "Zwiebel", "Salz"}, r.Ingredients)
	assert.Equal(t, entity.StringList{"Schneiden", "Kochen"}, r.Steps)
	assert.Nil(t, r.Slug)
}

func TestParse_MissingTitleAndLists(t *testing.T) {
	recipes, err := Parse(strings.NewReader("kategorie\nDessert\n"), Options{})

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Unbekannt", recipes[0].Title)
	assert.NotNil(t, recipes[0].Ingredients)
	assert.Empty(t, recipes[0].Ingredients)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrNoHeader)

	recipes, err := Parse(strings.NewReader("titel,portionen\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestParse_ByteOrderMark(t *testing.T) {
	recipes, err := Parse(strings.NewReader("\ufefftitel\nBrot\n"), Options{})

	require.NoError(t, err)
	assert.Equal(t, "Brot", recipes[0].Title)
}

func TestLenientInt(t *testing.T) {
	assert.Equal(t, 12, lenientInt("12", 0))
	assert.Equal(t, 12, lenientInt("12.0", 0))
	assert.Equal(t, 12, lenientInt("12,7", 0))
	assert.Equal(t, 7, lenientInt("", 7))
	assert.Equal(t, 7, lenientInt("n/a", 7))
	assert.Equal(t, 7, lenientInt("NaN", 7))
}
