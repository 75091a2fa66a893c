package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/importer"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	th "github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestImportIngredients(t *testing.T) {
	db := th.NewSQLiteDB(t)
	th.CreateIngredient(t, db, "salt", "g")
	im := importer.New(db, service.NewValidator())

	input := strings.Join([]string{
		"name,measurement_unit",
		"salt,g",
		"sugar,g",
		"sugar,tbsp",
		`"olive oil, extra virgin",ml`,
		",g",
		"lonely",
		"sugar,g",
	}, "\n")

	res, err := im.Ingredients(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 2, res.Existing)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 6, res.Failed[0].Row)
	var required *apperrors.RequiredFieldError
	assert.ErrorAs(t, res.Failed[0].Err, &required)
	assert.Equal(t, 7, res.Failed[1].Row)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	var oil models.Ingredient
	require.NoError(t, db.Where("measurement_unit = ?", "ml").First(&oil).Error)
	assert.Equal(t, "olive oil, extra virgin", oil.Name)
}

func TestImportIngredientsWithoutHeader(t *testing.T) {
	db := th.NewSQLiteDB(t)
	im := importer.New(db, service.NewValidator())

	res, err := im.Ingredients(context.Background(), strings.NewReader("flour,g\nmilk,ml\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Failed)
	assert.Equal(t, "2 created, 0 already present, 0 failed", res.String())
}

func TestImportIngredientsStopsOnMalformedCSV(t *testing.T) {
	im := importer.New(th.NewSQLiteDB(t), service.NewValidator())
	_, err := im.Ingredients(context.Background(), strings.NewReader("flour,g\n\"unterminated,g\n"))
	assert.Error(t, err)
}

func TestImportTags(t *testing.T) {
	db := th.NewSQLiteDB(t)
	th.CreateTag(t, db, "Breakfast", "breakfast")
	im := importer.New(db, service.NewValidator())

	input := `
- name: Breakfast
  color: "#E26C2D"
  slug: breakfast
- name: Lunch
  color: "#49B64E"
  slug: lunch
- name: Dinner
  color: purple
  slug: dinner
`
	res, err := im.Tags(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Existing)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 3, res.Failed[0].Row)
	var format *apperrors.FormatError
	assert.ErrorAs(t, res.Failed[0].Err, &format)

	var lunch models.Tag
	require.NoError(t, db.Where("slug = ?", "lunch").First(&lunch).Error)
	assert.Equal(t, "#49B64E", lunch.Color)
}

func TestImportTagsRejectsBadYAML(t *testing.T) {
	im := importer.New(th.NewSQLiteDB(t), service.NewValidator())
	_, err := im.Tags(context.Background(), strings.NewReader("name: [unclosed"))
	assert.Error(t, err)
}
