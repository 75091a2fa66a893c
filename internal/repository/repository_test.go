package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	th "github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestCartTotalsGroupsByIngredientID(t *testing.T) {
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	author := th.CreateUser(t, db, "author")
	buyer := th.CreateUser(t, db, "buyer")
	vegan := th.CreateTag(t, db, "Vegan", "vegan")
	tomato := th.CreateIngredient(t, db, "tomato", "g")
	oil := th.CreateIngredient(t, db, "oil", "ml")
	tomatoPieces := th.CreateIngredient(t, db, "tomato", "pcs")

	salad := th.CreateRecipe(t, db, author, "Salad", []*models.Tag{vegan}, th.Amount{Ingredient: tomato, Amount: 2}, th.Amount{Ingredient: oil, Amount: 1})
	soup := th.CreateRecipe(t, db, author, "Soup", []*models.Tag{vegan}, th.Amount{Ingredient: tomato, Amount: 3}, th.Amount{Ingredient: tomatoPieces, Amount: 4})
	th.CreateRecipe(t, db, author, "Not in cart", []*models.Tag{vegan}, th.Amount{Ingredient: oil, Amount: 100})

	require.NoError(t, repos.Relations.CreateCartItem(ctx, buyer.ID, salad.ID))
	require.NoError(t, repos.Relations.CreateCartItem(ctx, buyer.ID, soup.ID))

	totals, err := repos.Relations.CartTotals(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []repository.IngredientTotal{
		{IngredientID: tomato.ID, Name: "tomato", MeasurementUnit: "g", Amount: 5},
		{IngredientID: oil.ID, Name: "oil", MeasurementUnit: "ml", Amount: 1},
		{IngredientID: tomatoPieces.ID, Name: "tomato", MeasurementUnit: "pcs", Amount: 4},
	}, totals)

	empty, err := repos.Relations.CartTotals(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEdgesAreUniqueAndDeletable(t *testing.T) {
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	user := th.CreateUser(t, db, "user")
	author := th.CreateUser(t, db, "author")
	recipe := th.CreateRecipe(t, db, author, "Toast", nil)

	require.NoError(t, repos.Relations.CreateFavorite(ctx, user.ID, recipe.ID))
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, repos.Relations.CreateFavorite(ctx, user.ID, recipe.ID), &conflict)

	// cart edges are independent of favorites
	require.NoError(t, repos.Relations.CreateCartItem(ctx, user.ID, recipe.ID))

	require.NoError(t, repos.Relations.CreateFollow(ctx, user.ID, author.ID))
	assert.ErrorAs(t, repos.Relations.CreateFollow(ctx, user.ID, author.ID), &conflict)

	followed, err := repos.Relations.FollowedAmong(ctx, user.ID, []uint{author.ID, user.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{author.ID: true}, followed)

	require.NoError(t, repos.Relations.DeleteFavorite(ctx, user.ID, recipe.ID))
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, repos.Relations.DeleteFavorite(ctx, user.ID, recipe.ID), &notFound)
	assert.ErrorAs(t, repos.Relations.DeleteFollow(ctx, author.ID, user.ID), &notFound)

	inCart, err := repos.Relations.CartItemExists(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, inCart)
}

func TestRecipeListFilters(t *testing.T) {
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	alice := th.CreateUser(t, db, "alice")
	bob := th.CreateUser(t, db, "bob")
	breakfast := th.CreateTag(t, db, "Breakfast", "breakfast")
	dinner := th.CreateTag(t, db, "Dinner", "dinner")
	egg := th.CreateIngredient(t, db, "egg", "pcs")

	omelette := th.CreateRecipe(t, db, alice, "Omelette", []*models.Tag{breakfast}, th.Amount{Ingredient: egg, Amount: 2})
	stew := th.CreateRecipe(t, db, alice, "Stew", []*models.Tag{dinner}, th.Amount{Ingredient: egg, Amount: 1})
	both := th.CreateRecipe(t, db, bob, "Brunch", []*models.Tag{breakfast, dinner}, th.Amount{Ingredient: egg, Amount: 3})

	ids := func(recipes []models.Recipe) []uint {
		out := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		return out
	}

	all, count, err := repos.Recipes.List(ctx, repository.RecipeFilter{}, repository.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, []uint{both.ID, stew.ID, omelette.ID}, ids(all))

	tagged, count, err := repos.Recipes.List(ctx, repository.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, repository.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count, "a recipe matching two slugs is listed once")
	assert.Len(t, tagged, 3)

	byAuthor, _, err := repos.Recipes.List(ctx, repository.RecipeFilter{AuthorID: alice.ID, TagSlugs: []string{"breakfast"}}, repository.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{omelette.ID}, ids(byAuthor))

	require.NoError(t, repos.Relations.CreateFavorite(ctx, bob.ID, stew.ID))
	favs, _, err := repos.Recipes.List(ctx, repository.RecipeFilter{FavoritedBy: bob.ID}, repository.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{stew.ID}, ids(favs))

	page2, count, err := repos.Recipes.List(ctx, repository.RecipeFilter{}, repository.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, []uint{omelette.ID}, ids(page2))

	detailed, err := repos.Recipes.GetByID(ctx, both.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", detailed.Author.Username)
	assert.Len(t, detailed.Tags, 2)
	require.Len(t, detailed.Ingredients, 1)
	assert.Equal(t, "egg", detailed.Ingredients[0].Ingredient.Name)
}

func TestRecipeDeleteCascades(t *testing.T) {
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	author := th.CreateUser(t, db, "author")
	fan := th.CreateUser(t, db, "fan")
	tag := th.CreateTag(t, db, "Lunch", "lunch")
	rice := th.CreateIngredient(t, db, "rice", "g")
	recipe := th.CreateRecipe(t, db, author, "Rice", []*models.Tag{tag}, th.Amount{Ingredient: rice, Amount: 200})
	require.NoError(t, repos.Relations.CreateFavorite(ctx, fan.ID, recipe.ID))
	require.NoError(t, repos.Relations.CreateCartItem(ctx, fan.ID, recipe.ID))

	require.NoError(t, repos.Recipes.Delete(ctx, recipe.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, db.Model(&models.Favorite{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, db.Table("recipe_tags").Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err := repos.Recipes.GetByID(ctx, recipe.ID)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.ErrorAs(t, repos.Recipes.Delete(ctx, recipe.ID), &notFound)
}

func TestIngredientSearchAndGetOrCreate(t *testing.T) {
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	first, created, err := repos.Ingredients.GetOrCreate(ctx, "sugar", "g")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repos.Ingredients.GetOrCreate(ctx, "sugar", "g")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, created, err = repos.Ingredients.GetOrCreate(ctx, "sugar", "tbsp")
	require.NoError(t, err)
	assert.True(t, created, "same name with another unit is a different ingredient")

	th.CreateIngredient(t, db, "salt", "g")
	th.CreateIngredient(t, db, "100%_juice", "ml")

	found, err := repos.Ingredients.List(ctx, "SU")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	literal, err := repos.Ingredients.List(ctx, "100%_")
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	tag := models.Tag{Name: "Quick", Color: "#E26C2D", Slug: "quick"}
	created, err = repos.Tags.GetOrCreate(ctx, &tag)
	require.NoError(t, err)
	assert.True(t, created)
	dup := models.Tag{Name: "Other", Color: "#000000", Slug: "quick"}
	created, err = repos.Tags.GetOrCreate(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Quick", dup.Name)
}
