package service_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	th "github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const storedImageURL = "https://images.test/recipes/uploaded.png"

var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	repos     *repository.Repositories
	images    *mocks.MockImageStore
	recipes   *service.RecipeService
	relations *service.RelationService
	users     *service.UserService
	lists     *service.ShoppingListService

	author *models.User
	reader *models.User
	vegan  *models.Tag
	quick  *models.Tag
	tomato *models.Ingredient
	oil    *models.Ingredient
	salt   *models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := th.NewSQLiteDB(t)
	repos := repository.New(db)
	images := new(mocks.MockImageStore)
	images.On("Save", mock.Anything, []byte("png-bytes"), "image/png").Return(storedImageURL, nil).Maybe()
	v := service.NewValidator()

	return &fixture{
		ctx:       context.Background(),
		db:        db,
		repos:     repos,
		images:    images,
		recipes:   service.NewRecipeService(db, repos, v, images),
		relations: service.NewRelationService(repos),
		users:     service.NewUserService(repos),
		lists:     service.NewShoppingListService(repos.Relations),

		author: th.CreateUser(t, db, "author"),
		reader: th.CreateUser(t, db, "reader"),
		vegan:  th.CreateTag(t, db, "Vegan", "vegan"),
		quick:  th.CreateTag(t, db, "Quick", "quick"),
		tomato: th.CreateIngredient(t, db, "tomato", "g"),
		oil:    th.CreateIngredient(t, db, "oil", "ml"),
		salt:   th.CreateIngredient(t, db, "salt", "g"),
	}
}

func (f *fixture) as(u *models.User) service.Principal {
	return service.Principal{UserID: u.ID}
}

// saladRequest is a valid submission: tomato 2, oil 1, tagged vegan.
func (f *fixture) saladRequest() *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:        "Salad",
		Text:        "Chop and dress.",
		CookingTime: th.Ptr(15),
		Image:       pngDataURI,
		Tags:        []uint{f.vegan.ID},
		Ingredients: []types.IngredientAmount{
			{ID: f.tomato.ID, Amount: 2},
			{ID: f.oil.ID, Amount: 1},
		},
	}
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func amountsOf(view *types.RecipeView) map[uint]int {
	out := make(map[uint]int, len(view.Ingredients))
	for _, ing := range view.Ingredients {
		out[ing.ID] = ing.Amount
	}
	return out
}
