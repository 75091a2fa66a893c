package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	th "github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSubscriptionsEmbedLimitedRecipes(t *testing.T) {
	f := newFixture(t)
	chef := th.CreateUser(t, f.db, "chef")
	for _, name := range []string{"One", "Two", "Three"} {
		th.CreateRecipe(t, f.db, f.author, name, []*models.Tag{f.vegan})
	}
	th.CreateRecipe(t, f.db, chef, "Chef special", []*models.Tag{f.quick})

	reader := f.as(f.reader)
	require.NoError(t, f.relations.Follow(f.ctx, reader, f.author.ID))
	require.NoError(t, f.relations.Follow(f.ctx, reader, chef.ID))

	subs, count, err := f.users.Subscriptions(f.ctx, reader, repository.Page{Number: 1, Size: 10}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, subs, 2)

	assert.Equal(t, f.author.ID, subs[0].ID)
	assert.True(t, subs[0].IsSubscribed)
	assert.Equal(t, int64(3), subs[0].RecipesCount)
	require.Len(t, subs[0].Recipes, 2)
	assert.Equal(t, "Three", subs[0].Recipes[0].Name)

	assert.Equal(t, chef.ID, subs[1].ID)
	assert.Equal(t, int64(1), subs[1].RecipesCount)

	all, _, err := f.users.Subscriptions(f.ctx, reader, repository.Page{}, 0)
	require.NoError(t, err)
	assert.Len(t, all[0].Recipes, 3)

	one, err := f.users.Subscription(f.ctx, reader, chef.ID, 1)
	require.NoError(t, err)
	assert.True(t, one.IsSubscribed)
	assert.Len(t, one.Recipes, 1)
}

func TestUserViewsCarrySubscriptionFlag(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.relations.Follow(f.ctx, f.as(f.reader), f.author.ID))

	view, err := f.users.Get(f.ctx, f.as(f.reader), f.author.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	view, err = f.users.Get(f.ctx, service.Anonymous(), f.author.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	users, count, err := f.users.List(f.ctx, f.as(f.reader), repository.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, users, 1)
	assert.Equal(t, f.author.ID, users[0].ID)
	assert.True(t, users[0].IsSubscribed)

	me, err := f.users.Me(f.ctx, f.as(f.reader))
	require.NoError(t, err)
	assert.Equal(t, "reader", me.Username)
	assert.Equal(t, "reader@example.com", me.Email)

	var unauthorized *apperrors.UnauthorizedError
	_, err = f.users.Me(f.ctx, service.Anonymous())
	assert.ErrorAs(t, err, &unauthorized)

	var notFound *apperrors.NotFoundError
	_, err = f.users.Get(f.ctx, service.Anonymous(), 424242)
	assert.ErrorAs(t, err, &notFound)
}
