package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

// IngredientTotal is one aggregated line of a shopping list.
type IngredientTotal struct {
	IngredientID    uint
	Name            string
	MeasurementUnit string
	Amount          int64
}

type (
	RelationRepository interface {
		CreateFollow(ctx context.Context, userID, authorID uint) error
		DeleteFollow(ctx context.Context, userID, authorID uint) error
		FollowExists(ctx context.Context, userID, authorID uint) (bool, error)
		FollowedAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error)
		FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)

		CreateFavorite(ctx context.Context, userID, recipeID uint) error
		DeleteFavorite(ctx context.Context, userID, recipeID uint) error
		FavoriteExists(ctx context.Context, userID, recipeID uint) (bool, error)
		FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)

		CreateCartItem(ctx context.Context, userID, recipeID uint) error
		DeleteCartItem(ctx context.Context, userID, recipeID uint) error
		CartItemExists(ctx context.Context, userID, recipeID uint) (bool, error)
		InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
		CartTotals(ctx context.Context, userID uint) ([]IngredientTotal, error)
	}

	relationRepository struct {
		db *gorm.DB
	}
)

func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

// createEdge inserts an edge row; the store's unique index is the final
// word on duplicates and surfaces as a ConflictError.
func createEdge[T any](ctx context.Context, db *gorm.DB, edge *T, resource string) error {
	return apperrors.FromDB(db.WithContext(ctx).Create(edge).Error, resource)
}

func deleteEdge[T any](ctx context.Context, db *gorm.DB, resource, column string, userID, otherID uint) error {
	var model T
	res := db.WithContext(ctx).Where("user_id = ? AND "+column+" = ?", userID, otherID).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}

func edgeExists[T any](ctx context.Context, db *gorm.DB, column string, userID, otherID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND "+column+" = ?", userID, otherID).
		Count(&count).Error
	return count > 0, err
}

func edgesAmong[T any](ctx context.Context, db *gorm.DB, column string, userID uint, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if userID == 0 || len(ids) == 0 {
		return out, nil
	}
	var hits []uint
	err := db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &hits).Error
	if err != nil {
		return nil, err
	}
	for _, id := range hits {
		out[id] = true
	}
	return out, nil
}

func (r *relationRepository) CreateFollow(ctx context.Context, userID, authorID uint) error {
	return createEdge(ctx, r.db, &models.Follow{UserID: userID, AuthorID: authorID}, "subscription")
}

func (r *relationRepository) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	return deleteEdge[models.Follow](ctx, r.db, "subscription", "author_id", userID, authorID)
}

func (r *relationRepository) FollowExists(ctx context.Context, userID, authorID uint) (bool, error) {
	return edgeExists[models.Follow](ctx, r.db, "author_id", userID, authorID)
}

func (r *relationRepository) FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	return edgesAmong[models.Follow](ctx, r.db, "author_id", userID, authorIDs)
}

func (r *relationRepository) FollowedAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error) {
	var (
		authors []models.User
		count   int64
	)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.author_id = users.id").
			Where("follows.user_id = ?", userID)
	}
	if err := base().Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(base().Order("follows.id asc")).Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, count, nil
}

func (r *relationRepository) CreateFavorite(ctx context.Context, userID, recipeID uint) error {
	return createEdge(ctx, r.db, &models.Favorite{UserID: userID, RecipeID: recipeID}, "favorite")
}

func (r *relationRepository) DeleteFavorite(ctx context.Context, userID, recipeID uint) error {
	return deleteEdge[models.Favorite](ctx, r.db, "favorite", "recipe_id", userID, recipeID)
}

func (r *relationRepository) FavoriteExists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return edgeExists[models.Favorite](ctx, r.db, "recipe_id", userID, recipeID)
}

func (r *relationRepository) FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return edgesAmong[models.Favorite](ctx, r.db, "recipe_id", userID, recipeIDs)
}

func (r *relationRepository) CreateCartItem(ctx context.Context, userID, recipeID uint) error {
	return createEdge(ctx, r.db, &models.ShoppingCart{UserID: userID, RecipeID: recipeID}, "shopping cart item")
}

func (r *relationRepository) DeleteCartItem(ctx context.Context, userID, recipeID uint) error {
	return deleteEdge[models.ShoppingCart](ctx, r.db, "shopping cart item", "recipe_id", userID, recipeID)
}

func (r *relationRepository) CartItemExists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return edgeExists[models.ShoppingCart](ctx, r.db, "recipe_id", userID, recipeID)
}

func (r *relationRepository) InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return edgesAmong[models.ShoppingCart](ctx, r.db, "recipe_id", userID, recipeIDs)
}

// CartTotals sums ingredient amounts across every recipe in the user's cart,
// grouped by ingredient id so same-named ingredients with different units
// stay separate. Rows are ordered by ingredient id.
func (r *relationRepository) CartTotals(ctx context.Context, userID uint) ([]IngredientTotal, error) {
	var totals []IngredientTotal
	err := r.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.id AS ingredient_id, ingredients.name AS name, "+
			"ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.id asc").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
