package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
}

type (
	RecipeRepository interface {
		// WithTx returns a repository bound to tx.
		WithTx(tx *gorm.DB) RecipeRepository

		Create(ctx context.Context, recipe *models.Recipe) error
		UpdateFields(ctx context.Context, recipe *models.Recipe) error
		ReplaceTags(ctx context.Context, recipe *models.Recipe, tags []models.Tag) error
		DeleteIngredients(ctx context.Context, recipeID uint) error
		InsertIngredients(ctx context.Context, rows []models.RecipeIngredient) error
		Delete(ctx context.Context, recipeID uint) error

		GetByID(ctx context.Context, id uint) (*models.Recipe, error)
		GetShort(ctx context.Context, id uint) (*models.Recipe, error)
		List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
		ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
		CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepository{db: tx}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
	return apperrors.FromDB(err, "recipe")
}

func (r *recipeRepository) UpdateFields(ctx context.Context, recipe *models.Recipe) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]any{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		})
	if res.Error != nil {
		return apperrors.FromDB(res.Error, "recipe")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe", recipe.ID)
	}
	return nil
}

func (r *recipeRepository) ReplaceTags(ctx context.Context, recipe *models.Recipe, tags []models.Tag) error {
	target := models.Recipe{ID: recipe.ID}
	if err := r.db.WithContext(ctx).Model(&target).Association("Tags").Replace(tags); err != nil {
		return apperrors.FromDB(err, "recipe tags")
	}
	recipe.Tags = tags
	return nil
}

func (r *recipeRepository) DeleteIngredients(ctx context.Context, recipeID uint) error {
	return r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error
}

func (r *recipeRepository) InsertIngredients(ctx context.Context, rows []models.RecipeIngredient) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit("Ingredient").CreateInBatches(rows, 100).Error
	return apperrors.FromDB(err, "recipe ingredient")
}

// Delete removes the recipe together with its junction rows and every
// favorite or cart edge pointing at it. Callers run it inside a transaction.
func (r *recipeRepository) Delete(ctx context.Context, recipeID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Recipe{ID: recipeID}).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCart{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Recipe{}, recipeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe", recipeID)
	}
	return nil
}

func (r *recipeRepository) withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id asc") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id asc") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}

// GetShort loads only the recipe row, without associations.
func (r *recipeRepository) GetShort(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if len(f.TagSlugs) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)",
			r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)",
			r.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", f.InCartOf))
	}
	return q
}

func (r *recipeRepository) List(ctx context.Context, f RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	var (
		recipes []models.Recipe
		count   int64
	)
	if err := r.filtered(ctx, f).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	q := r.withDetails(r.filtered(ctx, f)).Order("recipes.pub_date desc").Order("recipes.id desc")
	if err := page.apply(q).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// ListByAuthor returns the newest recipes of an author. limit <= 0 means all.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
