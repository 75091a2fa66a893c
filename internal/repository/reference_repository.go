package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

type (
	TagRepository interface {
		List(ctx context.Context) ([]models.Tag, error)
		GetByID(ctx context.Context, id uint) (*models.Tag, error)
		FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
		GetOrCreate(ctx context.Context, tag *models.Tag) (bool, error)
	}

	IngredientRepository interface {
		List(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
		GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
		FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
		GetOrCreate(ctx context.Context, name, unit string) (*models.Ingredient, bool, error)
	}

	tagRepository struct {
		db *gorm.DB
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("tag", id)
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetOrCreate looks the tag up by slug and inserts it when missing. It
// reports whether a row was created; tag is filled with the stored values.
func (r *tagRepository) GetOrCreate(ctx context.Context, tag *models.Tag) (bool, error) {
	var existing models.Tag
	err := r.db.WithContext(ctx).Where("slug = ?", tag.Slug).First(&existing).Error
	if err == nil {
		*tag = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return false, apperrors.FromDB(err, "tag")
	}
	return true, nil
}

func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	q := r.db.WithContext(ctx).Order("name asc").Order("id asc")
	if p := strings.TrimSpace(namePrefix); p != "" {
		q = q.Where(`lower(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(p))+"%")
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("ingredient", id)
		}
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetOrCreate returns the ingredient identified by (name, unit), creating it
// when absent. The bool reports whether a row was inserted.
func (r *ingredientRepository) GetOrCreate(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		First(&ingredient).Error
	if err == nil {
		return &ingredient, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	ingredient = models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := r.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, false, apperrors.FromDB(err, "ingredient")
	}
	return &ingredient, true, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
