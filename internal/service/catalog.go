package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
)

// CatalogService serves the read-only reference data: tags and ingredients.
// The import methods are used by the administrative loaders.
type CatalogService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	validate    *validator.Validate
}

func NewCatalogService(tags repository.TagRepository, ingredients repository.IngredientRepository, v *validator.Validate) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients, validate: v}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

// ListIngredients returns ingredients whose name starts with prefix,
// case-insensitively. An empty prefix returns all of them.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	return s.ingredients.List(ctx, strings.TrimSpace(prefix))
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.ingredients.GetByID(ctx, id)
}

// ImportIngredient gets or creates the (name, unit) pair. created reports
// whether a new row was written.
func (s *CatalogService) ImportIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return nil, false, apperrors.Required("name")
	}
	if unit == "" {
		return nil, false, apperrors.Required("measurement_unit")
	}
	return s.ingredients.GetOrCreate(ctx, name, unit)
}

// ImportTag gets or creates a tag by slug.
func (s *CatalogService) ImportTag(ctx context.Context, tag *models.Tag) (bool, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.Slug = strings.TrimSpace(tag.Slug)
	tag.Color = strings.TrimSpace(tag.Color)
	switch {
	case tag.Name == "":
		return false, apperrors.Required("name")
	case tag.Slug == "":
		return false, apperrors.Required("slug")
	case s.validate.Var(tag.Color, "hexcolor,len=7") != nil:
		return false, apperrors.Malformed("color", "must be a #RRGGBB hex color")
	}
	return s.tags.GetOrCreate(ctx, tag)
}
