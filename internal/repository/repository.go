// Package repository holds the gorm-backed data access for every entity.
// Repositories translate store errors into apperrors so services never see
// driver-specific failures.
package repository

import (
	"gorm.io/gorm"
)

// Page selects a window of an ordered result set. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return q
	}
	return q.Offset(p.offset()).Limit(p.Size)
}

// Repositories bundles every repository over one connection or transaction.
type Repositories struct {
	Users       UserRepository
	Tags        TagRepository
	Ingredients IngredientRepository
	Recipes     RecipeRepository
	Relations   RelationRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Tags:        NewTagRepository(db),
		Ingredients: NewIngredientRepository(db),
		Recipes:     NewRecipeRepository(db),
		Relations:   NewRelationRepository(db),
	}
}
