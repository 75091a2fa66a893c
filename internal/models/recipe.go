package models

import (
	"time"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 2880

	// MaxIngredientAmount keeps cart totals far from integer overflow.
	MinIngredientAmount = 1
	MaxIngredientAmount = 32000
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey"`
	PubDate     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time
	Name        string             `gorm:"size:200;not null"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1 AND cooking_time <= 2880"`
	Image       string             `gorm:"size:512;not null"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      User               `gorm:"foreignKey:AuthorID"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

// RecipeIngredient is the junction row carrying the amount of one
// ingredient in one recipe. Rows are owned by the recipe and are replaced
// as a whole whenever the recipe changes.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1 AND amount <= 32000"`
}
