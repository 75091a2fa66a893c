package models

import "time"

// Follow is a directed edge from a user to an author they subscribe to.
type Follow struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_follow_pair"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_follow_pair;index;check:chk_follows_not_self,user_id <> author_id"`
}

type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`
}

type ShoppingCart struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_pair"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_cart_pair;index"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Follow{},
		&Favorite{},
		&ShoppingCart{},
	}
}
