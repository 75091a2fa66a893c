package types

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// IngredientAmount references an ingredient by id with the amount used.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1,lte=32000"`
}

// RecipeRequest is the body of recipe create and update calls. Image holds
// a base64 data URI for a new upload; on update an empty value keeps the
// stored image. CookingTime is a pointer so an absent value is told apart
// from zero.
type RecipeRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime *int               `json:"cooking_time" validate:"required,gte=1,lte=2880"`
	Image       string             `json:"image"`
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"dive"`
}
