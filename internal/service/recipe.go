package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeQuery holds the list filters accepted by the recipe listing. The
// favorite and cart filters only apply to an authenticated principal.
type RecipeQuery struct {
	TagSlugs         []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
	Page             repository.Page
}

// RecipeService owns recipe composition: every write replaces the scalar
// fields, the tag set and the ingredient rows together in one transaction.
type RecipeService struct {
	db        *gorm.DB
	repos     *repository.Repositories
	validator *RecipeValidator
	images    ImageStore
}

func NewRecipeService(db *gorm.DB, repos *repository.Repositories, v *validator.Validate, images ImageStore) *RecipeService {
	return &RecipeService{
		db:        db,
		repos:     repos,
		validator: NewRecipeValidator(v, repos.Tags, repos.Ingredients),
		images:    images,
	}
}

func (s *RecipeService) Create(ctx context.Context, p Principal, req *types.RecipeRequest) (*types.RecipeView, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	valid, err := s.validator.Validate(ctx, req, true)
	if err != nil {
		return nil, err
	}
	image, err := s.storeImage(ctx, valid.Image, "")
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        valid.Name,
		Text:        valid.Text,
		CookingTime: valid.CookingTime,
		Image:       image,
		AuthorID:    p.UserID,
	}
	composed, err := s.compose(ctx, recipe, valid, true)
	if err != nil {
		s.discardImage(ctx, image, "")
		return nil, err
	}
	applog.Info(ctx, "recipe created", "recipe_id", composed.ID, "author_id", p.UserID)
	return s.presentOne(ctx, p, composed)
}

// Update fully replaces the recipe. Only the author may update it.
func (s *RecipeService) Update(ctx context.Context, p Principal, id uint, req *types.RecipeRequest) (*types.RecipeView, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	current, err := s.repos.Recipes.GetShort(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != p.UserID {
		return nil, apperrors.Forbidden("only the author may change this recipe")
	}
	valid, err := s.validator.Validate(ctx, req, false)
	if err != nil {
		return nil, err
	}
	previous := current.Image
	image, err := s.storeImage(ctx, valid.Image, previous)
	if err != nil {
		return nil, err
	}

	current.Name = valid.Name
	current.Text = valid.Text
	current.CookingTime = valid.CookingTime
	current.Image = image
	composed, err := s.compose(ctx, current, valid, false)
	if err != nil {
		s.discardImage(ctx, image, previous)
		return nil, err
	}
	applog.Info(ctx, "recipe updated", "recipe_id", id, "author_id", p.UserID)
	return s.presentOne(ctx, p, composed)
}

// compose writes the recipe, its tags and its ingredient rows atomically and
// reads the result back inside the same transaction.
func (s *RecipeService) compose(ctx context.Context, recipe *models.Recipe, valid *ValidatedRecipe, isNew bool) (*models.Recipe, error) {
	var composed *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := s.repos.Recipes.WithTx(tx)
		if isNew {
			if err := recipes.Create(ctx, recipe); err != nil {
				return err
			}
		} else {
			if err := recipes.DeleteIngredients(ctx, recipe.ID); err != nil {
				return err
			}
			if err := recipes.UpdateFields(ctx, recipe); err != nil {
				return err
			}
		}
		if err := recipes.ReplaceTags(ctx, recipe, valid.Tags); err != nil {
			return err
		}

		rows := make([]models.RecipeIngredient, len(valid.Ingredients))
		for i, ing := range valid.Ingredients {
			rows[i] = models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ing.Ingredient.ID,
				Amount:       ing.Amount,
			}
		}
		if err := recipes.InsertIngredients(ctx, rows); err != nil {
			return err
		}

		var err error
		composed, err = recipes.GetByID(ctx, recipe.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return composed, nil
}

// storeImage uploads a data URI and returns its URL. An empty value or the
// URL already stored keeps the current image.
func (s *RecipeService) storeImage(ctx context.Context, image, current string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" || image == current {
		return current, nil
	}
	contentType, data, err := DecodeDataURI(image)
	if err != nil {
		return "", err
	}
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	return s.images.Save(ctx, data, contentType)
}

// discardImage removes an image uploaded for a write that was rolled back.
// The stored recipe still points at current, which is kept.
func (s *RecipeService) discardImage(ctx context.Context, image, current string) {
	if image == "" || image == current || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, image); err != nil {
		applog.Warn(ctx, "orphaned recipe image", "url", image, "error", err)
	}
}

// Delete removes a recipe with its rows and edges. Only the author may do so.
func (s *RecipeService) Delete(ctx context.Context, p Principal, id uint) error {
	if err := p.require(); err != nil {
		return err
	}
	current, err := s.repos.Recipes.GetShort(ctx, id)
	if err != nil {
		return err
	}
	if current.AuthorID != p.UserID {
		return apperrors.Forbidden("only the author may delete this recipe")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repos.Recipes.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	applog.Info(ctx, "recipe deleted", "recipe_id", id, "author_id", p.UserID)
	return nil
}

func (s *RecipeService) Get(ctx context.Context, p Principal, id uint) (*types.RecipeView, error) {
	recipe, err := s.repos.Recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.presentOne(ctx, p, recipe)
}

func (s *RecipeService) List(ctx context.Context, p Principal, q RecipeQuery) ([]types.RecipeView, int64, error) {
	filter := repository.RecipeFilter{TagSlugs: q.TagSlugs, AuthorID: q.AuthorID}
	if !p.IsAnonymous() {
		if q.IsFavorited {
			filter.FavoritedBy = p.UserID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = p.UserID
		}
	}
	recipes, count, err := s.repos.Recipes.List(ctx, filter, q.Page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.present(ctx, p, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *RecipeService) presentOne(ctx context.Context, p Principal, recipe *models.Recipe) (*types.RecipeView, error) {
	views, err := s.present(ctx, p, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// present builds recipe views, computing the per-principal flags with one
// query per flag for the whole batch.
func (s *RecipeService) present(ctx context.Context, p Principal, recipes []models.Recipe) ([]types.RecipeView, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	var favorited, inCart, followed map[uint]bool
	if !p.IsAnonymous() {
		var err error
		if favorited, err = s.repos.Relations.FavoritedAmong(ctx, p.UserID, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.repos.Relations.InCartAmong(ctx, p.UserID, recipeIDs); err != nil {
			return nil, err
		}
		if followed, err = s.repos.Relations.FollowedAmong(ctx, p.UserID, authorIDs); err != nil {
			return nil, err
		}
	}

	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		ingredients := make([]types.RecipeIngredientView, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientView{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		views[i] = types.RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           types.NewUserView(&r.Author, followed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return views, nil
}
