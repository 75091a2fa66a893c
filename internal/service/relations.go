package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RelationService creates and removes the follow, favorite and shopping cart
// edges. Existence is checked up front for a clear error; the unique index
// in the store decides races between concurrent duplicate requests.
type RelationService struct {
	repos *repository.Repositories
}

func NewRelationService(repos *repository.Repositories) *RelationService {
	return &RelationService{repos: repos}
}

func (s *RelationService) Follow(ctx context.Context, p Principal, authorID uint) error {
	if err := p.require(); err != nil {
		return err
	}
	if _, err := s.repos.Users.GetByID(ctx, authorID); err != nil {
		return err
	}
	if authorID == p.UserID {
		return apperrors.Invalid("you cannot subscribe to yourself")
	}
	exists, err := s.repos.Relations.FollowExists(ctx, p.UserID, authorID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict("subscription", "already subscribed to this author")
	}
	if err := s.repos.Relations.CreateFollow(ctx, p.UserID, authorID); err != nil {
		return err
	}
	applog.Info(ctx, "subscribed", "user_id", p.UserID, "author_id", authorID)
	return nil
}

func (s *RelationService) Unfollow(ctx context.Context, p Principal, authorID uint) error {
	if err := p.require(); err != nil {
		return err
	}
	if _, err := s.repos.Users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.repos.Relations.DeleteFollow(ctx, p.UserID, authorID)
}

func (s *RelationService) AddFavorite(ctx context.Context, p Principal, recipeID uint) (*types.ShortRecipeView, error) {
	return s.addRecipeEdge(ctx, p, recipeID, "favorite",
		s.repos.Relations.FavoriteExists, s.repos.Relations.CreateFavorite)
}

func (s *RelationService) RemoveFavorite(ctx context.Context, p Principal, recipeID uint) error {
	return s.removeRecipeEdge(ctx, p, recipeID, s.repos.Relations.DeleteFavorite)
}

func (s *RelationService) AddToCart(ctx context.Context, p Principal, recipeID uint) (*types.ShortRecipeView, error) {
	return s.addRecipeEdge(ctx, p, recipeID, "shopping cart item",
		s.repos.Relations.CartItemExists, s.repos.Relations.CreateCartItem)
}

func (s *RelationService) RemoveFromCart(ctx context.Context, p Principal, recipeID uint) error {
	return s.removeRecipeEdge(ctx, p, recipeID, s.repos.Relations.DeleteCartItem)
}

type edgeFunc func(ctx context.Context, userID, recipeID uint) error

func (s *RelationService) addRecipeEdge(
	ctx context.Context,
	p Principal,
	recipeID uint,
	resource string,
	exists func(ctx context.Context, userID, recipeID uint) (bool, error),
	create edgeFunc,
) (*types.ShortRecipeView, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	recipe, err := s.repos.Recipes.GetShort(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	found, err := exists(ctx, p.UserID, recipeID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, apperrors.Conflict(resource, "recipe is already in your "+resourceList(resource))
	}
	if err := create(ctx, p.UserID, recipeID); err != nil {
		return nil, err
	}
	applog.Info(ctx, resource+" added", "user_id", p.UserID, "recipe_id", recipeID)
	view := types.NewShortRecipeView(recipe)
	return &view, nil
}

func (s *RelationService) removeRecipeEdge(ctx context.Context, p Principal, recipeID uint, remove edgeFunc) error {
	if err := p.require(); err != nil {
		return err
	}
	if _, err := s.repos.Recipes.GetShort(ctx, recipeID); err != nil {
		return err
	}
	return remove(ctx, p.UserID, recipeID)
}

func resourceList(resource string) string {
	if resource == "favorite" {
		return "favorites"
	}
	return "shopping cart"
}
