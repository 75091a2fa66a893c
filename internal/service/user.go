package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserService struct {
	repos *repository.Repositories
}

func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{repos: repos}
}

func (s *UserService) List(ctx context.Context, p Principal, page repository.Page) ([]types.UserView, int64, error) {
	users, count, err := s.repos.Users.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.userViews(ctx, p, users)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *UserService) Get(ctx context.Context, p Principal, id uint) (*types.UserView, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.userViews(ctx, p, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Me returns the principal's own profile.
func (s *UserService) Me(ctx context.Context, p Principal) (*types.UserView, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	return s.Get(ctx, p, p.UserID)
}

// Subscriptions lists the authors the principal follows, each with at most
// recipesLimit of their newest recipes. recipesLimit <= 0 embeds them all.
func (s *UserService) Subscriptions(ctx context.Context, p Principal, page repository.Page, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	if err := p.require(); err != nil {
		return nil, 0, err
	}
	authors, count, err := s.repos.Relations.FollowedAuthors(ctx, p.UserID, page)
	if err != nil {
		return nil, 0, err
	}
	views := make([]types.SubscriptionView, len(authors))
	for i := range authors {
		view, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views[i] = *view
	}
	return views, count, nil
}

// Subscription describes one followed author, as returned after subscribing.
func (s *UserService) Subscription(ctx context.Context, p Principal, authorID uint, recipesLimit int) (*types.SubscriptionView, error) {
	if err := p.require(); err != nil {
		return nil, err
	}
	author, err := s.repos.Users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	view, err := s.subscription(ctx, author, recipesLimit)
	if err != nil {
		return nil, err
	}
	followed, err := s.repos.Relations.FollowExists(ctx, p.UserID, authorID)
	if err != nil {
		return nil, err
	}
	view.IsSubscribed = followed
	return view, nil
}

func (s *UserService) subscription(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionView, error) {
	recipes, err := s.repos.Recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	short := make([]types.ShortRecipeView, len(recipes))
	for i := range recipes {
		short[i] = types.NewShortRecipeView(&recipes[i])
	}
	return &types.SubscriptionView{
		UserView:     types.NewUserView(author, true),
		Recipes:      short,
		RecipesCount: total,
	}, nil
}

func (s *UserService) userViews(ctx context.Context, p Principal, users []models.User) ([]types.UserView, error) {
	var followed map[uint]bool
	if !p.IsAnonymous() {
		ids := make([]uint, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		var err error
		if followed, err = s.repos.Relations.FollowedAmong(ctx, p.UserID, ids); err != nil {
			return nil, err
		}
	}
	views := make([]types.UserView, len(users))
	for i := range users {
		views[i] = types.NewUserView(&users[i], followed[users[i].ID])
	}
	return views, nil
}
