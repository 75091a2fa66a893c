package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

type (
	UserRepository interface {
		Create(ctx context.Context, user *models.User) error
		GetByID(ctx context.Context, id uint) (*models.User, error)
		GetByEmail(ctx context.Context, email string) (*models.User, error)
		List(ctx context.Context, page Page) ([]models.User, int64, error)
		UpdatePasswordHash(ctx context.Context, id uint, hash string) error
		EmailOrUsernameTaken(ctx context.Context, email, username string) (string, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "user")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	var (
		users []models.User
		count int64
	)
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(r.db.WithContext(ctx).Order("id asc")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

// EmailOrUsernameTaken returns the name of the first field that already
// belongs to another account, or "" when both are free.
func (r *userRepository) EmailOrUsernameTaken(ctx context.Context, email, username string) (string, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "email", nil
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "username", nil
	}
	return "", nil
}
