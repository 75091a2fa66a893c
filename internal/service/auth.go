package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

const tokenIssuer = "foodgram"

var errInvalidCredentials = apperrors.Invalid("unable to log in with provided credentials")

type AuthService struct {
	users      repository.UserRepository
	validate   *validator.Validate
	jwtSecret  []byte
	tokenTTL   time.Duration
	revocation TokenRevoker
	bcryptCost int
}

// NewAuthService builds the account service. revocation may be nil, in
// which case logout only succeeds locally and tokens live until expiry.
func NewAuthService(users repository.UserRepository, v *validator.Validate, jwtSecret string, tokenTTL time.Duration, revocation TokenRevoker) *AuthService {
	return &AuthService{
		users:      users,
		validate:   v,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		revocation: revocation,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost lowers the hashing cost, for tests.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserView, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, TranslateValidation(err)
	}
	if strings.EqualFold(req.Username, "me") {
		return nil, apperrors.Invalid("username %q is reserved", req.Username)
	}

	taken, err := s.users.EmailOrUsernameTaken(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if taken != "" {
		return nil, apperrors.Conflict("user", fmt.Sprintf("a user with this %s already exists", taken))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	applog.Info(ctx, "user registered", "user_id", user.ID)
	view := types.NewUserView(user, false)
	return &view, nil
}

// Login checks the credentials and issues a signed access token.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", TranslateValidation(err)
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return "", errInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", errInvalidCredentials
	}
	return s.GenerateToken(user.ID)
}

func (s *AuthService) GenerateToken(userID uint) (string, error) {
	now := time.Now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and verifies a token, rejecting revoked ones.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, apperrors.Unauthorized("invalid token claims")
	}
	if s.revocation != nil {
		revoked, err := s.revocation.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperrors.Unauthorized("token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.revocation == nil {
		applog.Warn(ctx, "token revocation unavailable, logout is client side only", "user_id", claims.UserID)
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revocation.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	applog.Info(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

func (s *AuthService) SetPassword(ctx context.Context, p Principal, req *types.SetPasswordRequest) error {
	if err := p.require(); err != nil {
		return err
	}
	if err := s.validate.Struct(req); err != nil {
		return TranslateValidation(err)
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperrors.Invalid("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, user.ID, string(hash))
}
