// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
	"github.com/your-org/storefront-backend/internal/store"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Service handles user registration and login
type Service struct {
	users     store.Table[User]
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	config    *config.Config
	log       logrus.FieldLogger
}

// NewService creates a new user service
func NewService(users store.Table[User], cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		users:     users,
		jwt:       auth.NewJWTManager(cfg),
		passwords: auth.NewPasswordManager(cfg),
		config:    cfg,
		log:       log.WithField("component", "auth"),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.SelectOne(ctx, store.Where(store.Eq("email", email))); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Insert(ctx, User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      slices.Contains(s.config.Security.AdminEmails, email),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u := created[0]
	s.log.WithField("user_id", u.ID).Info("User registered")
	return s.issue(&u)
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.SelectOne(ctx, store.Where(store.Eq("email", email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwords.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		s.log.WithField("user_id", u.ID).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	return s.issue(&u)
}

// Logout is stateless; clients drop their token
func (s *Service) Logout(ctx context.Context, userID string) {
	s.log.WithField("user_id", userID).Debug("User logged out")
}

// Current returns the signed-in user
func (s *Service) Current(ctx context.Context, userID string) (*User, error) {
	if !ident.IsCanonical(userID) {
		return nil, ErrUserNotFound
	}

	u, err := s.users.SelectOne(ctx, store.ByID(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ValidateToken parses an access token
func (s *Service) ValidateToken(token string) (*auth.Claims, error) {
	return s.jwt.ValidateAccessToken(token)
}

func (s *Service) issue(u *User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: u, AccessToken: token, ExpiresAt: expiresAt}, nil
}
