package service

import (
	"context"
	"strings"
	"time"

	"github.com/spiderqueue/spiderqueue/internal/auth"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// AuthService registers accounts and issues tokens.
type AuthService struct {
	profiles   *repository.CachedProfileStore
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(profiles *repository.CachedProfileStore, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{profiles: profiles, tokens: tokens, bcryptCost: bcryptCost}
}

// Session is an issued access token plus its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Email     string
	Name      string
}

// Register creates an account and returns a fresh session.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.profiles.Get(ctx, email); err == nil {
		return nil, apperrors.NewConflict("account already exists", map[string]any{"email": email})
	} else if err != repository.ErrNotFound {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	profile := &repository.Profile{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issue(email, profile.Name)
}

// Login verifies credentials and returns a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, err := s.profiles.Get(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(email, profile.Name)
}

func (s *AuthService) issue(email, name string) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(email, name)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Email: email, Name: name}, nil
}
