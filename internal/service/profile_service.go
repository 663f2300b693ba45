package service

import (
	"context"
	"strings"

	"github.com/spiderqueue/spiderqueue/internal/domain"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// ProfileService resolves and updates display names for users identified by
// email.
type ProfileService struct {
	profiles *repository.CachedProfileStore
}

// NewProfileService constructs the service.
func NewProfileService(profiles *repository.CachedProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetName returns the stored display name for email, empty when absent.
func (s *ProfileService) GetName(ctx context.Context, email string) (string, error) {
	name, err := s.profiles.GetName(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", apperrors.MapError(err)
	}
	return name, nil
}

// SetName stores the display name for email.
func (s *ProfileService) SetName(ctx context.Context, email, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if err := s.profiles.SetName(ctx, email, name); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NewNotFound("profile", map[string]any{"email": email})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ResolveUser builds the resolved member view for an email, falling back to
// the email local part when no profile name is stored.
func (s *ProfileService) ResolveUser(ctx context.Context, email string) domain.User {
	name, err := s.profiles.GetName(ctx, email)
	if err != nil {
		name = ""
	}
	return domain.User{
		ID:    email,
		Email: email,
		Name:  domain.DisplayName(email, name),
	}
}
