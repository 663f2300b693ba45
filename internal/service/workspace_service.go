package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spiderqueue/spiderqueue/internal/domain"
	"github.com/spiderqueue/spiderqueue/internal/events"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// WorkspaceService coordinates workspace, membership and project workflows.
type WorkspaceService struct {
	store      repository.WorkspaceStore
	profiles   *ProfileService
	dispatcher events.Dispatcher
}

// NewWorkspaceService constructs the service.
func NewWorkspaceService(store repository.WorkspaceStore, profiles *ProfileService, dispatcher events.Dispatcher) *WorkspaceService {
	return &WorkspaceService{store: store, profiles: profiles, dispatcher: dispatcher}
}

// GetUserWorkspaces lists workspaces the user belongs to.
func (s *WorkspaceService) GetUserWorkspaces(ctx context.Context, email string) ([]domain.Workspace, error) {
	workspaces, err := s.store.GetUserWorkspaces(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return workspaces, nil
}

// CreateWorkspace creates a workspace owned by ownerEmail.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, name, ownerEmail string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("workspace name required", nil)
	}
	ws, err := s.store.CreateWorkspace(ctx, name, ownerEmail)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ws, nil
}

// RenameWorkspace updates the display name.
func (s *WorkspaceService) RenameWorkspace(ctx context.Context, workspaceID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("workspace name required", nil)
	}
	if err := s.store.RenameWorkspace(ctx, workspaceID, name); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NewNotFound("workspace", map[string]any{"workspace_id": workspaceID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListMembers returns workspace members with resolved display names.
func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID string) ([]domain.User, error) {
	members, err := s.store.ListMembers(ctx, workspaceID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("workspace", map[string]any{"workspace_id": workspaceID})
		}
		return nil, apperrors.MapError(err)
	}
	users := make([]domain.User, 0, len(members))
	for _, m := range members {
		users = append(users, s.profiles.ResolveUser(ctx, m.Email))
	}
	return users, nil
}

// InviteUser issues a single-use invite code for email.
func (s *WorkspaceService) InviteUser(ctx context.Context, workspaceID, email string) (*domain.Invite, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", nil)
	}
	invite, err := s.store.InviteUser(ctx, workspaceID, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("workspace", map[string]any{"workspace_id": workspaceID})
		}
		return nil, apperrors.MapError(err)
	}
	return invite, nil
}

// AcceptInvite redeems a code for email. The code is single-use; a failed
// redemption is safe to retry.
func (s *WorkspaceService) AcceptInvite(ctx context.Context, email, code string) (*domain.InviteResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidationError("invite code required", nil)
	}
	result, err := s.store.AcceptInvite(ctx, email, code)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !result.Success {
		return nil, apperrors.NewInviteRedemptionError(result.Message)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventInviteAccepted,
			WorkspaceID: result.WorkspaceID,
			Actor:       email,
			Timestamp:   time.Now(),
			Payload:     events.InviteAcceptedPayload{Email: email},
		})
	}
	return result, nil
}

// AddProject creates a project inside the workspace.
func (s *WorkspaceService) AddProject(ctx context.Context, workspaceID, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("project name required", nil)
	}
	project, err := s.store.AddProject(ctx, workspaceID, name, description)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("workspace", map[string]any{"workspace_id": workspaceID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}
