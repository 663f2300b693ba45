package dto

import (
	"time"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// CreateWorkspaceRequest payload.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

// RenameWorkspaceRequest payload.
type RenameWorkspaceRequest struct {
	Name string `json:"name"`
}

// WorkspaceResponse summary.
type WorkspaceResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Projects  []ProjectResponse `json:"projects"`
	CreatedAt time.Time         `json:"created_at"`
}

// ProjectResponse summary.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberResponse is a workspace member with a resolved display name.
type MemberResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AddProjectRequest payload.
type AddProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InviteRequest payload.
type InviteRequest struct {
	Email string `json:"email"`
}

// InviteResponse carries the issued single-use code.
type InviteResponse struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// AcceptInviteRequest payload.
type AcceptInviteRequest struct {
	Code string `json:"code"`
}

// AcceptInviteResponse reports redemption outcome.
type AcceptInviteResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Message     string `json:"message,omitempty"`
}

func WorkspaceFromDomain(ws *domain.Workspace) WorkspaceResponse {
	projects := make([]ProjectResponse, 0, len(ws.Projects))
	for _, p := range ws.Projects {
		projects = append(projects, ProjectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
		})
	}
	return WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		Projects:  projects,
		CreatedAt: ws.CreatedAt,
	}
}
