package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spiderqueue/spiderqueue/internal/api/dto"
	"github.com/spiderqueue/spiderqueue/internal/auth"
	"github.com/spiderqueue/spiderqueue/internal/service"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// WorkspacesHandler serves workspace, membership and project endpoints.
type WorkspacesHandler struct {
	service *service.WorkspaceService
}

// NewWorkspacesHandler constructs handler.
func NewWorkspacesHandler(workspaceService *service.WorkspaceService) *WorkspacesHandler {
	return &WorkspacesHandler{service: workspaceService}
}

// ListWorkspaces GET /workspaces.
func (h *WorkspacesHandler) ListWorkspaces(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	workspaces, err := h.service.GetUserWorkspaces(c.UserContext(), principal.Email)
	if err != nil {
		return err
	}
	items := make([]dto.WorkspaceResponse, 0, len(workspaces))
	for i := range workspaces {
		items = append(items, dto.WorkspaceFromDomain(&workspaces[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateWorkspace POST /workspaces.
func (h *WorkspacesHandler) CreateWorkspace(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ws, err := h.service.CreateWorkspace(c.UserContext(), req.Name, principal.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.WorkspaceFromDomain(ws)})
}

// RenameWorkspace PUT /workspaces/:id.
func (h *WorkspacesHandler) RenameWorkspace(c *fiber.Ctx) error {
	var req dto.RenameWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.RenameWorkspace(c.UserContext(), c.Params("id"), req.Name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMembers GET /workspaces/:id/members.
func (h *WorkspacesHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.service.ListMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, dto.MemberResponse{Email: m.Email, Name: m.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// InviteMember POST /workspaces/:id/invites.
func (h *WorkspacesHandler) InviteMember(c *fiber.Ctx) error {
	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	invite, err := h.service.InviteUser(c.UserContext(), c.Params("id"), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": dto.InviteResponse{Code: invite.Code, Email: invite.Email},
	})
}

// AcceptInvite POST /invites/accept.
func (h *WorkspacesHandler) AcceptInvite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.AcceptInvite(c.UserContext(), principal.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AcceptInviteResponse{WorkspaceID: result.WorkspaceID, Message: result.Message},
	})
}

// AddProject POST /workspaces/:id/projects.
func (h *WorkspacesHandler) AddProject(c *fiber.Ctx) error {
	var req dto.AddProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.AddProject(c.UserContext(), c.Params("id"), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": dto.ProjectResponse{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			CreatedAt:   project.CreatedAt,
		},
	})
}
