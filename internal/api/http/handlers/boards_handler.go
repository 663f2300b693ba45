package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spiderqueue/spiderqueue/internal/api/dto"
	"github.com/spiderqueue/spiderqueue/internal/auth"
	"github.com/spiderqueue/spiderqueue/internal/board"
	"github.com/spiderqueue/spiderqueue/internal/domain"
	"github.com/spiderqueue/spiderqueue/internal/service"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// BoardsHandler serves the project board: ticket listing under filters, lane
// layout, creation, drag-and-drop and the detail view.
type BoardsHandler struct {
	boards     *service.BoardService
	workspaces *service.WorkspaceService
}

// NewBoardsHandler constructs handler.
func NewBoardsHandler(boards *service.BoardService, workspaces *service.WorkspaceService) *BoardsHandler {
	return &BoardsHandler{boards: boards, workspaces: workspaces}
}

// ListTickets GET /workspaces/:id/projects/:projectID/tickets.
func (h *BoardsHandler) ListTickets(c *fiber.Ctx) error {
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets := session.Tickets()
	visible := board.VisibleTickets(tickets, parseFilterQuery(c))
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(visible)})
}

// RefreshTickets POST /workspaces/:id/projects/:projectID/tickets/refresh.
func (h *BoardsHandler) RefreshTickets(c *fiber.Ctx) error {
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets, err := session.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// Lanes GET /workspaces/:id/projects/:projectID/lanes.
func (h *BoardsHandler) Lanes(c *fiber.Ctx) error {
	viewCtx := parseViewQuery(c)
	var members []domain.Member
	if viewCtx.View == board.ViewHome && viewCtx.PersonMode == board.PersonAssign {
		users, err := h.workspaces.ListMembers(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		for _, u := range users {
			members = append(members, domain.Member{Email: u.Email})
		}
	}
	lanes := board.Lanes(viewCtx, members)
	return c.JSON(fiber.Map{"data": dto.LanesFromDomain(lanes)})
}

// CreateTicket POST /workspaces/:id/projects/:projectID/tickets.
func (h *BoardsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateBoardTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	ticket, err := session.CreateTicket(c.UserContext(), domain.CreateTicketData{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		ProjectID:   c.Params("projectID"),
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Comment:     req.Comment,
		CreatedBy:   principal.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// GetTicket GET /workspaces/:id/projects/:projectID/tickets/:ticketID opens
// the detail view.
func (h *BoardsHandler) GetTicket(c *fiber.Ctx) error {
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	ticket, err := session.OpenDetail(c.Params("ticketID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailFromDomain(ticket)})
}

// CloseTicketDetail DELETE /workspaces/:id/projects/:projectID/tickets/:ticketID/detail.
func (h *BoardsHandler) CloseTicketDetail(c *fiber.Ctx) error {
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	session.CloseDetail()
	return c.SendStatus(fiber.StatusNoContent)
}

// MoveTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/move.
func (h *BoardsHandler) MoveTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.MoveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	viewCtx := board.Context{View: req.View, PersonMode: req.PersonMode}
	tickets, err := session.MoveTicket(c.UserContext(), viewCtx, principal.Email, c.Params("ticketID"), req.ToStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// DropTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/drop.
func (h *BoardsHandler) DropTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DropTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var target board.Lane
	switch {
	case req.ToMember != "":
		target = board.MemberLane(req.ToMember)
	case req.ToStatus != "":
		target = board.StatusLane(req.ToStatus)
	default:
		return apperrors.NewValidationError("to_status or to_member required", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	viewCtx := board.Context{View: req.View, PersonMode: req.PersonMode}
	tickets, err := session.DropTicket(c.UserContext(), viewCtx, principal.Email, c.Params("ticketID"), target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// AssignTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/assign.
func (h *BoardsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets, err := session.AssignTicket(c.UserContext(), principal.Email, c.Params("ticketID"), req.Assignee, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// LendTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/lend.
func (h *BoardsHandler) LendTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.LendTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets, err := session.LendTicket(c.UserContext(), principal.Email, c.Params("ticketID"), req.ToProjectID, req.ToUserID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// ReturnTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/return.
func (h *BoardsHandler) ReturnTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets, err := session.ReturnTicket(c.UserContext(), principal.Email, c.Params("ticketID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// CommentTicket POST /workspaces/:id/projects/:projectID/tickets/:ticketID/comments.
func (h *BoardsHandler) CommentTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.boards.Session(c.UserContext(), c.Params("id"), c.Params("projectID"))
	if err != nil {
		return err
	}
	tickets, err := session.CommentTicket(c.UserContext(), principal.Email, c.Params("ticketID"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

func parseFilterQuery(c *fiber.Ctx) board.FilterOptions {
	opts := board.FilterOptions{
		ProjectID:  c.Params("projectID"),
		View:       board.ViewMode(c.Query("view", string(board.ViewHome))),
		SearchText: c.Query("search"),
	}
	if selected := c.Query("selected_user"); selected != "" {
		opts.SelectedUser = &selected
	}
	if people := c.Query("people"); people != "" {
		for _, part := range strings.Split(people, ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.People = append(opts.People, part)
			}
		}
	}
	if tags := c.Query("tags"); tags != "" {
		for _, part := range strings.Split(tags, ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Tags = append(opts.Tags, part)
			}
		}
	}
	return opts
}

func parseViewQuery(c *fiber.Ctx) board.Context {
	return board.Context{
		View:       board.ViewMode(c.Query("view", string(board.ViewHome))),
		PersonMode: board.PersonMode(c.Query("person_mode", string(board.PersonOverview))),
	}
}
