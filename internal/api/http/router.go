package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spiderqueue/spiderqueue/internal/api/http/handlers"
	"github.com/spiderqueue/spiderqueue/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Workspaces     *handlers.WorkspacesHandler
	Boards         *handlers.BoardsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/me", cfg.Auth.GetProfile)
	protected.Put("/me", cfg.Auth.UpdateProfile)

	protected.Get("/workspaces", cfg.Workspaces.ListWorkspaces)
	protected.Post("/workspaces", cfg.Workspaces.CreateWorkspace)
	protected.Put("/workspaces/:id", cfg.Workspaces.RenameWorkspace)
	protected.Get("/workspaces/:id/members", cfg.Workspaces.ListMembers)
	protected.Post("/workspaces/:id/invites", cfg.Workspaces.InviteMember)
	protected.Post("/workspaces/:id/projects", cfg.Workspaces.AddProject)
	protected.Post("/invites/accept", cfg.Workspaces.AcceptInvite)

	boards := protected.Group("/workspaces/:id/projects/:projectID")
	boards.Get("/lanes", cfg.Boards.Lanes)
	boards.Get("/tickets", cfg.Boards.ListTickets)
	boards.Post("/tickets", cfg.Boards.CreateTicket)
	boards.Post("/tickets/refresh", cfg.Boards.RefreshTickets)
	boards.Get("/tickets/:ticketID", cfg.Boards.GetTicket)
	boards.Delete("/tickets/:ticketID/detail", cfg.Boards.CloseTicketDetail)
	boards.Post("/tickets/:ticketID/move", cfg.Boards.MoveTicket)
	boards.Post("/tickets/:ticketID/drop", cfg.Boards.DropTicket)
	boards.Post("/tickets/:ticketID/assign", cfg.Boards.AssignTicket)
	boards.Post("/tickets/:ticketID/lend", cfg.Boards.LendTicket)
	boards.Post("/tickets/:ticketID/return", cfg.Boards.ReturnTicket)
	boards.Post("/tickets/:ticketID/comments", cfg.Boards.CommentTicket)
}
