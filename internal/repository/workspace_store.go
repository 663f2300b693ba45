package repository

import (
	"context"
	"errors"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// ErrNotFound is returned when a workspace, project or ticket does not exist.
var ErrNotFound = errors.New("not found")

// LendRequest carries the fields of a lend operation. Comment is mandatory.
type LendRequest struct {
	ToProjectID *string
	ToUserID    *string
	Comment     string
	Actor       string
}

// WorkspaceStore is the persistence contract consumed by the services. Two
// interchangeable implementations exist: an in-process memory store and a
// Postgres-backed one, selected by configuration at process start.
//
// Mutating ticket operations append the authoritative history entry as part of
// the same call: UpdateTicketStatus appends 'moved', UpdateTicketAssignee
// appends 'assigned', LendTicket 'lent', ReturnTicket 'returned',
// CommentTicket 'commented'.
type WorkspaceStore interface {
	GetUserWorkspaces(ctx context.Context, email string) ([]domain.Workspace, error)
	CreateWorkspace(ctx context.Context, name, ownerEmail string) (*domain.Workspace, error)
	RenameWorkspace(ctx context.Context, workspaceID, name string) error
	ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error)
	InviteUser(ctx context.Context, workspaceID, email string) (*domain.Invite, error)
	AcceptInvite(ctx context.Context, email, code string) (*domain.InviteResult, error)
	AddProject(ctx context.Context, workspaceID, name, description string) (*domain.Project, error)

	ListTickets(ctx context.Context, workspaceID, projectID string) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, workspaceID, projectID string, data domain.CreateTicketData) (*domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, workspaceID, projectID, ticketID string, toStatus domain.TicketStatus, actor string) error
	UpdateTicketAssignee(ctx context.Context, workspaceID, projectID, ticketID string, assignee *string, comment, actor string) error
	LendTicket(ctx context.Context, workspaceID, projectID, ticketID string, lend LendRequest) error
	ReturnTicket(ctx context.Context, workspaceID, projectID, ticketID, actor string) error
	CommentTicket(ctx context.Context, workspaceID, projectID, ticketID, actor, comment string) error
}
