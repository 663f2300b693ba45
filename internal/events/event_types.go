package events

import (
	"time"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketMoved    EventType = "ticket_moved"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketLent     EventType = "ticket_lent"
	EventTicketReturned EventType = "ticket_returned"
	EventInviteAccepted EventType = "invite_accepted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	WorkspaceID string      `json:"workspace_id"`
	ProjectID   string      `json:"project_id,omitempty"`
	TicketID    string      `json:"ticket_id,omitempty"`
	Actor       string      `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Assignee *string               `json:"assignee,omitempty"`
}

// TicketMovedPayload payload.
type TicketMovedPayload struct {
	FromStatus domain.TicketStatus `json:"from_status"`
	ToStatus   domain.TicketStatus `json:"to_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	FromUser *string `json:"from_user,omitempty"`
	ToUser   *string `json:"to_user,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

// TicketLentPayload payload.
type TicketLentPayload struct {
	ToProject *string `json:"to_project,omitempty"`
	ToUser    *string `json:"to_user,omitempty"`
	Comment   string  `json:"comment"`
}

// InviteAcceptedPayload payload.
type InviteAcceptedPayload struct {
	Email string `json:"email"`
}
