package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryAction captures what a history entry records.
type HistoryAction string

const (
	ActionCreated   HistoryAction = "created"
	ActionAssigned  HistoryAction = "assigned"
	ActionLent      HistoryAction = "lent"
	ActionReturned  HistoryAction = "returned"
	ActionMoved     HistoryAction = "moved"
	ActionCommented HistoryAction = "commented"
)

// TicketHistory is an immutable audit trail entry. FromStatus/ToStatus are set
// for moved entries, FromUser/ToUser for assigned and lent entries,
// FromProject/ToProject for lent entries.
type TicketHistory struct {
	ID          string
	Action      HistoryAction
	FromStatus  *TicketStatus
	ToStatus    *TicketStatus
	FromUser    *string
	ToUser      *string
	FromProject *string
	ToProject   *string
	Comment     string
	Timestamp   time.Time
	UserID      string
}

// NewCreatedEntry records ticket creation, optionally carrying the creation
// comment.
func NewCreatedEntry(actor, comment string) TicketHistory {
	return TicketHistory{
		ID:        uuid.NewString(),
		Action:    ActionCreated,
		Comment:   comment,
		Timestamp: time.Now(),
		UserID:    actor,
	}
}

// NewMovedEntry records a status change.
func NewMovedEntry(actor string, from, to TicketStatus) TicketHistory {
	return TicketHistory{
		ID:         uuid.NewString(),
		Action:     ActionMoved,
		FromStatus: &from,
		ToStatus:   &to,
		Timestamp:  time.Now(),
		UserID:     actor,
	}
}

// NewAssignedEntry records an assignee change. Either side may be nil when the
// ticket was or becomes unassigned.
func NewAssignedEntry(actor string, from, to *string, comment string) TicketHistory {
	return TicketHistory{
		ID:        uuid.NewString(),
		Action:    ActionAssigned,
		FromUser:  from,
		ToUser:    to,
		Comment:   comment,
		Timestamp: time.Now(),
		UserID:    actor,
	}
}

// NewLentEntry records a ticket being lent to another project or person.
func NewLentEntry(actor string, fromProject, toProject, fromUser, toUser *string, comment string) TicketHistory {
	return TicketHistory{
		ID:          uuid.NewString(),
		Action:      ActionLent,
		FromProject: fromProject,
		ToProject:   toProject,
		FromUser:    fromUser,
		ToUser:      toUser,
		Comment:     comment,
		Timestamp:   time.Now(),
		UserID:      actor,
	}
}

// NewReturnedEntry records a lent ticket going back to its origin.
func NewReturnedEntry(actor string, fromProject, toProject *string) TicketHistory {
	return TicketHistory{
		ID:          uuid.NewString(),
		Action:      ActionReturned,
		FromProject: fromProject,
		ToProject:   toProject,
		Timestamp:   time.Now(),
		UserID:      actor,
	}
}

// NewCommentEntry records a free-text comment.
func NewCommentEntry(actor, comment string) TicketHistory {
	return TicketHistory{
		ID:        uuid.NewString(),
		Action:    ActionCommented,
		Comment:   comment,
		Timestamp: time.Now(),
		UserID:    actor,
	}
}
