package dto

import (
	"time"

	"github.com/spiderqueue/spiderqueue/internal/board"
	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// CreateBoardTicketRequest payload.
type CreateBoardTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Tags        []string              `json:"tags"`
	AssignedTo  *string               `json:"assigned_to"`
	Priority    domain.TicketPriority `json:"priority"`
	DueDate     *time.Time            `json:"due_date"`
	Comment     string                `json:"comment"`
}

// MoveTicketRequest payload. View and person mode describe the board the drag
// happened on; legality depends on them.
type MoveTicketRequest struct {
	ToStatus   domain.TicketStatus `json:"to_status"`
	View       board.ViewMode      `json:"view"`
	PersonMode board.PersonMode    `json:"person_mode"`
}

// DropTicketRequest payload for a raw drag-and-drop.
type DropTicketRequest struct {
	View       board.ViewMode      `json:"view"`
	PersonMode board.PersonMode    `json:"person_mode"`
	ToStatus   domain.TicketStatus `json:"to_status,omitempty"`
	ToMember   string              `json:"to_member,omitempty"`
}

// AssignTicketRequest payload. A nil assignee unassigns.
type AssignTicketRequest struct {
	Assignee *string `json:"assignee"`
	Comment  string  `json:"comment"`
}

// LendTicketRequest payload.
type LendTicketRequest struct {
	ToProjectID *string `json:"to_project_id"`
	ToUserID    *string `json:"to_user_id"`
	Comment     string  `json:"comment"`
}

// CommentTicketRequest payload.
type CommentTicketRequest struct {
	Comment string `json:"comment"`
}

// TicketResponse is the board card representation.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags"`
	Status      domain.TicketStatus   `json:"status"`
	Type        domain.TicketType     `json:"type"`
	ProjectID   string                `json:"project_id"`
	AssignedTo  *string               `json:"assigned_to"`
	CreatedBy   string                `json:"created_by"`
	Priority    domain.TicketPriority `json:"priority"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	LentFrom    *domain.LentFrom      `json:"lent_from,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse adds the audit trail to the card fields.
type TicketDetailResponse struct {
	TicketResponse
	History []HistoryEntryResponse `json:"history"`
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID          string               `json:"id"`
	Action      domain.HistoryAction `json:"action"`
	FromStatus  *domain.TicketStatus `json:"from_status,omitempty"`
	ToStatus    *domain.TicketStatus `json:"to_status,omitempty"`
	FromUser    *string              `json:"from_user,omitempty"`
	ToUser      *string              `json:"to_user,omitempty"`
	FromProject *string              `json:"from_project,omitempty"`
	ToProject   *string              `json:"to_project,omitempty"`
	Comment     string               `json:"comment,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
	UserID      string               `json:"user_id"`
}

// LaneResponse is one rendered board column.
type LaneResponse struct {
	Kind   board.LaneKind      `json:"kind"`
	Status domain.TicketStatus `json:"status,omitempty"`
	Member string              `json:"member,omitempty"`
}

func TicketFromDomain(t *domain.Ticket) TicketResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Tags:        tags,
		Status:      t.Status,
		Type:        t.Type,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		LentFrom:    t.LentFrom,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func TicketDetailFromDomain(t *domain.Ticket) TicketDetailResponse {
	history := make([]HistoryEntryResponse, 0, len(t.History))
	for _, entry := range t.History {
		history = append(history, HistoryEntryResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			FromStatus:  entry.FromStatus,
			ToStatus:    entry.ToStatus,
			FromUser:    entry.FromUser,
			ToUser:      entry.ToUser,
			FromProject: entry.FromProject,
			ToProject:   entry.ToProject,
			Comment:     entry.Comment,
			Timestamp:   entry.Timestamp,
			UserID:      entry.UserID,
		})
	}
	return TicketDetailResponse{
		TicketResponse: TicketFromDomain(t),
		History:        history,
	}
}

func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketFromDomain(&tickets[i]))
	}
	return items
}

func LanesFromDomain(lanes []board.Lane) []LaneResponse {
	items := make([]LaneResponse, 0, len(lanes))
	for _, lane := range lanes {
		items = append(items, LaneResponse{
			Kind:   lane.Kind,
			Status: lane.Status,
			Member: lane.MemberID,
		})
	}
	return items
}
