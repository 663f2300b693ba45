package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// TicketStatus enumerates pipeline stages for tickets. The pipeline is ordered
// for display only; no transition ordering is enforced.
type TicketStatus string

const (
	TicketStatusInbox      TicketStatus = "inbox"
	TicketStatusHold       TicketStatus = "hold"
	TicketStatusOnDeck     TicketStatus = "on-deck"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusDone       TicketStatus = "done"
)

// PipelineStatuses lists the five stages in board order.
func PipelineStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusInbox,
		TicketStatusHold,
		TicketStatusOnDeck,
		TicketStatusInProgress,
		TicketStatusDone,
	}
}

// IsValidStatus reports whether s is one of the five pipeline stages.
func IsValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusInbox, TicketStatusHold, TicketStatusOnDeck, TicketStatusInProgress, TicketStatusDone:
		return true
	}
	return false
}

// TicketType distinguishes tickets owned by their project from tickets lent in
// from another project.
type TicketType string

const (
	TicketTypeAssigned TicketType = "assigned"
	TicketTypeLent     TicketType = "lent"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// LentFrom describes where a lent ticket originated. Comment is mandatory.
type LentFrom struct {
	ProjectID *string `json:"projectId,omitempty"`
	UserID    *string `json:"userId,omitempty"`
	Comment   string  `json:"comment"`
}

// Ticket is the board aggregate. History is append-only: entries are never
// removed or mutated once added, and every status or assignee change produces
// exactly one entry in the same logical operation.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Status      TicketStatus
	Type        TicketType
	ProjectID   string
	AssignedTo  *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	History     []TicketHistory
	LentFrom    *LentFrom
	DueDate     *time.Time
	Priority    TicketPriority
}

// CreateTicketData carries the fields a caller supplies when creating a ticket.
type CreateTicketData struct {
	Title       string
	Description string
	Tags        []string
	ProjectID   string
	AssignedTo  *string
	Priority    TicketPriority
	DueDate     *time.Time
	Comment     string
	CreatedBy   string
}

// NewTicket validates data and builds a ticket in the inbox stage together
// with its first history entry. The title must be non-empty after trimming and
// a project reference is required.
func NewTicket(data CreateTicketData) (*Ticket, error) {
	title := strings.TrimSpace(data.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if data.ProjectID == "" {
		return nil, apperrors.NewValidationError("project required", nil)
	}

	priority := data.Priority
	if priority == "" {
		priority = TicketPriorityMedium
	}

	now := time.Now()
	ticket := &Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(data.Description),
		Tags:        dedupeTags(data.Tags),
		Status:      TicketStatusInbox,
		Type:        TicketTypeAssigned,
		ProjectID:   data.ProjectID,
		AssignedTo:  data.AssignedTo,
		CreatedBy:   data.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     data.DueDate,
		Priority:    priority,
	}
	ticket.AppendHistory(NewCreatedEntry(data.CreatedBy, strings.TrimSpace(data.Comment)))
	return ticket, nil
}

// AppendHistory adds an entry to the audit trail. Insertion order is the
// chronological order; prior entries are never touched.
func (t *Ticket) AppendHistory(entry TicketHistory) {
	t.History = append(t.History, entry)
}

// HasTag reports whether the ticket carries the exact tag.
func (t *Ticket) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
