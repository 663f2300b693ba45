package board

import (
	"strings"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// FilterOptions narrows the ticket set shown on a board. All predicates are
// ANDed; each stage only removes tickets, so adding a filter never grows the
// result.
type FilterOptions struct {
	ProjectID    string
	View         ViewMode
	SelectedUser *string  // person view: focus on one assignee
	People       []string // list view: keep tickets assigned to any of these
	SearchText   string
	Tags         []string // conjunctive: ticket must carry every tag
}

// VisibleTickets returns the subset of tickets visible under opts, preserving
// input order.
func VisibleTickets(tickets []domain.Ticket, opts FilterOptions) []domain.Ticket {
	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.ProjectID != opts.ProjectID {
			continue
		}
		if opts.View == ViewPerson && opts.SelectedUser != nil {
			if ticket.AssignedTo == nil || *ticket.AssignedTo != *opts.SelectedUser {
				continue
			}
		}
		if opts.View == ViewList && len(opts.People) > 0 {
			if ticket.AssignedTo == nil || !containsString(opts.People, *ticket.AssignedTo) {
				continue
			}
		}
		if opts.SearchText != "" && !matchesSearch(&ticket, opts.SearchText) {
			continue
		}
		if len(opts.Tags) > 0 && !hasAllTags(&ticket, opts.Tags) {
			continue
		}
		filtered = append(filtered, ticket)
	}
	return filtered
}

func matchesSearch(ticket *domain.Ticket, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(ticket.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ticket.Description), needle) {
		return true
	}
	for _, tag := range ticket.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func hasAllTags(ticket *domain.Ticket, tags []string) bool {
	for _, tag := range tags {
		if !ticket.HasTag(tag) {
			return false
		}
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
