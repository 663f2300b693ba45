package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

func ticketFixture(id, title, description, project string, assignee *string, tags ...string) domain.Ticket {
	return domain.Ticket{
		ID:          id,
		Title:       title,
		Description: description,
		Tags:        tags,
		Status:      domain.TicketStatusInbox,
		Type:        domain.TicketTypeAssigned,
		ProjectID:   project,
		AssignedTo:  assignee,
	}
}

func strPtr(s string) *string { return &s }

func TestVisibleTicketsProjectScope(t *testing.T) {
	tickets := []domain.Ticket{
		ticketFixture("t1", "fix login", "", "p1", nil),
		ticketFixture("t2", "fix logout", "", "p2", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{ProjectID: "p1"})
	require.Len(t, visible, 1)
	assert.Equal(t, "t1", visible[0].ID)
}

func TestVisibleTicketsPreservesOrder(t *testing.T) {
	tickets := []domain.Ticket{
		ticketFixture("t1", "alpha", "", "p1", nil),
		ticketFixture("t2", "beta", "", "p1", nil),
		ticketFixture("t3", "alpha two", "", "p1", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{ProjectID: "p1", SearchText: "alpha"})
	require.Len(t, visible, 2)
	assert.Equal(t, "t1", visible[0].ID)
	assert.Equal(t, "t3", visible[1].ID)
}

func TestVisibleTicketsAddingFilterNeverGrows(t *testing.T) {
	alice := strPtr("alice@example.com")
	tickets := []domain.Ticket{
		ticketFixture("t1", "payment bug", "", "p1", alice, "backend"),
		ticketFixture("t2", "payment page", "", "p1", nil, "frontend"),
		ticketFixture("t3", "invoice export", "", "p1", alice, "backend", "billing"),
	}

	base := VisibleTickets(tickets, FilterOptions{ProjectID: "p1"})
	withSearch := VisibleTickets(tickets, FilterOptions{ProjectID: "p1", SearchText: "payment"})
	withSearchAndTag := VisibleTickets(tickets, FilterOptions{ProjectID: "p1", SearchText: "payment", Tags: []string{"backend"}})

	assert.GreaterOrEqual(t, len(base), len(withSearch))
	assert.GreaterOrEqual(t, len(withSearch), len(withSearchAndTag))
	require.Len(t, withSearchAndTag, 1)
	assert.Equal(t, "t1", withSearchAndTag[0].ID)
}

func TestVisibleTicketsPersonView(t *testing.T) {
	alice := strPtr("alice@example.com")
	bob := strPtr("bob@example.com")
	tickets := []domain.Ticket{
		ticketFixture("t1", "one", "", "p1", alice),
		ticketFixture("t2", "two", "", "p1", bob),
		ticketFixture("t3", "three", "", "p1", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{
		ProjectID:    "p1",
		View:         ViewPerson,
		SelectedUser: alice,
	})
	require.Len(t, visible, 1)
	assert.Equal(t, "t1", visible[0].ID)
}

func TestVisibleTicketsListViewExcludesUnassigned(t *testing.T) {
	alice := strPtr("alice@example.com")
	bob := strPtr("bob@example.com")
	tickets := []domain.Ticket{
		ticketFixture("t1", "one", "", "p1", alice),
		ticketFixture("t2", "two", "", "p1", bob),
		ticketFixture("t3", "three", "", "p1", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{
		ProjectID: "p1",
		View:      ViewList,
		People:    []string{"alice@example.com", "bob@example.com"},
	})
	require.Len(t, visible, 2)
	for _, ticket := range visible {
		assert.NotNil(t, ticket.AssignedTo)
	}
}

func TestVisibleTicketsSearchIsCaseInsensitive(t *testing.T) {
	tickets := []domain.Ticket{
		ticketFixture("t1", "Fix OAuth flow", "", "p1", nil),
		ticketFixture("t2", "refactor", "covers oauth edge cases", "p1", nil),
		ticketFixture("t3", "cleanup", "", "p1", nil, "OAuth"),
		ticketFixture("t4", "unrelated", "", "p1", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{ProjectID: "p1", SearchText: "oauth"})
	require.Len(t, visible, 3)
	assert.Equal(t, "t1", visible[0].ID)
	assert.Equal(t, "t2", visible[1].ID)
	assert.Equal(t, "t3", visible[2].ID)
}

func TestVisibleTicketsTagsAreConjunctive(t *testing.T) {
	tickets := []domain.Ticket{
		ticketFixture("t1", "one", "", "p1", nil, "backend", "urgent"),
		ticketFixture("t2", "two", "", "p1", nil, "backend"),
		ticketFixture("t3", "three", "", "p1", nil, "urgent"),
	}

	visible := VisibleTickets(tickets, FilterOptions{ProjectID: "p1", Tags: []string{"backend", "urgent"}})
	require.Len(t, visible, 1)
	assert.Equal(t, "t1", visible[0].ID)
}

func TestVisibleTicketsEmptyFilterShowsWholeProject(t *testing.T) {
	tickets := []domain.Ticket{
		ticketFixture("t1", "one", "", "p1", nil),
		ticketFixture("t2", "two", "", "p1", nil),
	}

	visible := VisibleTickets(tickets, FilterOptions{ProjectID: "p1"})
	assert.Len(t, visible, 2)
}
