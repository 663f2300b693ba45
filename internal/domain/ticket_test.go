package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

func TestNewTicketDefaults(t *testing.T) {
	ticket, err := NewTicket(CreateTicketData{
		Title:     "  Fix login  ",
		ProjectID: "p1",
		CreatedBy: "alice@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "Fix login", ticket.Title)
	assert.Equal(t, TicketStatusInbox, ticket.Status)
	assert.Equal(t, TicketTypeAssigned, ticket.Type)
	assert.Equal(t, TicketPriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.AssignedTo)

	require.Len(t, ticket.History, 1)
	assert.Equal(t, ActionCreated, ticket.History[0].Action)
	assert.Equal(t, "alice@example.com", ticket.History[0].UserID)
}

func TestNewTicketRejectsBlankTitle(t *testing.T) {
	_, err := NewTicket(CreateTicketData{Title: "   ", ProjectID: "p1"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestNewTicketRequiresProject(t *testing.T) {
	_, err := NewTicket(CreateTicketData{Title: "ok"})
	require.Error(t, err)
}

func TestNewTicketDedupesTags(t *testing.T) {
	ticket, err := NewTicket(CreateTicketData{
		Title:     "tagged",
		ProjectID: "p1",
		Tags:      []string{"backend", " backend", "backend", "", "urgent"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "urgent"}, ticket.Tags)
}

func TestNewTicketCreationComment(t *testing.T) {
	ticket, err := NewTicket(CreateTicketData{
		Title:     "with note",
		ProjectID: "p1",
		Comment:   "imported from the old tracker",
		CreatedBy: "alice@example.com",
	})
	require.NoError(t, err)
	require.Len(t, ticket.History, 1)
	assert.Equal(t, "imported from the old tracker", ticket.History[0].Comment)
}

func TestAppendHistoryIsAppendOnly(t *testing.T) {
	ticket, err := NewTicket(CreateTicketData{Title: "t", ProjectID: "p1", CreatedBy: "alice@example.com"})
	require.NoError(t, err)

	before := append([]TicketHistory(nil), ticket.History...)
	from := TicketStatusInbox
	to := TicketStatusOnDeck
	ticket.AppendHistory(NewMovedEntry("bob@example.com", from, to))
	ticket.AppendHistory(NewCommentEntry("bob@example.com", "picking this up"))

	// prior entries stay untouched, in order
	require.Len(t, ticket.History, len(before)+2)
	for i, entry := range before {
		assert.Equal(t, entry, ticket.History[i])
	}
	assert.Equal(t, ActionMoved, ticket.History[1].Action)
	assert.Equal(t, ActionCommented, ticket.History[2].Action)
}

func TestHistoryEntryShapes(t *testing.T) {
	from := TicketStatusInbox
	to := TicketStatusDone
	moved := NewMovedEntry("alice@example.com", from, to)
	require.NotNil(t, moved.FromStatus)
	require.NotNil(t, moved.ToStatus)
	assert.Equal(t, from, *moved.FromStatus)
	assert.Equal(t, to, *moved.ToStatus)
	assert.NotEmpty(t, moved.ID)

	bob := "bob@example.com"
	assigned := NewAssignedEntry("alice@example.com", nil, &bob, "yours now")
	assert.Nil(t, assigned.FromUser)
	require.NotNil(t, assigned.ToUser)
	assert.Equal(t, bob, *assigned.ToUser)
	assert.Equal(t, "yours now", assigned.Comment)
}

func TestHasTag(t *testing.T) {
	ticket := Ticket{Tags: []string{"backend", "urgent"}}
	assert.True(t, ticket.HasTag("backend"))
	assert.False(t, ticket.HasTag("Backend"))
	assert.False(t, ticket.HasTag("frontend"))
}

func TestDisplayNameFallsBackToLocalPart(t *testing.T) {
	assert.Equal(t, "Alice", DisplayName("alice@example.com", "Alice"))
	assert.Equal(t, "alice", DisplayName("alice@example.com", ""))
	assert.Equal(t, "alice", DisplayName("alice@example.com", "   "))
	assert.Equal(t, "no-at-sign", DisplayName("no-at-sign", ""))
}

func TestWorkspaceHasMemberIgnoresCase(t *testing.T) {
	ws := Workspace{Members: []Member{{Email: "alice@example.com", Role: MemberRoleOwner}}}
	assert.True(t, ws.HasMember("Alice@Example.com"))
	assert.False(t, ws.HasMember("bob@example.com"))
}
