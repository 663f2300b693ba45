package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

func TestLanesDefaultPipeline(t *testing.T) {
	for _, ctx := range []Context{
		{View: ViewHome},
		{View: ViewHome, PersonMode: PersonOverview},
		{View: ViewPerson},
		{View: ViewList},
	} {
		lanes := Lanes(ctx, nil)
		require.Len(t, lanes, 5)
		assert.Equal(t, StatusLane(domain.TicketStatusInbox), lanes[0])
		assert.Equal(t, StatusLane(domain.TicketStatusHold), lanes[1])
		assert.Equal(t, StatusLane(domain.TicketStatusOnDeck), lanes[2])
		assert.Equal(t, StatusLane(domain.TicketStatusInProgress), lanes[3])
		assert.Equal(t, StatusLane(domain.TicketStatusDone), lanes[4])
	}
}

func TestLanesAssignModeShowsMemberColumns(t *testing.T) {
	members := []domain.Member{
		{Email: "alice@example.com"},
		{Email: "bob@example.com"},
	}
	lanes := Lanes(Context{View: ViewHome, PersonMode: PersonAssign}, members)
	require.Len(t, lanes, 4)
	assert.Equal(t, StatusLane(domain.TicketStatusInbox), lanes[0])
	assert.Equal(t, StatusLane(domain.TicketStatusHold), lanes[1])
	assert.Equal(t, MemberLane("alice@example.com"), lanes[2])
	assert.Equal(t, MemberLane("bob@example.com"), lanes[3])
}

func TestLanesAreDeterministic(t *testing.T) {
	members := []domain.Member{{Email: "alice@example.com"}}
	ctx := Context{View: ViewHome, PersonMode: PersonAssign}
	first := Lanes(ctx, members)
	second := Lanes(ctx, members)
	assert.Equal(t, first, second)
}

func TestResolveDropOverviewOnlyTriageMoves(t *testing.T) {
	ctx := Context{View: ViewHome, PersonMode: PersonOverview}

	assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusHold)))
	assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusHold), StatusLane(domain.TicketStatusInbox)))

	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusOnDeck)))
	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusOnDeck), StatusLane(domain.TicketStatusDone)))
	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusDone), StatusLane(domain.TicketStatusInbox)))
}

func TestResolveDropOverviewDefaultsWhenModeUnset(t *testing.T) {
	ctx := Context{View: ViewHome}
	assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusHold)))
	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusHold), StatusLane(domain.TicketStatusInProgress)))
}

func TestResolveDropAssignMode(t *testing.T) {
	ctx := Context{View: ViewHome, PersonMode: PersonAssign}

	// member lane assigns regardless of source
	assert.Equal(t, DropAssign, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), MemberLane("alice@example.com")))
	assert.Equal(t, DropAssign, ResolveDrop(ctx, StatusLane(domain.TicketStatusHold), MemberLane("bob@example.com")))

	// inbox and hold stay movable
	assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusHold)))

	// other status destinations reject
	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusDone)))
}

func TestResolveDropUnrestrictedViews(t *testing.T) {
	for _, ctx := range []Context{
		{View: ViewPerson},
		{View: ViewList},
	} {
		// any status move is legal, backward included
		assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusDone)))
		assert.Equal(t, DropMove, ResolveDrop(ctx, StatusLane(domain.TicketStatusDone), StatusLane(domain.TicketStatusInbox)))

		// same-lane drop is a no-op
		assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusHold), StatusLane(domain.TicketStatusHold)))
	}
}

func TestResolveDropRejectsUnknownStatus(t *testing.T) {
	ctx := Context{View: ViewList}
	assert.Equal(t, DropNone, ResolveDrop(ctx, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatus("archived"))))
}

func TestIsLegalMove(t *testing.T) {
	overview := Context{View: ViewHome, PersonMode: PersonOverview}
	assert.True(t, IsLegalMove(overview, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusHold)))
	assert.False(t, IsLegalMove(overview, StatusLane(domain.TicketStatusInbox), StatusLane(domain.TicketStatusDone)))
}
