package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spiderqueue/spiderqueue/internal/board"
	"github.com/spiderqueue/spiderqueue/internal/domain"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// flakyStore wraps a real store and fails selected operations, standing in for
// an unreachable backend.
type flakyStore struct {
	repository.WorkspaceStore
	failStatus   bool
	failAssignee bool
	failList     bool
}

var errBackendDown = errors.New("backend unreachable")

func (f *flakyStore) UpdateTicketStatus(ctx context.Context, workspaceID, projectID, ticketID string, toStatus domain.TicketStatus, actor string) error {
	if f.failStatus {
		return errBackendDown
	}
	return f.WorkspaceStore.UpdateTicketStatus(ctx, workspaceID, projectID, ticketID, toStatus, actor)
}

func (f *flakyStore) UpdateTicketAssignee(ctx context.Context, workspaceID, projectID, ticketID string, assignee *string, comment, actor string) error {
	if f.failAssignee {
		return errBackendDown
	}
	return f.WorkspaceStore.UpdateTicketAssignee(ctx, workspaceID, projectID, ticketID, assignee, comment, actor)
}

func (f *flakyStore) ListTickets(ctx context.Context, workspaceID, projectID string) ([]domain.Ticket, error) {
	if f.failList {
		return nil, errBackendDown
	}
	return f.WorkspaceStore.ListTickets(ctx, workspaceID, projectID)
}

func newBoardFixture(t *testing.T, store repository.WorkspaceStore) *BoardSession {
	t.Helper()
	svc := NewBoardService(store, nil, zap.NewNop())
	session, err := svc.Session(context.Background(), "w1", "p1")
	require.NoError(t, err)
	return session
}

func createTicket(t *testing.T, session *BoardSession, title string) *domain.Ticket {
	t.Helper()
	ticket, err := session.CreateTicket(context.Background(), domain.CreateTicketData{
		Title:     title,
		CreatedBy: "alice@example.com",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketPrependsNewestFirst(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())

	first := createTicket(t, session, "first")
	second := createTicket(t, session, "second")

	tickets := session.Tickets()
	require.Len(t, tickets, 2)
	assert.Equal(t, second.ID, tickets[0].ID)
	assert.Equal(t, first.ID, tickets[1].ID)
}

func TestCreateTicketStartsInInboxWithHistory(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())

	ticket := createTicket(t, session, "new work")
	assert.Equal(t, domain.TicketStatusInbox, ticket.Status)
	require.Len(t, ticket.History, 1)
	assert.Equal(t, domain.ActionCreated, ticket.History[0].Action)
}

func TestMoveTicketUpdatesStatus(t *testing.T) {
	store := repository.NewMemoryStore()
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "movable")

	listView := board.Context{View: board.ViewList}
	tickets, err := session.MoveTicket(context.Background(), listView, "bob@example.com", ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusInProgress, tickets[0].Status)

	// store side carries the authoritative moved entry
	stored, err := store.ListTickets(context.Background(), "w1", "p1")
	require.NoError(t, err)
	require.Len(t, stored[0].History, 2)
	assert.Equal(t, domain.ActionMoved, stored[0].History[1].Action)
}

func TestMoveTicketSameLaneIsNoOp(t *testing.T) {
	store := repository.NewMemoryStore()
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "idle")

	listView := board.Context{View: board.ViewList}
	tickets, err := session.MoveTicket(context.Background(), listView, "bob@example.com", ticket.ID, domain.TicketStatusInbox)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInbox, tickets[0].Status)

	stored, err := store.ListTickets(context.Background(), "w1", "p1")
	require.NoError(t, err)
	assert.Len(t, stored[0].History, 1)
}

func TestMoveTicketRejectedInOverview(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "triage only")

	overview := board.Context{View: board.ViewHome, PersonMode: board.PersonOverview}
	_, err := session.MoveTicket(context.Background(), overview, "bob@example.com", ticket.ID, domain.TicketStatusDone)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// inbox -> hold stays legal
	_, err = session.MoveTicket(context.Background(), overview, "bob@example.com", ticket.ID, domain.TicketStatusHold)
	require.NoError(t, err)
}

func TestMoveTicketRejectsUnknownStatus(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "t")

	_, err := session.MoveTicket(context.Background(), board.Context{View: board.ViewList}, "bob@example.com", ticket.ID, domain.TicketStatus("archived"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestMoveTicketStoreFailureResyncsWithoutError(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := &flakyStore{WorkspaceStore: inner}
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "doomed move")

	store.failStatus = true
	listView := board.Context{View: board.ViewList}
	tickets, err := session.MoveTicket(context.Background(), listView, "bob@example.com", ticket.ID, domain.TicketStatusDone)

	// no surfaced error; optimistic status discarded by the resync
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusInbox, tickets[0].Status)
}

func TestMoveTicketFailedResyncKeepsStaleState(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := &flakyStore{WorkspaceStore: inner}
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "stale after outage")

	store.failStatus = true
	store.failList = true
	listView := board.Context{View: board.ViewList}
	tickets, err := session.MoveTicket(context.Background(), listView, "bob@example.com", ticket.ID, domain.TicketStatusDone)

	// both the write and the resync failed: the optimistic value stays visible
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusDone, tickets[0].Status)
}

func TestAssignTicketAppendsExactlyOneEntry(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "assignable")

	bob := "bob@example.com"
	tickets, err := session.AssignTicket(context.Background(), "alice@example.com", ticket.ID, &bob, "")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].AssignedTo)
	assert.Equal(t, bob, *tickets[0].AssignedTo)

	// created + one assigned entry, status untouched
	require.Len(t, tickets[0].History, 2)
	assert.Equal(t, domain.ActionAssigned, tickets[0].History[1].Action)
	assert.Equal(t, domain.TicketStatusInbox, tickets[0].Status)
}

func TestAssignTicketFailureRollsBackAssignee(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := &flakyStore{WorkspaceStore: inner}
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "doomed assign")

	store.failAssignee = true
	bob := "bob@example.com"
	tickets, err := session.AssignTicket(context.Background(), "alice@example.com", ticket.ID, &bob, "")
	require.NoError(t, err)
	assert.Nil(t, tickets[0].AssignedTo)
}

func TestDropTicketOnMemberLaneAssigns(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "drag me")

	assignView := board.Context{View: board.ViewHome, PersonMode: board.PersonAssign}
	tickets, err := session.DropTicket(context.Background(), assignView, "alice@example.com", ticket.ID, board.MemberLane("bob@example.com"))
	require.NoError(t, err)
	require.NotNil(t, tickets[0].AssignedTo)
	assert.Equal(t, "bob@example.com", *tickets[0].AssignedTo)
	assert.Equal(t, domain.TicketStatusInbox, tickets[0].Status)
}

func TestDropTicketIllegalTargetRejected(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "pinned")

	overview := board.Context{View: board.ViewHome, PersonMode: board.PersonOverview}
	_, err := session.DropTicket(context.Background(), overview, "alice@example.com", ticket.ID, board.StatusLane(domain.TicketStatusDone))
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestDropTicketUnknownTicket(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	_, err := session.DropTicket(context.Background(), board.Context{View: board.ViewList}, "alice@example.com", "missing", board.StatusLane(domain.TicketStatusDone))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestLendTicketRequiresComment(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "lendable")

	_, err := session.LendTicket(context.Background(), "alice@example.com", ticket.ID, nil, nil, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLendTicketTwiceConflicts(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "popular")

	bob := "bob@example.com"
	_, err := session.LendTicket(context.Background(), "alice@example.com", ticket.ID, nil, &bob, "handoff")
	require.NoError(t, err)

	_, err = session.LendTicket(context.Background(), "alice@example.com", ticket.ID, nil, &bob, "again")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestReturnTicketRestoresOrigin(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "boomerang")

	bob := "bob@example.com"
	_, err := session.LendTicket(context.Background(), "alice@example.com", ticket.ID, nil, &bob, "handoff")
	require.NoError(t, err)

	tickets, err := session.ReturnTicket(context.Background(), "bob@example.com", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketTypeAssigned, tickets[0].Type)
	assert.Nil(t, tickets[0].LentFrom)
}

func TestReturnTicketNotLentConflicts(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "home body")

	_, err := session.ReturnTicket(context.Background(), "alice@example.com", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestDetailViewFollowsResync(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := &flakyStore{WorkspaceStore: inner}
	session := newBoardFixture(t, store)
	ticket := createTicket(t, session, "watched")

	opened, err := session.OpenDetail(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, opened.ID)

	store.failStatus = true
	listView := board.Context{View: board.ViewList}
	_, err = session.MoveTicket(context.Background(), listView, "bob@example.com", ticket.ID, domain.TicketStatusDone)
	require.NoError(t, err)

	detail := session.Detail()
	require.NotNil(t, detail)
	assert.Equal(t, domain.TicketStatusInbox, detail.Status)

	session.CloseDetail()
	assert.Nil(t, session.Detail())
}

func TestCommentTicketAppendsEntry(t *testing.T) {
	session := newBoardFixture(t, repository.NewMemoryStore())
	ticket := createTicket(t, session, "discussed")

	tickets, err := session.CommentTicket(context.Background(), "alice@example.com", ticket.ID, "looks good")
	require.NoError(t, err)
	require.Len(t, tickets[0].History, 2)
	assert.Equal(t, domain.ActionCommented, tickets[0].History[1].Action)
	assert.Equal(t, "looks good", tickets[0].History[1].Comment)
}
