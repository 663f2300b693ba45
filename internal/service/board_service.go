package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spiderqueue/spiderqueue/internal/board"
	"github.com/spiderqueue/spiderqueue/internal/domain"
	"github.com/spiderqueue/spiderqueue/internal/events"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// BoardService hands out board sessions, one per (workspace, project) pair.
// The store handle is injected at construction; sessions are created lazily on
// first use and live for the process lifetime.
type BoardService struct {
	store      repository.WorkspaceStore
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*BoardSession
}

// NewBoardService constructs the service.
func NewBoardService(store repository.WorkspaceStore, dispatcher events.Dispatcher, logger *zap.Logger) *BoardService {
	return &BoardService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		sessions:   make(map[string]*BoardSession),
	}
}

// Session returns the board session for a project, loading the ticket list
// from the store on first access.
func (s *BoardService) Session(ctx context.Context, workspaceID, projectID string) (*BoardSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[workspaceID+"/"+projectID]
	if !ok {
		session = &BoardSession{
			workspaceID: workspaceID,
			projectID:   projectID,
			store:       s.store,
			dispatcher:  s.dispatcher,
			logger:      s.logger,
		}
		s.sessions[workspaceID+"/"+projectID] = session
	}
	s.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// BoardSession owns the in-memory ticket list for one project board. It is the
// single place that mutates the list: mutations are applied optimistically
// before the store call, and a failed store call discards the optimistic value
// by replacing the whole list with a fresh fetch (no targeted rollback, no
// automatic retry).
type BoardSession struct {
	workspaceID string
	projectID   string
	store       repository.WorkspaceStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	mu      sync.Mutex
	loaded  bool
	tickets []domain.Ticket
	detail  *domain.Ticket // copy shown in the open detail view, nil when closed
}

func (b *BoardSession) ensureLoaded(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		return nil
	}
	tickets, err := b.store.ListTickets(ctx, b.workspaceID, b.projectID)
	if err != nil {
		return err
	}
	b.tickets = tickets
	b.loaded = true
	return nil
}

// Tickets returns a snapshot of the session's ticket list.
func (b *BoardSession) Tickets() []domain.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Ticket(nil), b.tickets...)
}

// Refresh replaces the list with the authoritative one from the store.
func (b *BoardSession) Refresh(ctx context.Context) ([]domain.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.resyncLocked(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}
	return append([]domain.Ticket(nil), b.tickets...), nil
}

// OpenDetail marks a ticket as shown in the detail view and returns its copy.
func (b *BoardSession) OpenDetail(ticketID string) (*domain.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	copied := cloneTicket(b.tickets[idx])
	b.detail = &copied
	return &copied, nil
}

// CloseDetail clears the open detail view.
func (b *BoardSession) CloseDetail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detail = nil
}

// Detail returns the currently open detail copy, if any.
func (b *BoardSession) Detail() *domain.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.detail == nil {
		return nil
	}
	copied := cloneTicket(*b.detail)
	return &copied
}

// CreateTicket delegates identifier allocation and the initial history entry
// to the store, then prepends the returned ticket (newest first).
func (b *BoardSession) CreateTicket(ctx context.Context, data domain.CreateTicketData) (*domain.Ticket, error) {
	ticket, err := b.store.CreateTicket(ctx, b.workspaceID, b.projectID, data)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	b.mu.Lock()
	b.tickets = append([]domain.Ticket{*ticket}, b.tickets...)
	b.mu.Unlock()

	b.publish(ctx, events.EventTicketCreated, ticket.ID, data.CreatedBy, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Priority: ticket.Priority,
		Assignee: ticket.AssignedTo,
	})
	return ticket, nil
}

// DropTicket maps a drag-and-drop onto a domain mutation: a member lane drop
// assigns, a status lane drop moves, anything else is rejected by the layout
// resolver.
func (b *BoardSession) DropTicket(ctx context.Context, view board.Context, actor, ticketID string, target board.Lane) ([]domain.Ticket, error) {
	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	src := board.StatusLane(b.tickets[idx].Status)
	b.mu.Unlock()

	switch board.ResolveDrop(view, src, target) {
	case board.DropAssign:
		member := target.MemberID
		return b.AssignTicket(ctx, actor, ticketID, &member, "")
	case board.DropMove:
		return b.MoveTicket(ctx, view, actor, ticketID, target.Status)
	default:
		if src == target {
			// same-lane drop is a no-op, not an error
			return b.Tickets(), nil
		}
		return nil, apperrors.NewForbidden("move not allowed in this view")
	}
}

// MoveTicket applies a status change. The new status is written to the
// in-memory list before the store call; if the store call fails the optimistic
// value is discarded by a full resync and no error is surfaced to the caller.
func (b *BoardSession) MoveTicket(ctx context.Context, view board.Context, actor, ticketID string, toStatus domain.TicketStatus) ([]domain.Ticket, error) {
	if !domain.IsValidStatus(toStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": toStatus})
	}

	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	fromStatus := b.tickets[idx].Status
	src := board.StatusLane(fromStatus)
	dst := board.StatusLane(toStatus)
	if src == dst {
		list := append([]domain.Ticket(nil), b.tickets...)
		b.mu.Unlock()
		return list, nil
	}
	if board.ResolveDrop(view, src, dst) != board.DropMove {
		b.mu.Unlock()
		return nil, apperrors.NewForbidden("move not allowed in this view")
	}

	// optimistic: local state first, store second
	b.tickets[idx].Status = toStatus
	b.tickets[idx].UpdatedAt = time.Now()
	b.mu.Unlock()

	if err := b.store.UpdateTicketStatus(ctx, b.workspaceID, b.projectID, ticketID, toStatus, actor); err != nil {
		b.logger.Warn("status update failed, resyncing board",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return b.discardAndResync(ctx)
	}

	b.publish(ctx, events.EventTicketMoved, ticketID, actor, events.TicketMovedPayload{
		FromStatus: fromStatus,
		ToStatus:   toStatus,
	})
	return b.Tickets(), nil
}

// AssignTicket sets (or clears) the assignee. A synthetic assigned history
// entry is appended locally so the board and the open detail view are
// immediately consistent; the store appends its own authoritative entry.
func (b *BoardSession) AssignTicket(ctx context.Context, actor, ticketID string, assignee *string, comment string) ([]domain.Ticket, error) {
	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	fromUser := b.tickets[idx].AssignedTo
	b.tickets[idx].AssignedTo = assignee
	b.tickets[idx].UpdatedAt = time.Now()
	b.tickets[idx].AppendHistory(domain.NewAssignedEntry(actor, fromUser, assignee, comment))
	if b.detail != nil && b.detail.ID == ticketID {
		copied := cloneTicket(b.tickets[idx])
		b.detail = &copied
	}
	b.mu.Unlock()

	if err := b.store.UpdateTicketAssignee(ctx, b.workspaceID, b.projectID, ticketID, assignee, comment, actor); err != nil {
		b.logger.Warn("assignee update failed, resyncing board",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return b.discardAndResync(ctx)
	}

	b.publish(ctx, events.EventTicketAssigned, ticketID, actor, events.TicketAssignedPayload{
		FromUser: fromUser,
		ToUser:   assignee,
		Comment:  comment,
	})
	return b.Tickets(), nil
}

// LendTicket marks the ticket as lent out. The justification comment is
// mandatory.
func (b *BoardSession) LendTicket(ctx context.Context, actor, ticketID string, toProjectID, toUserID *string, comment string) ([]domain.Ticket, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.NewValidationError("lend comment required", nil)
	}

	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if b.tickets[idx].Type == domain.TicketTypeLent {
		b.mu.Unlock()
		return nil, apperrors.NewConflict("ticket already lent", map[string]any{"ticket_id": ticketID})
	}
	fromProject := b.tickets[idx].ProjectID
	fromUser := b.tickets[idx].AssignedTo
	b.tickets[idx].Type = domain.TicketTypeLent
	b.tickets[idx].LentFrom = &domain.LentFrom{ProjectID: &fromProject, UserID: fromUser, Comment: comment}
	if toUserID != nil {
		b.tickets[idx].AssignedTo = toUserID
	}
	b.tickets[idx].UpdatedAt = time.Now()
	b.tickets[idx].AppendHistory(domain.NewLentEntry(actor, &fromProject, toProjectID, fromUser, toUserID, comment))
	b.mu.Unlock()

	lend := repository.LendRequest{ToProjectID: toProjectID, ToUserID: toUserID, Comment: comment, Actor: actor}
	if err := b.store.LendTicket(ctx, b.workspaceID, b.projectID, ticketID, lend); err != nil {
		b.logger.Warn("lend failed, resyncing board",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return b.discardAndResync(ctx)
	}

	b.publish(ctx, events.EventTicketLent, ticketID, actor, events.TicketLentPayload{
		ToProject: toProjectID,
		ToUser:    toUserID,
		Comment:   comment,
	})
	return b.Tickets(), nil
}

// ReturnTicket sends a lent ticket back to its origin.
func (b *BoardSession) ReturnTicket(ctx context.Context, actor, ticketID string) ([]domain.Ticket, error) {
	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if b.tickets[idx].Type != domain.TicketTypeLent {
		b.mu.Unlock()
		return nil, apperrors.NewConflict("ticket is not lent", map[string]any{"ticket_id": ticketID})
	}
	current := b.tickets[idx].ProjectID
	var origin *string
	if b.tickets[idx].LentFrom != nil {
		origin = b.tickets[idx].LentFrom.ProjectID
		b.tickets[idx].AssignedTo = b.tickets[idx].LentFrom.UserID
	}
	b.tickets[idx].Type = domain.TicketTypeAssigned
	b.tickets[idx].LentFrom = nil
	b.tickets[idx].UpdatedAt = time.Now()
	b.tickets[idx].AppendHistory(domain.NewReturnedEntry(actor, &current, origin))
	b.mu.Unlock()

	if err := b.store.ReturnTicket(ctx, b.workspaceID, b.projectID, ticketID, actor); err != nil {
		b.logger.Warn("return failed, resyncing board",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return b.discardAndResync(ctx)
	}

	b.publish(ctx, events.EventTicketReturned, ticketID, actor, nil)
	return b.Tickets(), nil
}

// CommentTicket appends a commented history entry.
func (b *BoardSession) CommentTicket(ctx context.Context, actor, ticketID, comment string) ([]domain.Ticket, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.NewValidationError("comment required", nil)
	}

	b.mu.Lock()
	idx := b.indexOfLocked(ticketID)
	if idx < 0 {
		b.mu.Unlock()
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	b.tickets[idx].UpdatedAt = time.Now()
	b.tickets[idx].AppendHistory(domain.NewCommentEntry(actor, comment))
	b.mu.Unlock()

	if err := b.store.CommentTicket(ctx, b.workspaceID, b.projectID, ticketID, actor, comment); err != nil {
		b.logger.Warn("comment failed, resyncing board",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return b.discardAndResync(ctx)
	}
	return b.Tickets(), nil
}

// discardAndResync throws away optimistic state by re-fetching the
// authoritative list. A failed resync leaves the stale optimistic state
// visible; nothing beyond a log line is reported.
func (b *BoardSession) discardAndResync(ctx context.Context) ([]domain.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.resyncLocked(ctx); err != nil {
		b.logger.Warn("board resync failed, keeping stale state", zap.Error(err))
	}
	return append([]domain.Ticket(nil), b.tickets...), nil
}

func (b *BoardSession) resyncLocked(ctx context.Context) error {
	tickets, err := b.store.ListTickets(ctx, b.workspaceID, b.projectID)
	if err != nil {
		return err
	}
	b.tickets = tickets
	b.loaded = true
	if b.detail != nil {
		// refresh the open detail view from the authoritative copy; the
		// ticket may have vanished server-side
		refreshed := (*domain.Ticket)(nil)
		for i := range tickets {
			if tickets[i].ID == b.detail.ID {
				copied := cloneTicket(tickets[i])
				refreshed = &copied
				break
			}
		}
		b.detail = refreshed
	}
	return nil
}

func (b *BoardSession) indexOfLocked(ticketID string) int {
	for i := range b.tickets {
		if b.tickets[i].ID == ticketID {
			return i
		}
	}
	return -1
}

func (b *BoardSession) publish(ctx context.Context, eventType events.EventType, ticketID, actor string, payload interface{}) {
	if b.dispatcher == nil {
		return
	}
	_ = b.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		WorkspaceID: b.workspaceID,
		ProjectID:   b.projectID,
		TicketID:    ticketID,
		Actor:       actor,
		Timestamp:   time.Now(),
		Payload:     payload,
	})
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	copied := t
	copied.Tags = append([]string(nil), t.Tags...)
	copied.History = append([]domain.TicketHistory(nil), t.History...)
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		copied.AssignedTo = &assignee
	}
	if t.LentFrom != nil {
		lent := *t.LentFrom
		copied.LentFrom = &lent
	}
	if t.DueDate != nil {
		due := *t.DueDate
		copied.DueDate = &due
	}
	return copied
}
