package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// MemoryStore is the in-process WorkspaceStore: the local-mode analog of the
// remote document store, useful for development and tests. All methods return
// deep copies so callers can never alias internal state.
type MemoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]*domain.Workspace
	invites    []domain.Invite
	tickets    map[string][]*domain.Ticket // keyed workspaceID + "/" + projectID
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workspaces: make(map[string]*domain.Workspace),
		tickets:    make(map[string][]*domain.Ticket),
	}
}

func (s *MemoryStore) GetUserWorkspaces(_ context.Context, email string) ([]domain.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Workspace
	for _, ws := range s.workspaces {
		if ws.HasMember(email) {
			result = append(result, *cloneWorkspace(ws))
		}
	}
	return result, nil
}

func (s *MemoryStore) CreateWorkspace(_ context.Context, name, ownerEmail string) (*domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	ws := &domain.Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		Members:   []domain.Member{{Email: strings.ToLower(ownerEmail), Role: domain.MemberRoleOwner}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.workspaces[ws.ID] = ws
	return cloneWorkspace(ws), nil
}

func (s *MemoryStore) RenameWorkspace(_ context.Context, workspaceID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return ErrNotFound
	}
	ws.Name = name
	ws.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ListMembers(_ context.Context, workspaceID string) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]domain.Member(nil), ws.Members...), nil
}

func (s *MemoryStore) InviteUser(_ context.Context, workspaceID, email string) (*domain.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[workspaceID]; !ok {
		return nil, ErrNotFound
	}
	inv := domain.Invite{
		ID:          uuid.NewString(),
		Code:        NewInviteCode(),
		Email:       strings.ToLower(email),
		WorkspaceID: workspaceID,
		CreatedAt:   time.Now(),
	}
	s.invites = append(s.invites, inv)
	return &inv, nil
}

func (s *MemoryStore) AcceptInvite(_ context.Context, email, code string) (*domain.InviteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(code)
	email = strings.ToLower(email)
	for i, inv := range s.invites {
		if inv.Code != code || inv.Email != email {
			continue
		}
		ws, ok := s.workspaces[inv.WorkspaceID]
		if !ok {
			return &domain.InviteResult{Success: false, Message: "Workspace not found"}, nil
		}
		if !ws.HasMember(email) {
			ws.Members = append(ws.Members, domain.Member{Email: email, Role: domain.MemberRoleMember})
		}
		ws.UpdatedAt = time.Now()
		// single use
		s.invites = append(s.invites[:i], s.invites[i+1:]...)
		return &domain.InviteResult{Success: true, WorkspaceID: ws.ID}, nil
	}
	return &domain.InviteResult{Success: false, Message: "Invalid invite code or email"}, nil
}

func (s *MemoryStore) AddProject(_ context.Context, workspaceID, name, description string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		WorkspaceID: workspaceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ws.Projects = append(ws.Projects, project)
	ws.UpdatedAt = now
	return &project, nil
}

func (s *MemoryStore) ListTickets(_ context.Context, workspaceID, projectID string) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.tickets[ticketKey(workspaceID, projectID)]
	result := make([]domain.Ticket, 0, len(stored))
	for _, t := range stored {
		result = append(result, *cloneTicket(t))
	}
	return result, nil
}

func (s *MemoryStore) CreateTicket(_ context.Context, workspaceID, projectID string, data domain.CreateTicketData) (*domain.Ticket, error) {
	data.ProjectID = projectID
	ticket, err := domain.NewTicket(data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ticketKey(workspaceID, projectID)
	s.tickets[key] = append(s.tickets[key], ticket)
	return cloneTicket(ticket), nil
}

func (s *MemoryStore) UpdateTicketStatus(_ context.Context, workspaceID, projectID, ticketID string, toStatus domain.TicketStatus, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.findTicket(workspaceID, projectID, ticketID)
	if err != nil {
		return err
	}
	from := ticket.Status
	ticket.Status = toStatus
	ticket.UpdatedAt = time.Now()
	ticket.AppendHistory(domain.NewMovedEntry(actor, from, toStatus))
	return nil
}

func (s *MemoryStore) UpdateTicketAssignee(_ context.Context, workspaceID, projectID, ticketID string, assignee *string, comment, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.findTicket(workspaceID, projectID, ticketID)
	if err != nil {
		return err
	}
	from := ticket.AssignedTo
	ticket.AssignedTo = assignee
	ticket.UpdatedAt = time.Now()
	ticket.AppendHistory(domain.NewAssignedEntry(actor, from, assignee, comment))
	return nil
}

func (s *MemoryStore) LendTicket(_ context.Context, workspaceID, projectID, ticketID string, lend LendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.findTicket(workspaceID, projectID, ticketID)
	if err != nil {
		return err
	}
	fromProject := ticket.ProjectID
	fromUser := ticket.AssignedTo
	ticket.Type = domain.TicketTypeLent
	ticket.LentFrom = &domain.LentFrom{
		ProjectID: &fromProject,
		UserID:    fromUser,
		Comment:   lend.Comment,
	}
	if lend.ToUserID != nil {
		ticket.AssignedTo = lend.ToUserID
	}
	ticket.UpdatedAt = time.Now()
	ticket.AppendHistory(domain.NewLentEntry(lend.Actor, &fromProject, lend.ToProjectID, fromUser, lend.ToUserID, lend.Comment))
	return nil
}

func (s *MemoryStore) ReturnTicket(_ context.Context, workspaceID, projectID, ticketID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.findTicket(workspaceID, projectID, ticketID)
	if err != nil {
		return err
	}
	if ticket.Type != domain.TicketTypeLent {
		return ErrNotFound
	}
	var fromProject, toProject *string
	current := ticket.ProjectID
	fromProject = &current
	if ticket.LentFrom != nil {
		toProject = ticket.LentFrom.ProjectID
		ticket.AssignedTo = ticket.LentFrom.UserID
	}
	ticket.Type = domain.TicketTypeAssigned
	ticket.LentFrom = nil
	ticket.UpdatedAt = time.Now()
	ticket.AppendHistory(domain.NewReturnedEntry(actor, fromProject, toProject))
	return nil
}

func (s *MemoryStore) CommentTicket(_ context.Context, workspaceID, projectID, ticketID, actor, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.findTicket(workspaceID, projectID, ticketID)
	if err != nil {
		return err
	}
	ticket.UpdatedAt = time.Now()
	ticket.AppendHistory(domain.NewCommentEntry(actor, comment))
	return nil
}

func (s *MemoryStore) findTicket(workspaceID, projectID, ticketID string) (*domain.Ticket, error) {
	for _, t := range s.tickets[ticketKey(workspaceID, projectID)] {
		if t.ID == ticketID {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func ticketKey(workspaceID, projectID string) string {
	return workspaceID + "/" + projectID
}

func cloneWorkspace(ws *domain.Workspace) *domain.Workspace {
	copied := *ws
	copied.Members = append([]domain.Member(nil), ws.Members...)
	copied.Projects = append([]domain.Project(nil), ws.Projects...)
	return &copied
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	copied := *t
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
	return &copied
}
