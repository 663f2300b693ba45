package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spiderqueue/spiderqueue/internal/domain"
)

// PostgresStore is the WorkspaceStore backed by the remote document database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds the store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetUserWorkspaces(ctx context.Context, email string) ([]domain.Workspace, error) {
	const query = `
        SELECT w.id, w.name, w.description, w.created_at, w.updated_at
        FROM workspaces w
        JOIN memberships m ON m.workspace_id = w.id
        WHERE LOWER(m.email) = LOWER($1)
        ORDER BY w.created_at ASC`
	rows, err := s.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Workspace
	for rows.Next() {
		var ws domain.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Description, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := s.loadWorkspaceChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *PostgresStore) CreateWorkspace(ctx context.Context, name, ownerEmail string) (*domain.Workspace, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ws := &domain.Workspace{ID: uuid.NewString(), Name: name}
	const insertWorkspace = `
        INSERT INTO workspaces (id, name, description)
        VALUES ($1, $2, '')
        RETURNING created_at, updated_at`
	if err := tx.QueryRow(ctx, insertWorkspace, ws.ID, name).Scan(&ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return nil, err
	}

	owner := domain.Member{Email: strings.ToLower(ownerEmail), Role: domain.MemberRoleOwner}
	const insertMember = `
        INSERT INTO memberships (id, workspace_id, email, role)
        VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertMember, uuid.NewString(), ws.ID, owner.Email, owner.Role); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ws.Members = []domain.Member{owner}
	return ws, nil
}

func (s *PostgresStore) RenameWorkspace(ctx context.Context, workspaceID, name string) error {
	const query = `UPDATE workspaces SET name=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := s.pool.Exec(ctx, query, name, workspaceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error) {
	const query = `
        SELECT email, role FROM memberships
        WHERE workspace_id=$1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.Email, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) InviteUser(ctx context.Context, workspaceID, email string) (*domain.Invite, error) {
	inv := &domain.Invite{
		ID:          uuid.NewString(),
		Code:        NewInviteCode(),
		Email:       strings.ToLower(email),
		WorkspaceID: workspaceID,
	}
	const query = `
        INSERT INTO invites (id, code, email, workspace_id)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`
	if err := s.pool.QueryRow(ctx, query, inv.ID, inv.Code, inv.Email, inv.WorkspaceID).Scan(&inv.CreatedAt); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *PostgresStore) AcceptInvite(ctx context.Context, email, code string) (*domain.InviteResult, error) {
	email = strings.ToLower(email)
	code = strings.ToUpper(code)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var inviteID, workspaceID string
	const findInvite = `
        SELECT id, workspace_id FROM invites
        WHERE code=$1 AND email=$2
        FOR UPDATE`
	if err := tx.QueryRow(ctx, findInvite, code, email).Scan(&inviteID, &workspaceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.InviteResult{Success: false, Message: "Invalid invite code or email"}, nil
		}
		return nil, err
	}

	var exists bool
	const checkMember = `
        SELECT EXISTS(SELECT 1 FROM memberships WHERE workspace_id=$1 AND LOWER(email)=$2)`
	if err := tx.QueryRow(ctx, checkMember, workspaceID, email).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		const insertMember = `
            INSERT INTO memberships (id, workspace_id, email, role)
            VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, insertMember, uuid.NewString(), workspaceID, email, domain.MemberRoleMember); err != nil {
			return nil, err
		}
	}

	// single use
	if _, err := tx.Exec(ctx, `DELETE FROM invites WHERE id=$1`, inviteID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE workspaces SET updated_at=NOW() WHERE id=$1`, workspaceID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.InviteResult{Success: true, WorkspaceID: workspaceID}, nil
}

func (s *PostgresStore) AddProject(ctx context.Context, workspaceID, name, description string) (*domain.Project, error) {
	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		WorkspaceID: workspaceID,
	}
	const query = `
        INSERT INTO projects (id, workspace_id, name, description)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	if err := s.pool.QueryRow(ctx, query, project.ID, workspaceID, name, description).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *PostgresStore) ListTickets(ctx context.Context, workspaceID, projectID string) ([]domain.Ticket, error) {
	const query = `
        SELECT id, title, description, tags, status, type, project_id, assigned_to,
               created_by, lent_from_project, lent_from_user, lent_comment, due_date,
               priority, created_at, updated_at
        FROM tickets
        WHERE workspace_id=$1 AND project_id=$2
        ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range tickets {
		history, err := s.listHistory(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		tickets[i].History = history
	}
	return tickets, nil
}

func (s *PostgresStore) CreateTicket(ctx context.Context, workspaceID, projectID string, data domain.CreateTicketData) (*domain.Ticket, error) {
	data.ProjectID = projectID
	ticket, err := domain.NewTicket(data)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (id, workspace_id, project_id, title, description, tags,
                             status, type, assigned_to, created_by, due_date, priority,
                             created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err := tx.Exec(ctx, insertTicket,
		ticket.ID,
		workspaceID,
		projectID,
		ticket.Title,
		ticket.Description,
		ticket.Tags,
		ticket.Status,
		ticket.Type,
		ticket.AssignedTo,
		ticket.CreatedBy,
		ticket.DueDate,
		ticket.Priority,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	for _, entry := range ticket.History {
		if err := insertHistoryTx(ctx, tx, ticket.ID, entry); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *PostgresStore) UpdateTicketStatus(ctx context.Context, workspaceID, projectID, ticketID string, toStatus domain.TicketStatus, actor string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var from domain.TicketStatus
	const current = `
        SELECT status FROM tickets
        WHERE id=$1 AND workspace_id=$2 AND project_id=$3
        FOR UPDATE`
	if err := tx.QueryRow(ctx, current, ticketID, workspaceID, projectID).Scan(&from); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	const update = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	if _, err := tx.Exec(ctx, update, toStatus, ticketID); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, ticketID, domain.NewMovedEntry(actor, from, toStatus)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) UpdateTicketAssignee(ctx context.Context, workspaceID, projectID, ticketID string, assignee *string, comment, actor string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var from *string
	const current = `
        SELECT assigned_to FROM tickets
        WHERE id=$1 AND workspace_id=$2 AND project_id=$3
        FOR UPDATE`
	if err := tx.QueryRow(ctx, current, ticketID, workspaceID, projectID).Scan(&from); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	const update = `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`
	if _, err := tx.Exec(ctx, update, assignee, ticketID); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, ticketID, domain.NewAssignedEntry(actor, from, assignee, comment)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) LendTicket(ctx context.Context, workspaceID, projectID, ticketID string, lend LendRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var fromUser *string
	var fromProject string
	const current = `
        SELECT assigned_to, project_id FROM tickets
        WHERE id=$1 AND workspace_id=$2 AND project_id=$3
        FOR UPDATE`
	if err := tx.QueryRow(ctx, current, ticketID, workspaceID, projectID).Scan(&fromUser, &fromProject); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	assignee := fromUser
	if lend.ToUserID != nil {
		assignee = lend.ToUserID
	}
	const update = `
        UPDATE tickets SET type=$1, assigned_to=$2, lent_from_project=$3,
            lent_from_user=$4, lent_comment=$5, updated_at=NOW()
        WHERE id=$6`
	if _, err := tx.Exec(ctx, update,
		domain.TicketTypeLent, assignee, fromProject, fromUser, lend.Comment, ticketID); err != nil {
		return err
	}
	entry := domain.NewLentEntry(lend.Actor, &fromProject, lend.ToProjectID, fromUser, lend.ToUserID, lend.Comment)
	if err := insertHistoryTx(ctx, tx, ticketID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ReturnTicket(ctx context.Context, workspaceID, projectID, ticketID, actor string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var ticketType domain.TicketType
	var lentProject, lentUser *string
	const current = `
        SELECT type, lent_from_project, lent_from_user FROM tickets
        WHERE id=$1 AND workspace_id=$2 AND project_id=$3
        FOR UPDATE`
	if err := tx.QueryRow(ctx, current, ticketID, workspaceID, projectID).Scan(&ticketType, &lentProject, &lentUser); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if ticketType != domain.TicketTypeLent {
		return ErrNotFound
	}

	const update = `
        UPDATE tickets SET type=$1, assigned_to=$2, lent_from_project=NULL,
            lent_from_user=NULL, lent_comment=NULL, updated_at=NOW()
        WHERE id=$3`
	if _, err := tx.Exec(ctx, update, domain.TicketTypeAssigned, lentUser, ticketID); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, ticketID, domain.NewReturnedEntry(actor, &projectID, lentProject)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) CommentTicket(ctx context.Context, workspaceID, projectID, ticketID, actor, comment string) error {
	const exists = `
        SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1 AND workspace_id=$2 AND project_id=$3)`
	var found bool
	if err := s.pool.QueryRow(ctx, exists, ticketID, workspaceID, projectID).Scan(&found); err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if _, err := s.pool.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, ticketID); err != nil {
		return err
	}
	return s.insertHistory(ctx, ticketID, domain.NewCommentEntry(actor, comment))
}

func (s *PostgresStore) loadWorkspaceChildren(ctx context.Context, ws *domain.Workspace) error {
	members, err := s.ListMembers(ctx, ws.ID)
	if err != nil {
		return err
	}
	ws.Members = members

	const query = `
        SELECT id, name, description, created_at, updated_at
        FROM projects WHERE workspace_id=$1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, query, ws.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		project := domain.Project{WorkspaceID: ws.ID}
		if err := rows.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return err
		}
		ws.Projects = append(ws.Projects, project)
	}
	return rows.Err()
}

func (s *PostgresStore) listHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, action, from_status, to_status, from_user, to_user,
               from_project, to_project, comment, created_at, user_id
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.TicketHistory
	for rows.Next() {
		var entry domain.TicketHistory
		var fromStatus, toStatus *string
		var comment *string
		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&fromStatus,
			&toStatus,
			&entry.FromUser,
			&entry.ToUser,
			&entry.FromProject,
			&entry.ToProject,
			&comment,
			&entry.Timestamp,
			&entry.UserID,
		); err != nil {
			return nil, err
		}
		if fromStatus != nil {
			status := domain.TicketStatus(*fromStatus)
			entry.FromStatus = &status
		}
		if toStatus != nil {
			status := domain.TicketStatus(*toStatus)
			entry.ToStatus = &status
		}
		if comment != nil {
			entry.Comment = *comment
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) insertHistory(ctx context.Context, ticketID string, entry domain.TicketHistory) error {
	return insertHistoryExec(ctx, s.pool, ticketID, entry)
}

func insertHistoryTx(ctx context.Context, tx pgx.Tx, ticketID string, entry domain.TicketHistory) error {
	return insertHistoryExec(ctx, tx, ticketID, entry)
}

func insertHistoryExec(ctx context.Context, db pgxExecutor, ticketID string, entry domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, action, from_status, to_status,
            from_user, to_user, from_project, to_project, comment, created_at, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	var comment *string
	if entry.Comment != "" {
		comment = &entry.Comment
	}
	_, err := db.Exec(ctx, query,
		entry.ID,
		ticketID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.FromUser,
		entry.ToUser,
		entry.FromProject,
		entry.ToProject,
		comment,
		entry.Timestamp,
		entry.UserID,
	)
	return err
}

func scanTicket(rows pgx.Rows) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var lentProject, lentUser, lentComment *string
	if err := rows.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Tags,
		&ticket.Status,
		&ticket.Type,
		&ticket.ProjectID,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&lentProject,
		&lentUser,
		&lentComment,
		&ticket.DueDate,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lentComment != nil {
		ticket.LentFrom = &domain.LentFrom{
			ProjectID: lentProject,
			UserID:    lentUser,
			Comment:   *lentComment,
		}
	}
	return &ticket, nil
}
