package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spiderqueue/spiderqueue/internal/events"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

func newWorkspaceFixture(t *testing.T) (*WorkspaceService, *ProfileService) {
	t.Helper()
	profiles := NewProfileService(repository.NewCachedProfileStore(repository.NewMemoryProfileStore(), nil, zap.NewNop()))
	svc := NewWorkspaceService(repository.NewMemoryStore(), profiles, events.NewInMemoryDispatcher())
	return svc, profiles
}

func TestCreateWorkspaceValidatesName(t *testing.T) {
	svc, _ := newWorkspaceFixture(t)

	_, err := svc.CreateWorkspace(context.Background(), "   ", "owner@example.com")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	ws, err := svc.CreateWorkspace(context.Background(), "  Platform  ", "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Platform", ws.Name)
}

func TestRenameWorkspaceNotFound(t *testing.T) {
	svc, _ := newWorkspaceFixture(t)

	err := svc.RenameWorkspace(context.Background(), "missing", "New Name")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestInviteRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)

	invite, err := svc.InviteUser(ctx, ws.ID, "new@example.com")
	require.NoError(t, err)
	require.Len(t, invite.Code, 6)

	result, err := svc.AcceptInvite(ctx, "new@example.com", invite.Code)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, result.WorkspaceID)

	members, err := svc.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAcceptInviteWrongCodeFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)
	_, err = svc.InviteUser(ctx, ws.ID, "new@example.com")
	require.NoError(t, err)

	_, err = svc.AcceptInvite(ctx, "new@example.com", "WRONG1")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVITE_REDEMPTION_FAILED", domainErr.Code)
	assert.Equal(t, 422, domainErr.HTTPStatus)
}

func TestAcceptInviteIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)
	invite, err := svc.InviteUser(ctx, ws.ID, "new@example.com")
	require.NoError(t, err)

	_, err = svc.AcceptInvite(ctx, "new@example.com", invite.Code)
	require.NoError(t, err)

	_, err = svc.AcceptInvite(ctx, "new@example.com", invite.Code)
	require.Error(t, err)
	assert.Equal(t, "INVITE_REDEMPTION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestInviteUserValidatesEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)

	_, err = svc.InviteUser(ctx, ws.ID, "not-an-email")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestListMembersResolvesDisplayNames(t *testing.T) {
	ctx := context.Background()
	svc, profiles := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)
	invite, err := svc.InviteUser(ctx, ws.ID, "alice@example.com")
	require.NoError(t, err)
	_, err = svc.AcceptInvite(ctx, "alice@example.com", invite.Code)
	require.NoError(t, err)

	user := profiles.ResolveUser(ctx, "alice@example.com")
	assert.Equal(t, "alice", user.Name)

	members, err := svc.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	// no profile rows exist, so names fall back to the email local part
	assert.Equal(t, "owner", members[0].Name)
	assert.Equal(t, "alice", members[1].Name)
}

func TestAddProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkspaceFixture(t)

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)

	project, err := svc.AddProject(ctx, ws.ID, "Board", "kanban board")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)

	workspaces, err := svc.GetUserWorkspaces(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	require.Len(t, workspaces[0].Projects, 1)
	assert.Equal(t, "Board", workspaces[0].Projects[0].Name)
}

func TestAcceptInvitePublishesEvent(t *testing.T) {
	ctx := context.Background()
	profiles := NewProfileService(repository.NewCachedProfileStore(repository.NewMemoryProfileStore(), nil, zap.NewNop()))
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewWorkspaceService(repository.NewMemoryStore(), profiles, dispatcher)

	var received []events.Event
	dispatcher.Subscribe(events.EventInviteAccepted, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	ws, err := svc.CreateWorkspace(ctx, "Platform", "owner@example.com")
	require.NoError(t, err)
	invite, err := svc.InviteUser(ctx, ws.ID, "new@example.com")
	require.NoError(t, err)
	_, err = svc.AcceptInvite(ctx, "new@example.com", invite.Code)
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, ws.ID, received[0].WorkspaceID)
	assert.Equal(t, "new@example.com", received[0].Actor)
}
