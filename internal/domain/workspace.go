package domain

import "time"

// MemberRole enumerates workspace membership roles.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Member is a workspace membership record. Email is the stable user identifier.
type Member struct {
	Email string
	Role  MemberRole
}

// Project groups tickets inside a workspace.
type Project struct {
	ID          string
	Name        string
	Description string
	WorkspaceID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Workspace is the top-level tenant: members plus projects.
type Workspace struct {
	ID          string
	Name        string
	Description string
	Members     []Member
	Projects    []Project
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether email belongs to the workspace (case-insensitive).
func (w *Workspace) HasMember(email string) bool {
	for _, m := range w.Members {
		if equalFoldEmail(m.Email, email) {
			return true
		}
	}
	return false
}

// Invite grants workspace membership to a specific email. The code is six
// uppercase alphanumeric characters and redemption requires the exact
// (code, email) pair; a redeemed invite is deleted.
type Invite struct {
	ID          string
	Code        string
	Email       string
	WorkspaceID string
	CreatedAt   time.Time
}

// InviteResult reports the outcome of an invite redemption.
type InviteResult struct {
	Success     bool
	WorkspaceID string
	Message     string
}
