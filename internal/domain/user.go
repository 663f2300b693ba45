package domain

import "strings"

// User is the resolved view of a workspace member: the stable identifier is
// the email, the display name comes from the profile store when present.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

// DisplayName resolves a member's visible name: the stored profile name when
// present, otherwise the local part of the email.
func DisplayName(email, profileName string) string {
	if strings.TrimSpace(profileName) != "" {
		return profileName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func equalFoldEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
