// Package board holds the pure board logic: which lanes render for a view
// mode, which drag-and-drop moves are legal between them, and which tickets
// are visible under the active filters. Nothing here mutates ticket state.
package board

// ViewMode selects how the board is laid out.
type ViewMode string

const (
	ViewHome   ViewMode = "home"
	ViewPerson ViewMode = "person"
	ViewList   ViewMode = "list"
)

// PersonMode refines the home view: overview is read-mostly triage, assign
// replaces the working lanes with one lane per workspace member.
type PersonMode string

const (
	PersonOverview PersonMode = "overview"
	PersonAssign   PersonMode = "assign"
)

// Context is the view state a drag-and-drop happens under.
type Context struct {
	View       ViewMode
	PersonMode PersonMode
}

func (c Context) personMode() PersonMode {
	if c.PersonMode == "" {
		return PersonOverview
	}
	return c.PersonMode
}
