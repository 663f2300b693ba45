package board

import "github.com/spiderqueue/spiderqueue/internal/domain"

// LaneKind distinguishes status columns from per-member columns.
type LaneKind string

const (
	LaneKindStatus LaneKind = "status"
	LaneKindMember LaneKind = "member"
)

// Lane is one rendered column. Status lanes carry a pipeline stage; member
// lanes (assign board only) carry the member's identifier.
type Lane struct {
	Kind     LaneKind
	Status   domain.TicketStatus
	MemberID string
}

// StatusLane builds a lane for a pipeline stage.
func StatusLane(status domain.TicketStatus) Lane {
	return Lane{Kind: LaneKindStatus, Status: status}
}

// MemberLane builds a lane for a workspace member.
func MemberLane(memberID string) Lane {
	return Lane{Kind: LaneKindMember, MemberID: memberID}
}

// DropAction is what a legal drop performs.
type DropAction string

const (
	// DropMove changes the ticket's status to the destination lane's stage.
	DropMove DropAction = "move"
	// DropAssign assigns the ticket to the destination lane's member; the
	// status is untouched.
	DropAssign DropAction = "assign"
	// DropNone rejects the drop (or it is a same-lane no-op).
	DropNone DropAction = "none"
)

// Lanes resolves the rendered columns for a view context. Every context shows
// the five-stage pipeline except home+assign, which shows inbox and hold plus
// one lane per workspace member.
func Lanes(ctx Context, members []domain.Member) []Lane {
	if ctx.View == ViewHome && ctx.personMode() == PersonAssign {
		lanes := []Lane{
			StatusLane(domain.TicketStatusInbox),
			StatusLane(domain.TicketStatusHold),
		}
		for _, m := range members {
			lanes = append(lanes, MemberLane(m.Email))
		}
		return lanes
	}
	lanes := make([]Lane, 0, 5)
	for _, status := range domain.PipelineStatuses() {
		lanes = append(lanes, StatusLane(status))
	}
	return lanes
}

// ResolveDrop decides what dropping a ticket from src onto dst does under ctx.
// Pure function of its inputs.
//
// Legality matrix:
//   - home+overview: only inbox<->hold moves; everything else rejects.
//   - home+assign: a member lane assigns regardless of source; inbox/hold
//     moves; any other destination rejects.
//   - all other contexts: any status move is legal, same-lane drops are no-ops.
func ResolveDrop(ctx Context, src, dst Lane) DropAction {
	if ctx.View == ViewHome && ctx.personMode() == PersonAssign {
		if dst.Kind == LaneKindMember {
			return DropAssign
		}
		if dst.Status == domain.TicketStatusInbox || dst.Status == domain.TicketStatusHold {
			return DropMove
		}
		return DropNone
	}

	if src == dst {
		return DropNone
	}

	if ctx.View == ViewHome && ctx.personMode() == PersonOverview {
		if isTriageLane(src) && isTriageLane(dst) {
			return DropMove
		}
		return DropNone
	}

	if dst.Kind != LaneKindStatus || !domain.IsValidStatus(dst.Status) {
		return DropNone
	}
	return DropMove
}

// IsLegalMove reports whether dropping from src onto dst does anything under
// ctx.
func IsLegalMove(ctx Context, src, dst Lane) bool {
	return ResolveDrop(ctx, src, dst) != DropNone
}

func isTriageLane(lane Lane) bool {
	if lane.Kind != LaneKindStatus {
		return false
	}
	return lane.Status == domain.TicketStatusInbox || lane.Status == domain.TicketStatusHold
}
