package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen             TicketStatus = "Open"
	TicketStatusInProgress       TicketStatus = "In Progress"
	TicketStatusSolved           TicketStatus = "Solved"
	TicketStatusCouldNotBeSolved TicketStatus = "Could Not Be Solved"
)

// TicketStatuses lists every state, quick-toggle cycle first.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusSolved,
	TicketStatusCouldNotBeSolved,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the failure state.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCouldNotBeSolved
}

var quickToggleCycle = map[TicketStatus]TicketStatus{
	TicketStatusOpen:       TicketStatusInProgress,
	TicketStatusInProgress: TicketStatusSolved,
	TicketStatusSolved:     TicketStatusOpen,
}

// NextQuickToggle returns the forward status in the quick-toggle cycle.
// The second result is false when the control is disabled for s.
func NextQuickToggle(s TicketStatus) (TicketStatus, bool) {
	next, ok := quickToggleCycle[s]
	return next, ok
}

// Transition moves t to next, enforcing the rejection comment rules and
// maintaining ResolvedAt. t is left unchanged on error.
func Transition(t *Ticket, next TicketStatus, comment string, now time.Time) error {
	if !next.Valid() {
		return ErrUnknownStatus
	}
	comment = strings.TrimSpace(comment)
	if next == TicketStatusCouldNotBeSolved && comment == "" {
		return ErrRejectionCommentRequired
	}

	if next == TicketStatusCouldNotBeSolved {
		t.RejectionComment = comment
	} else {
		t.RejectionComment = ""
	}

	switch {
	case next == TicketStatusSolved && t.ResolvedAt == nil:
		resolved := now.In(Zone)
		t.ResolvedAt = &resolved
	case next != TicketStatusSolved:
		t.ResolvedAt = nil
	}
	t.Status = next
	return nil
}
