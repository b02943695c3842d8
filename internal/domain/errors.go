package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrRejectionCommentRequired blocks a move to the failure state without an explanation.
	ErrRejectionCommentRequired = errors.New("rejection comment required when a ticket could not be solved")
	// ErrQuickToggleDisabled is returned when the quick-toggle is used on a failed ticket.
	ErrQuickToggleDisabled = errors.New("quick toggle is disabled for tickets that could not be solved")
	// ErrUnknownStatus rejects status labels outside the state machine.
	ErrUnknownStatus = errors.New("unknown ticket status")
)

// ValidationError lists offending fields.
type ValidationError struct {
	Fields map[string]any
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Fields[k]))
	}
	return "invalid ticket (" + strings.Join(parts, ", ") + ")"
}
