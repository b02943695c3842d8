package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SubmitTicketRequest is the public form payload.
type SubmitTicketRequest struct {
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Category            domain.Category   `json:"category"`
	CreatedByName       string            `json:"created_by_name"`
	CreatedBySurname    string            `json:"created_by_surname"`
	CreatedByDepartment domain.Department `json:"created_by_department"`
}

// UpdateTicketRequest is a full edit; omitted fields keep their value.
type UpdateTicketRequest struct {
	Title            *string                `json:"title,omitempty"`
	Description      *string                `json:"description,omitempty"`
	Status           *domain.TicketStatus   `json:"status,omitempty"`
	Priority         *domain.TicketPriority `json:"priority,omitempty"`
	AssignedTo       *domain.Assignee       `json:"assigned_to,omitempty"`
	Category         *domain.Category       `json:"category,omitempty"`
	RejectionComment *string                `json:"rejection_comment,omitempty"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                  string                `json:"id"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Status              domain.TicketStatus   `json:"status"`
	Priority            domain.TicketPriority `json:"priority"`
	AssignedTo          domain.Assignee       `json:"assigned_to"`
	Category            domain.Category       `json:"category,omitempty"`
	CreatedByName       string                `json:"created_by_name"`
	CreatedBySurname    string                `json:"created_by_surname"`
	CreatedByDepartment domain.Department     `json:"created_by_department"`
	CreatedAt           time.Time             `json:"created_at"`
	IPAddress           string                `json:"ip_address,omitempty"`
	RejectionComment    string                `json:"rejection_comment,omitempty"`
	ResolvedAt          *time.Time            `json:"resolved_at,omitempty"`
}

// CleanupResponse reports a manual retention sweep.
type CleanupResponse struct {
	Removed int64 `json:"removed"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                  t.ID,
		Title:               t.Title,
		Description:         t.Description,
		Status:              t.Status,
		Priority:            t.Priority,
		AssignedTo:          t.AssignedTo,
		Category:            t.Category,
		CreatedByName:       t.CreatedByName,
		CreatedBySurname:    t.CreatedBySurname,
		CreatedByDepartment: t.CreatedByDepartment,
		CreatedAt:           t.CreatedAt,
		IPAddress:           t.IPAddress,
		RejectionComment:    t.RejectionComment,
		ResolvedAt:          t.ResolvedAt,
	}
}

// NewTicketList maps a slice, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, NewTicketResponse(t))
	}
	return items
}

// ToDomain converts the wire form back into a ticket.
func (r TicketResponse) ToDomain() domain.Ticket {
	return domain.Ticket{
		ID:                  r.ID,
		Title:               r.Title,
		Description:         r.Description,
		Status:              r.Status,
		Priority:            r.Priority,
		AssignedTo:          r.AssignedTo,
		Category:            r.Category,
		CreatedByName:       r.CreatedByName,
		CreatedBySurname:    r.CreatedBySurname,
		CreatedByDepartment: r.CreatedByDepartment,
		CreatedAt:           r.CreatedAt.In(domain.Zone),
		IPAddress:           r.IPAddress,
		RejectionComment:    r.RejectionComment,
		ResolvedAt:          r.ResolvedAt,
	}
}
