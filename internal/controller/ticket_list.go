// Package controller holds the client-side ticket working set.
package controller

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketAPI is the subset of the HTTP client the list drives.
type TicketAPI interface {
	ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	Submit(ctx context.Context, req dto.SubmitTicketRequest) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, req dto.UpdateTicketRequest) (domain.Ticket, error)
	ToggleStatus(ctx context.Context, id string) (domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// TicketList keeps the full ticket set, newest first, plus the active filter.
// It is shared between CLI commands and the live listener.
type TicketList struct {
	api TicketAPI

	mu      sync.RWMutex
	tickets []domain.Ticket
	filter  domain.TicketFilter
}

// NewTicketList returns an empty list backed by api.
func NewTicketList(api TicketAPI) *TicketList {
	return &TicketList{api: api}
}

// Reload refetches every ticket. On error the previous set is kept.
func (l *TicketList) Reload(ctx context.Context) error {
	tickets, err := l.api.ListTickets(ctx, domain.TicketFilter{})
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.tickets = tickets
	l.mu.Unlock()
	return nil
}

// All returns a copy of the unfiltered set.
func (l *TicketList) All() []domain.Ticket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Ticket(nil), l.tickets...)
}

// Visible returns the tickets matching the active filter.
func (l *TicketList) Visible() []domain.Ticket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.ApplyFilter(l.tickets, l.filter)
}

// Find looks a ticket up by id in the working set.
func (l *TicketList) Find(id string) (domain.Ticket, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// SetFilter replaces the active filter; Visible reflects it immediately.
func (l *TicketList) SetFilter(f domain.TicketFilter) {
	l.mu.Lock()
	l.filter = f
	l.mu.Unlock()
}

// RemoveFilter clears a single dimension.
func (l *TicketList) RemoveFilter(dim domain.FilterDimension) {
	l.mu.Lock()
	l.filter = l.filter.Without(dim)
	l.mu.Unlock()
}

// ClearFilters shows every ticket again.
func (l *TicketList) ClearFilters() {
	l.SetFilter(domain.TicketFilter{})
}

// Create submits a ticket and places it at the head of the set.
func (l *TicketList) Create(ctx context.Context, req dto.SubmitTicketRequest) (domain.Ticket, error) {
	created, err := l.api.Submit(ctx, req)
	if err != nil {
		return domain.Ticket{}, err
	}
	l.mu.Lock()
	l.tickets = append([]domain.Ticket{created}, removeByID(l.tickets, created.ID)...)
	l.mu.Unlock()
	return created, nil
}

// Update applies a full edit and replaces the local copy.
func (l *TicketList) Update(ctx context.Context, id string, req dto.UpdateTicketRequest) (domain.Ticket, error) {
	updated, err := l.api.UpdateTicket(ctx, id, req)
	if err != nil {
		return domain.Ticket{}, err
	}
	l.replace(updated)
	return updated, nil
}

// ToggleStatus advances the quick-toggle cycle for id.
func (l *TicketList) ToggleStatus(ctx context.Context, id string) (domain.Ticket, error) {
	if current, ok := l.Find(id); ok {
		if _, enabled := domain.NextQuickToggle(current.Status); !enabled {
			return domain.Ticket{}, domain.ErrQuickToggleDisabled
		}
	}
	updated, err := l.api.ToggleStatus(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	l.replace(updated)
	return updated, nil
}

// Delete removes id remotely and locally.
func (l *TicketList) Delete(ctx context.Context, id string) error {
	if err := l.api.DeleteTicket(ctx, id); err != nil {
		return err
	}
	l.mu.Lock()
	l.tickets = removeByID(l.tickets, id)
	l.mu.Unlock()
	return nil
}

func (l *TicketList) replace(t domain.Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.tickets {
		if l.tickets[i].ID == t.ID {
			l.tickets[i] = t
			return
		}
	}
	l.tickets = append([]domain.Ticket{t}, l.tickets...)
}

func removeByID(tickets []domain.Ticket, id string) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
