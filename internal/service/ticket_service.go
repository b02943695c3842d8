package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// IPResolver determines the address stored on a submitted ticket.
type IPResolver interface {
	Resolve(ctx context.Context, forwardedFor, remoteAddr string) string
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	ips         IPResolver
	logger      *zap.Logger
	maxAge      time.Duration
	sweepOnLoad bool
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	IPResolver  IPResolver
	Logger      *zap.Logger
	MaxAge      time.Duration
	SweepOnLoad bool
	Clock       func() time.Time
}

// TicketSubmission is the public form payload.
type TicketSubmission struct {
	Title        string
	Description  string
	Category     domain.Category
	Name         string
	Surname      string
	Department   domain.Department
	ForwardedFor string
	RemoteAddr   string
}

// TicketUpdate carries a full edit. Nil fields keep the stored value.
type TicketUpdate struct {
	Title            *string
	Description      *string
	Status           *domain.TicketStatus
	Priority         *domain.TicketPriority
	AssignedTo       *domain.Assignee
	Category         *domain.Category
	RejectionComment *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:     deps.TicketRepo,
		ips:         deps.IPResolver,
		logger:      deps.Logger,
		maxAge:      deps.MaxAge,
		sweepOnLoad: deps.SweepOnLoad,
		now:         deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxAge <= 0 {
		s.maxAge = domain.RetentionPeriod
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit validates the public form and stores a new Open ticket.
func (s *TicketService) Submit(ctx context.Context, input TicketSubmission) (*domain.Ticket, error) {
	details := map[string]any{}
	requireText(details, "title", input.Title)
	requireText(details, "description", input.Description)
	requireText(details, "created_by_name", input.Name)
	requireText(details, "created_by_surname", input.Surname)
	if input.Category == "" {
		details["category"] = "required"
	}
	if input.Department == "" {
		details["created_by_department"] = "required"
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Fields: details}
	}

	now := s.now().In(domain.Zone)
	ticket := &domain.Ticket{
		ID:                  domain.NewTicketID(now),
		Title:               strings.TrimSpace(input.Title),
		Description:         strings.TrimSpace(input.Description),
		Status:              domain.TicketStatusOpen,
		Priority:            domain.TicketPrioritySecondary,
		AssignedTo:          domain.DefaultAssignee,
		Category:            input.Category,
		CreatedByName:       strings.TrimSpace(input.Name),
		CreatedBySurname:    strings.TrimSpace(input.Surname),
		CreatedByDepartment: input.Department,
		CreatedAt:           now,
	}
	domain.ApplyCategoryRules(ticket)
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if s.ips != nil {
		ticket.IPAddress = s.ips.Resolve(ctx, input.ForwardedFor, input.RemoteAddr)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// List returns tickets newest first, narrowed by filter. When sweep-on-load
// is enabled, expired tickets are removed first; a failed sweep is logged.
func (s *TicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	if s.sweepOnLoad {
		if _, err := s.CleanupOldTickets(ctx); err != nil {
			s.logger.Warn("retention sweep on load failed", zap.Error(err))
		}
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return domain.ApplyFilter(tickets, filter), nil
}

// Get fetches a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ToggleStatus advances the ticket one step along the quick-toggle cycle.
func (s *TicketService) ToggleStatus(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, id, func(t *domain.Ticket, now time.Time) error {
		next, ok := domain.NextQuickToggle(t.Status)
		if !ok {
			return domain.ErrQuickToggleDisabled
		}
		return domain.Transition(t, next, "", now)
	})
}

// Update applies a full edit.
func (s *TicketService) Update(ctx context.Context, id string, input TicketUpdate) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, id, func(t *domain.Ticket, now time.Time) error {
		if input.Title != nil {
			t.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			t.Description = strings.TrimSpace(*input.Description)
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.AssignedTo != nil {
			t.AssignedTo = *input.AssignedTo
		}
		if input.Category != nil {
			t.Category = *input.Category
		}

		next := t.Status
		if input.Status != nil {
			next = *input.Status
		}
		comment := t.RejectionComment
		if input.RejectionComment != nil {
			comment = *input.RejectionComment
		}
		return domain.Transition(t, next, comment, now)
	})
}

// applyUpdate is the single mutation path for existing tickets. The whole
// record is rewritten, so concurrent editors resolve as last write wins.
func (s *TicketService) applyUpdate(ctx context.Context, id string, mutate func(*domain.Ticket, time.Time) error) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(ticket, s.now()); err != nil {
		return nil, err
	}
	domain.ApplyCategoryRules(ticket)
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("update ticket %s: %w", id, err)
	}
	return ticket, nil
}

// Delete removes a ticket. Deleting an unknown id succeeds.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ticket %s: %w", id, err)
	}
	return nil
}

// CleanupOldTickets deletes tickets created strictly before now minus the
// retention period and returns how many were removed.
func (s *TicketService) CleanupOldTickets(ctx context.Context) (int64, error) {
	cutoff := s.now().In(domain.Zone).Add(-s.maxAge)
	removed, err := s.tickets.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	if removed > 0 {
		s.logger.Info("removed expired tickets", zap.Int64("count", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}

func requireText(details map[string]any, field, value string) {
	if strings.TrimSpace(value) == "" {
		details[field] = "required"
	}
}
