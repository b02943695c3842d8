package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Ticket
	listErr error
	creates int
	updates int
}

func newFakeTicketRepo(tickets ...domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{rows: map[string]domain.Ticket{}}
	for _, t := range tickets {
		repo.rows[t.ID] = t
	}
	return repo
}

func (r *fakeTicketRepo) List(context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Ticket, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[t.ID]; exists {
		return errors.New("duplicate key")
	}
	r.rows[t.ID] = *t
	r.creates++
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[t.ID]; !exists {
		return pgx.ErrNoRows
	}
	r.rows[t.ID] = *t
	r.updates++
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeTicketRepo) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.rows {
		if t.CreatedAt.Before(cutoff) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) get(id string) (domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	return t, ok
}

type staticIP string

func (s staticIP) Resolve(context.Context, string, string) string { return string(s) }

type fakeUserRepo struct {
	users map[string]domain.User
	err   error
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

type fakeReportRepo struct {
	statuses []domain.CountBucket
	avg      string
	calls    int
	// duringRead runs after the status counts are read, simulating a change
	// committed while a report is being assembled.
	duringRead func()
}

func (r *fakeReportRepo) StatusCounts(context.Context) ([]domain.CountBucket, error) {
	r.calls++
	statuses := r.statuses
	if hook := r.duringRead; hook != nil {
		r.duringRead = nil
		hook()
	}
	return statuses, nil
}
func (r *fakeReportRepo) PriorityCounts(context.Context) ([]domain.CountBucket, error) {
	return []domain.CountBucket{}, nil
}
func (r *fakeReportRepo) DepartmentCounts(context.Context) ([]domain.CountBucket, error) {
	return []domain.CountBucket{}, nil
}
func (r *fakeReportRepo) AssigneeCounts(context.Context) ([]domain.CountBucket, error) {
	return []domain.CountBucket{}, nil
}
func (r *fakeReportRepo) AssigneeStatusCounts(context.Context) ([]domain.AssigneeStatusCount, error) {
	return []domain.AssigneeStatusCount{}, nil
}
func (r *fakeReportRepo) HourlyCounts(context.Context) ([]domain.HourCount, error) {
	return []domain.HourCount{}, nil
}
func (r *fakeReportRepo) AverageResolution(context.Context) (string, error) { return r.avg, nil }
func (r *fakeReportRepo) RecentTickets(context.Context) ([]domain.TicketSummary, error) {
	return []domain.TicketSummary{}, nil
}
func (r *fakeReportRepo) SummaryTickets(context.Context) ([]domain.TicketSummary, error) {
	return []domain.TicketSummary{}, nil
}
