package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

type fakeAPI struct {
	tickets   []domain.Ticket
	err       error
	listCalls int
	toggled   []string
}

func (f *fakeAPI) ListTickets(context.Context, domain.TicketFilter) ([]domain.Ticket, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Ticket(nil), f.tickets...), nil
}

func (f *fakeAPI) Submit(_ context.Context, req dto.SubmitTicketRequest) (domain.Ticket, error) {
	if f.err != nil {
		return domain.Ticket{}, f.err
	}
	return domain.Ticket{ID: "new", Title: req.Title, Status: domain.TicketStatusOpen}, nil
}

func (f *fakeAPI) UpdateTicket(_ context.Context, id string, req dto.UpdateTicketRequest) (domain.Ticket, error) {
	if f.err != nil {
		return domain.Ticket{}, f.err
	}
	t := domain.Ticket{ID: id, Status: domain.TicketStatusOpen}
	if req.Status != nil {
		t.Status = *req.Status
	}
	return t, nil
}

func (f *fakeAPI) ToggleStatus(_ context.Context, id string) (domain.Ticket, error) {
	f.toggled = append(f.toggled, id)
	if f.err != nil {
		return domain.Ticket{}, f.err
	}
	return domain.Ticket{ID: id, Status: domain.TicketStatusInProgress}, nil
}

func (f *fakeAPI) DeleteTicket(context.Context, string) error {
	return f.err
}

func seed() []domain.Ticket {
	return []domain.Ticket{
		{ID: "t3", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityVeryImportant, AssignedTo: domain.AssigneeEmir},
		{ID: "t2", Status: domain.TicketStatusSolved, Priority: domain.TicketPrioritySecondary, AssignedTo: domain.AssigneeAhmet},
		{ID: "t1", Status: domain.TicketStatusCouldNotBeSolved, Priority: domain.TicketPriorityVeryImportant, AssignedTo: domain.AssigneeEmir, RejectionComment: "no parts"},
	}
}

func loadedList(t *testing.T) (*TicketList, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{tickets: seed()}
	l := NewTicketList(api)
	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return l, api
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilters(t *testing.T) {
	l, _ := loadedList(t)

	l.SetFilter(domain.TicketFilter{Priority: domain.TicketPriorityVeryImportant, AssignedTo: domain.AssigneeEmir})
	if got := ids(l.Visible()); !equal(got, []string{"t3", "t1"}) {
		t.Fatalf("visible = %v", got)
	}

	l.SetFilter(domain.TicketFilter{Priority: domain.TicketPriorityVeryImportant, Status: domain.TicketStatusOpen})
	if got := ids(l.Visible()); !equal(got, []string{"t3"}) {
		t.Fatalf("visible = %v", got)
	}
	l.RemoveFilter(domain.FilterStatus)
	if got := ids(l.Visible()); !equal(got, []string{"t3", "t1"}) {
		t.Fatalf("after removing status = %v", got)
	}

	l.ClearFilters()
	if got := ids(l.Visible()); !equal(got, []string{"t3", "t2", "t1"}) {
		t.Fatalf("after clear = %v", got)
	}
}

func TestReloadFailureKeepsWorkingSet(t *testing.T) {
	l, api := loadedList(t)
	api.err = errors.New("store unavailable")

	if err := l.Reload(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := ids(l.All()); !equal(got, []string{"t3", "t2", "t1"}) {
		t.Fatalf("working set changed: %v", got)
	}
}

func TestMutationsReconcileLocally(t *testing.T) {
	l, _ := loadedList(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, dto.SubmitTicketRequest{Title: "printer"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := ids(l.All()); !equal(got, []string{"new", "t3", "t2", "t1"}) {
		t.Fatalf("after create = %v", got)
	}

	solved := domain.TicketStatusSolved
	if _, err := l.Update(ctx, "t3", dto.UpdateTicketRequest{Status: &solved}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if tk, _ := l.Find("t3"); tk.Status != domain.TicketStatusSolved {
		t.Fatalf("t3 status = %s", tk.Status)
	}

	if err := l.Delete(ctx, "t2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := l.Find("t2"); ok {
		t.Fatal("t2 still present")
	}
}

func TestMutationFailureKeepsWorkingSet(t *testing.T) {
	l, api := loadedList(t)
	api.err = errors.New("boom")

	if err := l.Delete(context.Background(), "t2"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := l.Find("t2"); !ok {
		t.Fatal("t2 removed despite failure")
	}
}

func TestToggleDisabledForFailedTicket(t *testing.T) {
	l, api := loadedList(t)

	if _, err := l.ToggleStatus(context.Background(), "t1"); !errors.Is(err, domain.ErrQuickToggleDisabled) {
		t.Fatalf("expected ErrQuickToggleDisabled, got %v", err)
	}
	if len(api.toggled) != 0 {
		t.Fatal("api should not be called")
	}

	updated, err := l.ToggleStatus(context.Background(), "t3")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}
}
