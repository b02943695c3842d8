package domain

import (
	"reflect"
	"testing"
)

func sampleTickets() []Ticket {
	return []Ticket{
		{ID: "a", Status: TicketStatusOpen, Priority: TicketPrioritySecondary, AssignedTo: AssigneeEmir, Category: CategoryOther},
		{ID: "b", Status: TicketStatusSolved, Priority: TicketPriorityVeryImportant, AssignedTo: AssigneeAhmet, Category: CategoryPrinterIssue},
		{ID: "c", Status: TicketStatusOpen, Priority: TicketPriorityVeryImportant, AssignedTo: AssigneeEmir, Category: CategoryPrinterIssue},
		{ID: "d", Status: TicketStatusInProgress, Priority: TicketPriorityImportant, AssignedTo: AssigneeGorkem, Category: CategoryMunicipality},
		{ID: "e", Status: TicketStatusOpen, Priority: TicketPrioritySecondary, AssignedTo: AssigneeAtakan},
	}
}

func ids(tickets []Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter TicketFilter
		want   []string
	}{
		{"empty filter is a no-op", TicketFilter{}, []string{"a", "b", "c", "d", "e"}},
		{"status", TicketFilter{Status: TicketStatusOpen}, []string{"a", "c", "e"}},
		{"status and assignee", TicketFilter{Status: TicketStatusOpen, AssignedTo: AssigneeEmir}, []string{"a", "c"}},
		{"priority and category", TicketFilter{Priority: TicketPriorityVeryImportant, Category: CategoryPrinterIssue}, []string{"b", "c"}},
		{"case sensitive", TicketFilter{Status: "open"}, []string{}},
		{"no match", TicketFilter{AssignedTo: AssigneeAhmet, Status: TicketStatusOpen}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(ApplyFilter(sampleTickets(), tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFilterSingleTicketProperty(t *testing.T) {
	filters := []TicketFilter{
		{},
		{Status: TicketStatusOpen},
		{Priority: TicketPriorityVeryImportant},
		{AssignedTo: AssigneeEmir, Category: CategoryPrinterIssue},
		{Status: TicketStatusSolved, Priority: TicketPriorityVeryImportant, AssignedTo: AssigneeAhmet, Category: CategoryPrinterIssue},
	}
	for _, ticket := range sampleTickets() {
		for _, f := range filters {
			included := len(ApplyFilter([]Ticket{ticket}, f)) == 1
			want := (f.Status == "" || f.Status == ticket.Status) &&
				(f.Priority == "" || f.Priority == ticket.Priority) &&
				(f.AssignedTo == "" || f.AssignedTo == ticket.AssignedTo) &&
				(f.Category == "" || f.Category == ticket.Category)
			if included != want {
				t.Fatalf("ticket %s filter %+v: included=%v want %v", ticket.ID, f, included, want)
			}
			if !included {
				continue
			}
			for _, dim := range []FilterDimension{FilterStatus, FilterPriority, FilterAssignedTo, FilterCategory} {
				if len(ApplyFilter([]Ticket{ticket}, f.Without(dim))) != 1 {
					t.Fatalf("relaxing %s excluded ticket %s", dim, ticket.ID)
				}
			}
		}
	}
}

func TestFilterWithout(t *testing.T) {
	f := TicketFilter{Status: TicketStatusOpen, Priority: TicketPriorityImportant}
	relaxed := f.Without(FilterStatus)
	if relaxed.Status != "" || relaxed.Priority != TicketPriorityImportant {
		t.Fatalf("unexpected filter %+v", relaxed)
	}
	if f.Status != TicketStatusOpen {
		t.Fatalf("Without mutated the receiver")
	}
	if !relaxed.Without(FilterPriority).IsEmpty() {
		t.Fatalf("expected empty filter")
	}
}
