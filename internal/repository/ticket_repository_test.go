package repository

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestTicketRowToDomainMapsNulls(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	row := ticketRow{
		ID:                  "ticket-1",
		Title:               "Printer jam",
		Status:              "Open",
		Priority:            "Secondary",
		AssignedTo:          "Emir",
		CreatedByDepartment: string(domain.Departments[0]),
		CreatedAt:           created,
	}

	got := row.toDomain()
	if got.Category != "" || got.IPAddress != "" || got.RejectionComment != "" {
		t.Fatalf("expected empty optional fields, got %+v", got)
	}
	if got.ResolvedAt != nil {
		t.Fatal("expected nil ResolvedAt")
	}
	if !got.CreatedAt.Equal(created) || got.CreatedAt.Location() != domain.Zone {
		t.Fatalf("created_at not converted to zone: %v", got.CreatedAt)
	}
}

func TestTicketRowToDomainMapsValues(t *testing.T) {
	category := "Printer Issue"
	comment := "vendor part discontinued"
	resolved := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	row := ticketRow{
		ID:               "ticket-2",
		Category:         &category,
		RejectionComment: &comment,
		ResolvedAt:       &resolved,
	}

	got := row.toDomain()
	if got.Category != domain.CategoryPrinterIssue {
		t.Fatalf("unexpected category %q", got.Category)
	}
	if got.RejectionComment != comment {
		t.Fatalf("unexpected comment %q", got.RejectionComment)
	}
	if got.ResolvedAt == nil || !got.ResolvedAt.Equal(resolved) {
		t.Fatalf("unexpected resolved_at %v", got.ResolvedAt)
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Fatal("expected nil for empty string")
	}
	if v := nullable("x"); v == nil || *v != "x" {
		t.Fatal("expected pointer to value")
	}
}
