package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestListTicketsSendsFilterAndToken(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":[{"id":"t1","status":"Open","created_at":"2024-05-10T09:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	c.SetToken("tok")
	tickets, err := c.ListTickets(context.Background(), domain.TicketFilter{Status: domain.TicketStatusOpen, AssignedTo: domain.AssigneeEmir})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotQuery != "assigned_to=Emir&status=Open" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" || tickets[0].CreatedAt.Location() != domain.Zone {
		t.Fatalf("unexpected tickets %+v", tickets)
	}
}

func TestErrorEnvelopeDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
			"code": "REJECTION_COMMENT_REQUIRED", "message": "comment required",
		}})
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).ToggleStatus(context.Background(), "t1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "REJECTION_COMMENT_REQUIRED" || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatal("IsStatus mismatch")
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, nil).DeleteTicket(context.Background(), "t1")
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}

func TestDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/tickets/ticket-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL+"/", nil).DeleteTicket(context.Background(), "ticket-1"); err != nil {
		t.Fatalf("DeleteTicket: %v", err)
	}
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	if got := New("http://helpdesk.local:8080/", nil).BaseURL(); got != "http://helpdesk.local:8080" {
		t.Fatalf("BaseURL = %q", got)
	}
}
