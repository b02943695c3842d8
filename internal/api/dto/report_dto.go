package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CountResponse is one grouped count.
type CountResponse struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AssigneeStatusResponse is one per-assignee-per-status count.
type AssigneeStatusResponse struct {
	AssignedTo string `json:"assigned_to"`
	Status     string `json:"status"`
	Count      int64  `json:"count"`
}

// HourResponse is one hour-of-day bucket.
type HourResponse struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// TicketSummaryResponse is a condensed ticket row.
type TicketSummaryResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	AssignedTo string     `json:"assigned_to"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ReportResponse is the dashboard snapshot.
type ReportResponse struct {
	TotalTickets             int64                    `json:"total_tickets"`
	StatusCounts             []CountResponse          `json:"status_counts"`
	PriorityCounts           []CountResponse          `json:"priority_counts"`
	DepartmentCounts         []CountResponse          `json:"department_counts"`
	AssigneeCounts           []CountResponse          `json:"assignee_counts"`
	AssigneeStatusCounts     []AssigneeStatusResponse `json:"assignee_status_counts"`
	HourlyCounts             []HourResponse           `json:"hourly_counts"`
	AverageResolutionSeconds *int64                   `json:"average_resolution_seconds,omitempty"`
	AverageResolution        string                   `json:"average_resolution"`
	ResolutionRate           int                      `json:"resolution_rate"`
	Recent                   []TicketSummaryResponse  `json:"recent"`
	Summary                  []TicketSummaryResponse  `json:"summary"`
	GeneratedAt              time.Time                `json:"generated_at"`
}

// NewReportResponse maps a domain report.
func NewReportResponse(r domain.Report) ReportResponse {
	resp := ReportResponse{
		TotalTickets:         r.TotalTickets,
		StatusCounts:         counts(r.StatusCounts),
		PriorityCounts:       counts(r.PriorityCounts),
		DepartmentCounts:     counts(r.DepartmentCounts),
		AssigneeCounts:       counts(r.AssigneeCounts),
		AssigneeStatusCounts: make([]AssigneeStatusResponse, 0, len(r.AssigneeStatusCounts)),
		HourlyCounts:         make([]HourResponse, 0, len(r.HourlyCounts)),
		AverageResolution:    r.AverageResolutionText,
		ResolutionRate:       r.ResolutionRate,
		Recent:               summaries(r.Recent),
		Summary:              summaries(r.Summary),
		GeneratedAt:          r.GeneratedAt,
	}
	for _, c := range r.AssigneeStatusCounts {
		resp.AssigneeStatusCounts = append(resp.AssigneeStatusCounts, AssigneeStatusResponse(c))
	}
	for _, h := range r.HourlyCounts {
		resp.HourlyCounts = append(resp.HourlyCounts, HourResponse(h))
	}
	if r.AverageResolution != nil {
		secs := int64(r.AverageResolution.Seconds())
		resp.AverageResolutionSeconds = &secs
	}
	return resp
}

func counts(buckets []domain.CountBucket) []CountResponse {
	out := make([]CountResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, CountResponse(b))
	}
	return out
}

func summaries(items []domain.TicketSummary) []TicketSummaryResponse {
	out := make([]TicketSummaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, TicketSummaryResponse(s))
	}
	return out
}
