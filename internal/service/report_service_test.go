package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

func TestBuildEmptyReport(t *testing.T) {
	svc := NewReportService(ReportDependencies{ReportRepo: &fakeReportRepo{}})
	report, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.TotalTickets != 0 || report.ResolutionRate != 0 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.AverageResolution != nil || report.AverageResolutionText != NoResolutionData {
		t.Fatalf("unexpected average %v %q", report.AverageResolution, report.AverageResolutionText)
	}
}

func TestBuildReport(t *testing.T) {
	repo := &fakeReportRepo{
		statuses: []domain.CountBucket{
			{Key: "Solved", Count: 3},
			{Key: "Open", Count: 1},
		},
		avg: "1 day 02:30:00",
	}
	svc := NewReportService(ReportDependencies{ReportRepo: repo})
	report, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.TotalTickets != 4 || report.ResolutionRate != 75 {
		t.Fatalf("total=%d rate=%d", report.TotalTickets, report.ResolutionRate)
	}
	if report.AverageResolution == nil || *report.AverageResolution != 26*time.Hour+30*time.Minute {
		t.Fatalf("average = %v", report.AverageResolution)
	}
	if report.AverageResolutionText != "1 day 2 hours 30 minutes" {
		t.Fatalf("text = %q", report.AverageResolutionText)
	}
}

func TestReportCacheInvalidatedOnChange(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &fakeReportRepo{statuses: []domain.CountBucket{{Key: "Open", Count: 1}}}
	svc := NewReportService(ReportDependencies{ReportRepo: repo, Cache: client, CacheTTL: time.Minute})
	dispatcher := events.NewInMemoryDispatcher(nil)
	svc.RegisterHandlers(dispatcher)
	ctx := context.Background()

	if _, err := svc.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := svc.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected cached second build, store hit %d times", repo.calls)
	}

	_ = dispatcher.Publish(ctx, events.NewEvent(events.EventTicketInserted, "t1", time.Now()))
	repo.statuses = append(repo.statuses, domain.CountBucket{Key: "Solved", Count: 1})

	report, err := svc.Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if repo.calls != 2 || report.TotalTickets != 2 {
		t.Fatalf("cache not invalidated: calls=%d total=%d", repo.calls, report.TotalTickets)
	}
}

func TestReportChangeDuringBuildIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &fakeReportRepo{statuses: []domain.CountBucket{{Key: "Open", Count: 1}}}
	svc := NewReportService(ReportDependencies{ReportRepo: repo, Cache: client, CacheTTL: time.Minute})
	ctx := context.Background()

	repo.duringRead = func() {
		repo.statuses = []domain.CountBucket{{Key: "Open", Count: 2}}
		if err := svc.Invalidate(ctx); err != nil {
			t.Errorf("Invalidate: %v", err)
		}
	}
	first, err := svc.Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first.TotalTickets != 1 {
		t.Fatalf("first build total = %d", first.TotalTickets)
	}

	second, err := svc.Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if second.TotalTickets != 2 {
		t.Fatalf("report assembled before the change was cached: total=%d want 2", second.TotalTickets)
	}

	third, err := svc.Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if third.TotalTickets != 2 || repo.calls != 2 {
		t.Fatalf("fresh report not cached: total=%d calls=%d", third.TotalTickets, repo.calls)
	}
}
