package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ReportRepository reads the aggregate views created by the migrations.
type ReportRepository interface {
	StatusCounts(ctx context.Context) ([]domain.CountBucket, error)
	PriorityCounts(ctx context.Context) ([]domain.CountBucket, error)
	DepartmentCounts(ctx context.Context) ([]domain.CountBucket, error)
	AssigneeCounts(ctx context.Context) ([]domain.CountBucket, error)
	AssigneeStatusCounts(ctx context.Context) ([]domain.AssigneeStatusCount, error)
	HourlyCounts(ctx context.Context) ([]domain.HourCount, error)
	// AverageResolution returns the interval text form, or "" when no ticket was solved.
	AverageResolution(ctx context.Context) (string, error)
	RecentTickets(ctx context.Context) ([]domain.TicketSummary, error)
	SummaryTickets(ctx context.Context) ([]domain.TicketSummary, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a Postgres-backed implementation.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) StatusCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return r.counts(ctx, `SELECT status, ticket_count FROM ticket_status_summary ORDER BY ticket_count DESC, status`)
}

func (r *reportRepository) PriorityCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return r.counts(ctx, `SELECT priority, ticket_count FROM ticket_priority_distribution ORDER BY ticket_count DESC, priority`)
}

func (r *reportRepository) DepartmentCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return r.counts(ctx, `SELECT created_by_department, ticket_count FROM ticket_distribution_by_department ORDER BY ticket_count DESC, created_by_department`)
}

func (r *reportRepository) AssigneeCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return r.counts(ctx, `SELECT assigned_to, ticket_count FROM tickets_per_user ORDER BY ticket_count DESC, assigned_to`)
}

func (r *reportRepository) counts(ctx context.Context, query string) ([]domain.CountBucket, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []domain.CountBucket{}
	for rows.Next() {
		var key *string
		var bucket domain.CountBucket
		if err := rows.Scan(&key, &bucket.Count); err != nil {
			return nil, err
		}
		bucket.Key = deref(key)
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *reportRepository) AssigneeStatusCounts(ctx context.Context) ([]domain.AssigneeStatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT assigned_to, status, ticket_count FROM tickets_per_user_status ORDER BY assigned_to, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AssigneeStatusCount{}
	for rows.Next() {
		var item domain.AssigneeStatusCount
		if err := rows.Scan(&item.AssignedTo, &item.Status, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *reportRepository) HourlyCounts(ctx context.Context) ([]domain.HourCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT hour_of_day, ticket_count FROM ticket_hourly_distribution ORDER BY hour_of_day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HourCount{}
	for rows.Next() {
		var item domain.HourCount
		if err := rows.Scan(&item.Hour, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *reportRepository) AverageResolution(ctx context.Context) (string, error) {
	var text *string
	err := r.pool.QueryRow(ctx, `SELECT avg_resolution_time::text FROM average_resolution_time`).Scan(&text)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("average resolution: %w", err)
	}
	return deref(text), nil
}

func (r *reportRepository) RecentTickets(ctx context.Context) ([]domain.TicketSummary, error) {
	return r.summaries(ctx, `SELECT id, title, assigned_to, status, created_at, resolved_at FROM tickets_last_7_days ORDER BY created_at DESC`)
}

func (r *reportRepository) SummaryTickets(ctx context.Context) ([]domain.TicketSummary, error) {
	return r.summaries(ctx, `SELECT id, title, assigned_to, status, created_at, resolved_at FROM ticket_summary_report ORDER BY created_at DESC`)
}

func (r *reportRepository) summaries(ctx context.Context, query string) ([]domain.TicketSummary, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketSummary{}
	for rows.Next() {
		var item domain.TicketSummary
		var createdAt time.Time
		if err := rows.Scan(&item.ID, &item.Title, &item.AssignedTo, &item.Status, &createdAt, &item.ResolvedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = createdAt.In(domain.Zone)
		if item.ResolvedAt != nil {
			resolved := item.ResolvedAt.In(domain.Zone)
			item.ResolvedAt = &resolved
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
