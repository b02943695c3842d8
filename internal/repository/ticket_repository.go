package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, category, assigned_to,
               created_by_name, created_by_surname, created_by_department, created_at,
               ip_address, rejection_comment, resolved_at`

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var row ticketRow
		if err := row.scan(rows); err != nil {
			return nil, err
		}
		tickets = append(tickets, row.toDomain())
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var row ticketRow
	if err := row.scan(r.pool.QueryRow(ctx, query, id)); err != nil {
		return nil, err
	}
	ticket := row.toDomain()
	return &ticket, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, category, assigned_to,
            created_by_name, created_by_surname, created_by_department, created_at,
            ip_address, rejection_comment, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		nullable(string(ticket.Category)),
		ticket.AssignedTo,
		ticket.CreatedByName,
		ticket.CreatedBySurname,
		ticket.CreatedByDepartment,
		ticket.CreatedAt,
		nullable(ticket.IPAddress),
		nullable(ticket.RejectionComment),
		ticket.ResolvedAt,
	)
	return err
}

// Update replaces every mutable column of the row; the last writer wins.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            assigned_to=$6, created_by_name=$7, created_by_surname=$8, created_by_department=$9,
            ip_address=$10, rejection_comment=$11, resolved_at=$12
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		nullable(string(ticket.Category)),
		ticket.AssignedTo,
		ticket.CreatedByName,
		ticket.CreatedBySurname,
		ticket.CreatedByDepartment,
		nullable(ticket.IPAddress),
		nullable(ticket.RejectionComment),
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the row. Deleting a missing id is not an error.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	return err
}

func (r *ticketRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ticketRow mirrors the tickets table, nullable columns included.
type ticketRow struct {
	ID                  string
	Title               string
	Description         string
	Status              string
	Priority            string
	Category            *string
	AssignedTo          string
	CreatedByName       string
	CreatedBySurname    string
	CreatedByDepartment string
	CreatedAt           time.Time
	IPAddress           *string
	RejectionComment    *string
	ResolvedAt          *time.Time
}

func (row *ticketRow) scan(s pgx.Row) error {
	return s.Scan(
		&row.ID,
		&row.Title,
		&row.Description,
		&row.Status,
		&row.Priority,
		&row.Category,
		&row.AssignedTo,
		&row.CreatedByName,
		&row.CreatedBySurname,
		&row.CreatedByDepartment,
		&row.CreatedAt,
		&row.IPAddress,
		&row.RejectionComment,
		&row.ResolvedAt,
	)
}

func (row ticketRow) toDomain() domain.Ticket {
	t := domain.Ticket{
		ID:                  row.ID,
		Title:               row.Title,
		Description:         row.Description,
		Status:              domain.TicketStatus(row.Status),
		Priority:            domain.TicketPriority(row.Priority),
		Category:            domain.Category(deref(row.Category)),
		AssignedTo:          domain.Assignee(row.AssignedTo),
		CreatedByName:       row.CreatedByName,
		CreatedBySurname:    row.CreatedBySurname,
		CreatedByDepartment: domain.Department(row.CreatedByDepartment),
		CreatedAt:           row.CreatedAt.In(domain.Zone),
		IPAddress:           deref(row.IPAddress),
		RejectionComment:    deref(row.RejectionComment),
	}
	if row.ResolvedAt != nil {
		resolved := row.ResolvedAt.In(domain.Zone)
		t.ResolvedAt = &resolved
	}
	return t
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
