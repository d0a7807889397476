package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
)

// TicketRepository implements port.TicketRepository
type TicketRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTicketRepository creates a new support ticket repository
func NewTicketRepository(db *sql.DB, logger *zap.Logger) port.TicketRepository {
	return &TicketRepository{
		db:     db,
		logger: logger,
	}
}

const ticketColumns = `ticket_id, user_id, enrollment_id, claim_id, issue_description,
	status, resolution_notes, created_date, resolved_date`

// Create inserts a new support ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *entity.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (user_id, enrollment_id, claim_id, issue_description, status, created_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		ticket.UserID,
		ticket.EnrollmentID,
		ticket.ClaimID,
		ticket.IssueDescription,
		ticket.Status,
		ticket.CreatedDate,
	)
	if err != nil {
		r.logger.Error("Failed to create support ticket", zap.Int64("user_id", ticket.UserID), zap.Error(err))
		return fmt.Errorf("failed to create support ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	ticket.ID = id
	return nil
}

// GetByID retrieves a support ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*entity.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE ticket_id = ?`

	t, err := scanTicket(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get support ticket", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get support ticket: %w", err)
	}

	return t, nil
}

// Resolve flips an open ticket to RESOLVED. The status predicate keeps a
// concurrent second resolve from matching.
func (r *TicketRepository) Resolve(ctx context.Context, id int64, notes string, resolvedAt time.Time) (int64, error) {
	query := `
		UPDATE support_tickets
		SET status = ?, resolution_notes = ?, resolved_date = ?
		WHERE ticket_id = ? AND status = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		entity.TicketStatusResolved, notes, resolvedAt, id, entity.TicketStatusOpen)
	if err != nil {
		r.logger.Error("Failed to resolve support ticket", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("failed to resolve support ticket: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// ListByUser retrieves tickets created by a user, newest first
func (r *TicketRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE user_id = ? ORDER BY ticket_id DESC`
	return r.scanMany(ctx, query, userID)
}

// List retrieves all tickets, open ones first then newest first
func (r *TicketRepository) List(ctx context.Context) ([]*entity.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets ORDER BY status DESC, ticket_id DESC`
	return r.scanMany(ctx, query)
}

func (r *TicketRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.SupportTicket, error) {
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list support tickets", zap.Error(err))
		return nil, fmt.Errorf("failed to list support tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan support ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}

func scanTicket(scan func(dest ...interface{}) error) (*entity.SupportTicket, error) {
	var t entity.SupportTicket
	var enrollmentID, claimID sql.NullInt64
	var notes sql.NullString
	var resolved sql.NullTime

	err := scan(
		&t.ID, &t.UserID, &enrollmentID, &claimID, &t.IssueDescription,
		&t.Status, &notes, &t.CreatedDate, &resolved,
	)
	if err != nil {
		return nil, err
	}

	if enrollmentID.Valid {
		t.EnrollmentID = &enrollmentID.Int64
	}
	if claimID.Valid {
		t.ClaimID = &claimID.Int64
	}
	t.ResolutionNotes = notes.String
	if resolved.Valid {
		t.ResolvedDate = &resolved.Time
	}

	return &t, nil
}

// Verify interface compliance
var _ port.TicketRepository = (*TicketRepository)(nil)
