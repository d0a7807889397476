package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
)

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

const claimColumns = `claim_id, enrollment_id, policy_template_id, customer_id,
	policy_number, amount, description, status, admin_notes, agent_notes,
	claim_date, updated_at`

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			enrollment_id, policy_template_id, customer_id, policy_number,
			amount, description, status, claim_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		claim.EnrollmentID,
		claim.PolicyTemplateID,
		claim.CustomerID,
		claim.PolicyNumber,
		claim.Amount,
		claim.Description,
		claim.Status,
		claim.ClaimDate,
	)
	if err != nil {
		r.logger.Error("Failed to create claim",
			zap.Int64("enrollment_id", claim.EnrollmentID),
			zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = ?`

	c, err := scanClaim(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return c, nil
}

// UpdateStatus sets the claim status and staff notes
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id int64, status entity.ClaimStatus, adminNotes, agentNotes string) error {
	query := `
		UPDATE claims
		SET status = ?, admin_notes = ?, agent_notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE claim_id = ?
	`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, status, adminNotes, agentNotes, id)
	if err != nil {
		r.logger.Error("Failed to update claim status",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update claim status: %w", err)
	}

	return nil
}

// List retrieves all claims, newest first
func (r *ClaimRepository) List(ctx context.Context) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY claim_id DESC`
	return r.scanMany(ctx, query)
}

// ListByCustomer retrieves a customer's claims, newest first
func (r *ClaimRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE customer_id = ? ORDER BY claim_id DESC`
	return r.scanMany(ctx, query, customerID)
}

// ListByAgent retrieves claims filed against enrollments assigned to the agent
func (r *ClaimRepository) ListByAgent(ctx context.Context, agentID int64) ([]*entity.Claim, error) {
	query := `
		SELECT ` + claimColumnsPrefixed + `
		FROM claims c
		JOIN policy_enrollments e ON e.enrollment_id = c.enrollment_id
		WHERE e.agent_id = ?
		ORDER BY c.claim_id DESC
	`
	return r.scanMany(ctx, query, agentID)
}

// ListByStatus retrieves claims in a given status, oldest first
func (r *ClaimRepository) ListByStatus(ctx context.Context, status entity.ClaimStatus) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE status = ? ORDER BY claim_id`
	return r.scanMany(ctx, query, status)
}

const claimColumnsPrefixed = `c.claim_id, c.enrollment_id, c.policy_template_id, c.customer_id,
	c.policy_number, c.amount, c.description, c.status, c.admin_notes, c.agent_notes,
	c.claim_date, c.updated_at`

func (r *ClaimRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Claim, error) {
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.Claim
	for rows.Next() {
		c, err := scanClaim(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, rows.Err()
}

func scanClaim(scan func(dest ...interface{}) error) (*entity.Claim, error) {
	var c entity.Claim
	var description, adminNotes, agentNotes sql.NullString

	err := scan(
		&c.ID, &c.EnrollmentID, &c.PolicyTemplateID, &c.CustomerID,
		&c.PolicyNumber, &c.Amount, &description, &c.Status,
		&adminNotes, &agentNotes, &c.ClaimDate, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.AdminNotes = adminNotes.String
	c.AgentNotes = agentNotes.String
	return &c, nil
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
