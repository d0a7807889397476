package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// PolicyRepository implements port.PolicyRepository
type PolicyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPolicyRepository creates a new policy template repository
func NewPolicyRepository(db *sql.DB, logger *zap.Logger) port.PolicyRepository {
	return &PolicyRepository{
		db:     db,
		logger: logger,
	}
}

const policyColumns = `policy_id, policy_number, vehicle_details, coverage_amount,
	coverage_type, premium_amount, start_date, end_date, status, created_at, updated_at`

// Create inserts a new policy template
func (r *PolicyRepository) Create(ctx context.Context, template *entity.PolicyTemplate) error {
	query := `
		INSERT INTO policy_templates (
			policy_number, vehicle_details, coverage_amount, coverage_type,
			premium_amount, start_date, end_date, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		template.PolicyNumber,
		template.VehicleDetails,
		template.CoverageAmount,
		template.CoverageType,
		template.PremiumAmount,
		template.StartDate,
		template.EndDate,
		template.Status,
	)
	if err != nil {
		if uniqueViolation(err, "policy_templates.policy_number") {
			return apperrors.Wrap(apperrors.CodeConflict, "policy number already exists", err)
		}
		r.logger.Error("Failed to create policy template", zap.Error(err))
		return fmt.Errorf("failed to create policy template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	template.ID = id
	return nil
}

// GetByID retrieves a policy template by ID
func (r *PolicyRepository) GetByID(ctx context.Context, id int64) (*entity.PolicyTemplate, error) {
	query := `SELECT ` + policyColumns + ` FROM policy_templates WHERE policy_id = ?`

	var t entity.PolicyTemplate
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.PolicyNumber, &t.VehicleDetails, &t.CoverageAmount,
		&t.CoverageType, &t.PremiumAmount, &t.StartDate, &t.EndDate,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get policy template", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get policy template: %w", err)
	}

	return &t, nil
}

// List retrieves all policy templates
func (r *PolicyRepository) List(ctx context.Context) ([]*entity.PolicyTemplate, error) {
	query := `SELECT ` + policyColumns + ` FROM policy_templates ORDER BY policy_id`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list policy templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list policy templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.PolicyTemplate
	for rows.Next() {
		var t entity.PolicyTemplate
		if err := rows.Scan(&t.ID, &t.PolicyNumber, &t.VehicleDetails, &t.CoverageAmount,
			&t.CoverageType, &t.PremiumAmount, &t.StartDate, &t.EndDate,
			&t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy template: %w", err)
		}
		templates = append(templates, &t)
	}

	return templates, rows.Err()
}

// Update rewrites the mutable fields of a policy template
func (r *PolicyRepository) Update(ctx context.Context, template *entity.PolicyTemplate) error {
	query := `
		UPDATE policy_templates
		SET policy_number = ?, vehicle_details = ?, coverage_amount = ?,
			coverage_type = ?, premium_amount = ?, start_date = ?, end_date = ?,
			status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE policy_id = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		template.PolicyNumber,
		template.VehicleDetails,
		template.CoverageAmount,
		template.CoverageType,
		template.PremiumAmount,
		template.StartDate,
		template.EndDate,
		template.Status,
		template.ID,
	)
	if err != nil {
		if uniqueViolation(err, "policy_templates.policy_number") {
			return apperrors.Wrap(apperrors.CodeConflict, "policy number already exists", err)
		}
		r.logger.Error("Failed to update policy template", zap.Int64("id", template.ID), zap.Error(err))
		return fmt.Errorf("failed to update policy template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "policy template not found")
	}

	return nil
}

// Delete removes a policy template. Templates referenced by enrollments
// are protected by the foreign key and surface as a conflict.
func (r *PolicyRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM policy_templates WHERE policy_id = ?`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		if fkViolation(err) {
			return apperrors.Wrap(apperrors.CodeConflict, "policy template has enrollments", err)
		}
		r.logger.Error("Failed to delete policy template", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete policy template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "policy template not found")
	}

	return nil
}

// Verify interface compliance
var _ port.PolicyRepository = (*PolicyRepository)(nil)
