package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/domain/workflow"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// EnrollmentRepository implements port.EnrollmentRepository
type EnrollmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB, logger *zap.Logger) port.EnrollmentRepository {
	return &EnrollmentRepository{
		db:     db,
		logger: logger,
	}
}

const enrollmentColumns = `enrollment_id, policy_template_id, customer_id, agent_id,
	enrollment_status, generated_policy_number, vehicle_details, enrolled_date,
	approved_date, declined_date, withdrawn_date, agent_approved_date,
	agent_declined_date, agent_notes, admin_notes`

// Create inserts a new enrollment row. The partial unique index over the
// active status class rejects a second live enrollment for the same
// (customer, template) pair, and the generated policy number carries its
// own unique index.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	query := `
		INSERT INTO policy_enrollments (
			policy_template_id, customer_id, agent_id, enrollment_status,
			generated_policy_number, vehicle_details, enrolled_date
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		enrollment.PolicyTemplateID,
		enrollment.CustomerID,
		enrollment.AgentID,
		enrollment.Status,
		enrollment.GeneratedPolicyNumber,
		enrollment.VehicleDetails,
		enrollment.EnrolledDate,
	)
	if err != nil {
		if uniqueViolation(err, "policy_enrollments.customer_id") {
			return apperrors.Wrap(apperrors.CodeDuplicateEnrollment,
				"an active enrollment already exists for this template", err)
		}
		if uniqueViolation(err, "policy_enrollments.generated_policy_number") {
			return apperrors.Wrap(apperrors.CodeConflict, "generated policy number collision", err)
		}
		r.logger.Error("Failed to create enrollment",
			zap.Int64("customer_id", enrollment.CustomerID),
			zap.Int64("template_id", enrollment.PolicyTemplateID),
			zap.Error(err))
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	enrollment.ID = id
	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM policy_enrollments WHERE enrollment_id = ?`
	return r.scanOne(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
}

// FindBlocking returns the pair's enrollment in the active status class
func (r *EnrollmentRepository) FindBlocking(ctx context.Context, customerID, templateID int64) (*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM policy_enrollments
		WHERE customer_id = ? AND policy_template_id = ?
			AND enrollment_status IN ('PENDING', 'AGENT_APPROVED', 'APPROVED')
	`
	return r.scanOne(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, customerID, templateID))
}

// FindLatest returns the most recent enrollment for the pair
func (r *EnrollmentRepository) FindLatest(ctx context.Context, customerID, templateID int64) (*entity.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM policy_enrollments
		WHERE customer_id = ? AND policy_template_id = ?
		ORDER BY enrollment_id DESC
		LIMIT 1
	`
	return r.scanOne(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, customerID, templateID))
}

// ApplyTransition writes the transition effects in one guarded UPDATE.
// The expected-status predicate makes concurrent transitions race safely:
// the loser matches zero rows.
func (r *EnrollmentRepository) ApplyTransition(ctx context.Context, id int64, expected entity.EnrollmentStatus, eff workflow.Effects) (int64, error) {
	sets := []string{"enrollment_status = ?"}
	args := []interface{}{eff.Status}

	if eff.ApprovedDate != nil {
		sets = append(sets, "approved_date = ?")
		args = append(args, *eff.ApprovedDate)
	}
	if eff.DeclinedDate != nil {
		sets = append(sets, "declined_date = ?")
		args = append(args, *eff.DeclinedDate)
	}
	if eff.WithdrawnDate != nil {
		sets = append(sets, "withdrawn_date = ?")
		args = append(args, *eff.WithdrawnDate)
	}
	if eff.AgentApprovedDate != nil {
		sets = append(sets, "agent_approved_date = ?")
		args = append(args, *eff.AgentApprovedDate)
	}
	if eff.AgentDeclinedDate != nil {
		sets = append(sets, "agent_declined_date = ?")
		args = append(args, *eff.AgentDeclinedDate)
	}
	if eff.AgentID != nil {
		sets = append(sets, "agent_id = ?")
		args = append(args, *eff.AgentID)
	}
	if eff.AgentNotes != nil {
		sets = append(sets, "agent_notes = ?")
		args = append(args, *eff.AgentNotes)
	}
	if eff.AdminNotes != nil {
		sets = append(sets, "admin_notes = ?")
		args = append(args, *eff.AdminNotes)
	}

	query := fmt.Sprintf(
		`UPDATE policy_enrollments SET %s WHERE enrollment_id = ? AND enrollment_status = ?`,
		strings.Join(sets, ", "),
	)
	args = append(args, id, expected)

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to apply enrollment transition",
			zap.Int64("id", id),
			zap.String("expected", expected.String()),
			zap.String("to", eff.Status.String()),
			zap.Error(err))
		return 0, fmt.Errorf("failed to apply transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// ListByCustomer retrieves a customer's enrollments, newest first
func (r *EnrollmentRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM policy_enrollments WHERE customer_id = ? ORDER BY enrollment_id DESC`
	return r.scanMany(ctx, query, customerID)
}

// ListByAgent retrieves enrollments assigned to an agent, newest first
func (r *EnrollmentRepository) ListByAgent(ctx context.Context, agentID int64) ([]*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM policy_enrollments WHERE agent_id = ? ORDER BY enrollment_id DESC`
	return r.scanMany(ctx, query, agentID)
}

// ListByStatus retrieves enrollments in a given status, oldest first so
// review queues process in arrival order
func (r *EnrollmentRepository) ListByStatus(ctx context.Context, status entity.EnrollmentStatus) ([]*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM policy_enrollments WHERE enrollment_status = ? ORDER BY enrollment_id`
	return r.scanMany(ctx, query, status)
}

// List retrieves all enrollments
func (r *EnrollmentRepository) List(ctx context.Context) ([]*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM policy_enrollments ORDER BY enrollment_id`
	return r.scanMany(ctx, query)
}

func (r *EnrollmentRepository) scanOne(row *sql.Row) (*entity.Enrollment, error) {
	e, err := scanEnrollment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get enrollment", zap.Error(err))
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (r *EnrollmentRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Enrollment, error) {
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list enrollments", zap.Error(err))
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*entity.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

func scanEnrollment(scan func(dest ...interface{}) error) (*entity.Enrollment, error) {
	var e entity.Enrollment
	var agentID sql.NullInt64
	var vehicleDetails, agentNotes, adminNotes sql.NullString
	var approved, declined, withdrawn, agentApproved, agentDeclined sql.NullTime

	err := scan(
		&e.ID, &e.PolicyTemplateID, &e.CustomerID, &agentID,
		&e.Status, &e.GeneratedPolicyNumber, &vehicleDetails, &e.EnrolledDate,
		&approved, &declined, &withdrawn, &agentApproved, &agentDeclined,
		&agentNotes, &adminNotes,
	)
	if err != nil {
		return nil, err
	}

	if agentID.Valid {
		e.AgentID = &agentID.Int64
	}
	e.VehicleDetails = vehicleDetails.String
	e.AgentNotes = agentNotes.String
	e.AdminNotes = adminNotes.String
	if approved.Valid {
		e.ApprovedDate = &approved.Time
	}
	if declined.Valid {
		e.DeclinedDate = &declined.Time
	}
	if withdrawn.Valid {
		e.WithdrawnDate = &withdrawn.Time
	}
	if agentApproved.Valid {
		e.AgentApprovedDate = &agentApproved.Time
	}
	if agentDeclined.Valid {
		e.AgentDeclinedDate = &agentDeclined.Time
	}

	return &e, nil
}

// Verify interface compliance
var _ port.EnrollmentRepository = (*EnrollmentRepository)(nil)
