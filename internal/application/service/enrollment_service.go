package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/domain/workflow"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EnrollmentService orchestrates the policy-enrollment lifecycle
type EnrollmentService interface {
	Enroll(ctx context.Context, caller entity.Identity, templateID int64, vehicleDetails string) (*entity.Enrollment, error)
	CheckEligibility(ctx context.Context, caller entity.Identity, templateID int64) (*entity.Eligibility, error)
	AgentReview(ctx context.Context, caller entity.Identity, enrollmentID int64, approve bool, notes string) (*entity.Enrollment, error)
	AdminApprove(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error)
	AdminDecline(ctx context.Context, caller entity.Identity, enrollmentID int64, reason string) (*entity.Enrollment, error)
	Withdraw(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error)

	GetEnrollment(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error)
	ListMyEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error)
	ListPendingReview(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error)
	ListAgentAssignments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error)
	ListAllEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error)
}

type enrollmentServiceImpl struct {
	enrollments port.EnrollmentRepository
	policies    port.PolicyRepository
	txManager   port.TransactionManager
	mode        workflow.PipelineMode
	logger      Logger
}

// NewEnrollmentService creates a new EnrollmentService running the given
// pipeline mode
func NewEnrollmentService(
	enrollments port.EnrollmentRepository,
	policies port.PolicyRepository,
	txManager port.TransactionManager,
	mode workflow.PipelineMode,
	logger Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollments: enrollments,
		policies:    policies,
		txManager:   txManager,
		mode:        mode,
		logger:      logger,
	}
}

// Enroll creates a PENDING enrollment for the caller against an ACTIVE
// template. The duplicate check runs inside the same transaction as the
// insert, and the partial unique index backstops the race between two
// concurrent enrollments for the same pair.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, caller entity.Identity, templateID int64, vehicleDetails string) (*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpEnroll); err != nil {
		return nil, err
	}

	var enrollment *entity.Enrollment
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		template, err := s.policies.GetByID(txCtx, templateID)
		if err != nil {
			return err
		}
		if template == nil {
			return apperrors.New(apperrors.CodeNotFound, "policy template not found")
		}
		if template.Status != entity.PolicyStatusActive {
			return apperrors.New(apperrors.CodeInvalidInput, "policy template is not active")
		}

		blocking, err := s.enrollments.FindBlocking(txCtx, caller.UserID, templateID)
		if err != nil {
			return err
		}
		if blocking != nil {
			return apperrors.Newf(apperrors.CodeDuplicateEnrollment,
				"an enrollment in status %s already exists for this template", blocking.Status)
		}

		enrollment = &entity.Enrollment{
			PolicyTemplateID:      templateID,
			CustomerID:            caller.UserID,
			Status:                entity.EnrollmentStatusPending,
			GeneratedPolicyNumber: generatePolicyNumber(template.PolicyNumber),
			VehicleDetails:        vehicleDetails,
			EnrolledDate:          time.Now().UTC(),
		}

		return s.enrollments.Create(txCtx, enrollment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Enrollment created",
		"enrollment_id", enrollment.ID,
		"customer_id", caller.UserID,
		"template_id", templateID,
		"policy_number", enrollment.GeneratedPolicyNumber)
	return enrollment, nil
}

// CheckEligibility reports whether the caller may enroll, naming the
// blocking status so the caller can render an actionable message.
func (s *enrollmentServiceImpl) CheckEligibility(ctx context.Context, caller entity.Identity, templateID int64) (*entity.Eligibility, error) {
	if err := authz.Allow(caller, authz.OpCheckEligibility); err != nil {
		return nil, err
	}

	template, err := s.policies.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "policy template not found")
	}
	if template.Status != entity.PolicyStatusActive {
		return &entity.Eligibility{
			CanEnroll: false,
			Reason:    "This policy template is not active",
		}, nil
	}

	blocking, err := s.enrollments.FindBlocking(ctx, caller.UserID, templateID)
	if err != nil {
		return nil, err
	}
	if blocking != nil {
		status := blocking.Status
		var reason string
		switch status {
		case entity.EnrollmentStatusApproved:
			reason = "You already have an APPROVED policy for this template. Cannot enroll again."
		case entity.EnrollmentStatusAgentApproved:
			reason = "You have an enrollment awaiting admin finalization. Please wait for approval."
		default:
			reason = "You have a PENDING enrollment awaiting review. Please wait for approval."
		}
		return &entity.Eligibility{CanEnroll: false, Reason: reason, BlockingStatus: &status}, nil
	}

	latest, err := s.enrollments.FindLatest(ctx, caller.UserID, templateID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		status := latest.Status
		switch status {
		case entity.EnrollmentStatusDeclined:
			return &entity.Eligibility{
				CanEnroll:      true,
				Reason:         "You can re-enroll (previous enrollment was DECLINED).",
				BlockingStatus: &status,
			}, nil
		case entity.EnrollmentStatusWithdrawn:
			return &entity.Eligibility{
				CanEnroll:      true,
				Reason:         "You can re-enroll (previous enrollment was WITHDRAWN).",
				BlockingStatus: &status,
			}, nil
		}
	}

	return &entity.Eligibility{
		CanEnroll: true,
		Reason:    "You are eligible to enroll in this policy template.",
	}, nil
}

// AgentReview records an agent's approve/decline decision on a PENDING
// enrollment. Available only in the agent-mediated pipeline.
func (s *enrollmentServiceImpl) AgentReview(ctx context.Context, caller entity.Identity, enrollmentID int64, approve bool, notes string) (*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpAgentReview); err != nil {
		return nil, err
	}
	if s.mode != workflow.ModeAgent {
		return nil, apperrors.New(apperrors.CodeInvalidState, "agent review is not part of the direct pipeline")
	}

	trigger := workflow.TriggerAgentApprove
	if !approve {
		trigger = workflow.TriggerAgentDecline
	}

	return s.transition(ctx, caller, enrollmentID, trigger, notes, func(e *entity.Enrollment) error {
		// Enrollments already claimed by another agent stay with that agent.
		if e.AgentID != nil && *e.AgentID != caller.UserID {
			return apperrors.New(apperrors.CodeForbidden, "enrollment is assigned to another agent")
		}
		return nil
	})
}

// AdminApprove finalizes an enrollment from the pipeline's
// approval-eligible state.
func (s *enrollmentServiceImpl) AdminApprove(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpAdminApprove); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, enrollmentID, workflow.TriggerApprove, notes, nil)
}

// AdminDecline declines an enrollment from the pipeline's
// approval-eligible state. The customer may re-enroll afterwards.
func (s *enrollmentServiceImpl) AdminDecline(ctx context.Context, caller entity.Identity, enrollmentID int64, reason string) (*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpAdminDecline); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, enrollmentID, workflow.TriggerDecline, reason, nil)
}

// Withdraw cancels the caller's own PENDING enrollment
func (s *enrollmentServiceImpl) Withdraw(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpWithdraw); err != nil {
		return nil, err
	}
	return s.transition(ctx, caller, enrollmentID, workflow.TriggerWithdraw, "", func(e *entity.Enrollment) error {
		if e.CustomerID != caller.UserID {
			return apperrors.New(apperrors.CodeForbidden, "not the owner of this enrollment")
		}
		return nil
	})
}

// transition runs one atomic read-modify-write: re-read the row inside
// the transaction, evaluate the pure transition function, then apply the
// effects with an expected-status guard. A concurrent winner leaves the
// loser with zero matched rows, surfaced as InvalidState.
func (s *enrollmentServiceImpl) transition(
	ctx context.Context,
	caller entity.Identity,
	enrollmentID int64,
	trigger workflow.Trigger,
	notes string,
	guard func(*entity.Enrollment) error,
) (*entity.Enrollment, error) {
	var updated *entity.Enrollment
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		enrollment, err := s.enrollments.GetByID(txCtx, enrollmentID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return apperrors.New(apperrors.CodeNotFound, "enrollment not found")
		}
		if guard != nil {
			if err := guard(enrollment); err != nil {
				return err
			}
		}

		eff, err := workflow.Transition(s.mode, enrollment.Status, workflow.Event{
			Trigger: trigger,
			ActorID: caller.UserID,
			Notes:   notes,
			Now:     time.Now().UTC(),
		})
		if err != nil {
			if errors.Is(err, workflow.ErrInvalidTransition) {
				return apperrors.Wrap(apperrors.CodeInvalidState,
					fmt.Sprintf("enrollment is %s", enrollment.Status), err)
			}
			return err
		}

		affected, err := s.enrollments.ApplyTransition(txCtx, enrollmentID, enrollment.Status, eff)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.New(apperrors.CodeInvalidState, "enrollment status changed concurrently")
		}

		updated, err = s.enrollments.GetByID(txCtx, enrollmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Enrollment transitioned",
		"enrollment_id", enrollmentID,
		"trigger", trigger.String(),
		"status", updated.Status.String(),
		"actor_id", caller.UserID)
	return updated, nil
}

// GetEnrollment retrieves one enrollment with role-scoped visibility:
// admins see all, agents their assignments, customers their own.
func (s *enrollmentServiceImpl) GetEnrollment(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "enrollment not found")
	}

	switch caller.Role {
	case entity.RoleAdmin:
	case entity.RoleAgent:
		if enrollment.AgentID == nil || *enrollment.AgentID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "enrollment is not assigned to you")
		}
	case entity.RoleCustomer:
		if enrollment.CustomerID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "not the owner of this enrollment")
		}
	default:
		return nil, apperrors.New(apperrors.CodeForbidden, "unknown role")
	}

	return enrollment, nil
}

// ListMyEnrollments retrieves the caller's enrollment history
func (s *enrollmentServiceImpl) ListMyEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpListOwnEnrollments); err != nil {
		return nil, err
	}
	return s.enrollments.ListByCustomer(ctx, caller.UserID)
}

// ListPendingReview retrieves the enrollments waiting for the admin in
// the configured pipeline: PENDING in direct mode, AGENT_APPROVED in
// agent mode.
func (s *enrollmentServiceImpl) ListPendingReview(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpListPending); err != nil {
		return nil, err
	}
	return s.enrollments.ListByStatus(ctx, workflow.ApprovalEligibleState(s.mode))
}

// ListAgentAssignments retrieves the agent's review queue: unclaimed
// PENDING enrollments plus everything already bound to this agent.
func (s *enrollmentServiceImpl) ListAgentAssignments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpListAssignments); err != nil {
		return nil, err
	}

	assigned, err := s.enrollments.ListByAgent(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if s.mode != workflow.ModeAgent {
		return assigned, nil
	}

	pending, err := s.enrollments.ListByStatus(ctx, entity.EnrollmentStatusPending)
	if err != nil {
		return nil, err
	}
	for _, e := range pending {
		if e.AgentID == nil {
			assigned = append(assigned, e)
		}
	}
	return assigned, nil
}

// ListAllEnrollments retrieves every enrollment (admin report view)
func (s *enrollmentServiceImpl) ListAllEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	if err := authz.Allow(caller, authz.OpListAllEnrollments); err != nil {
		return nil, err
	}
	return s.enrollments.List(ctx)
}

// generatePolicyNumber derives the enrollment's policy number from the
// template number plus a random suffix. The unique index on the column
// is the backstop; a timestamp suffix is not collision-safe under
// concurrent enrollment.
func generatePolicyNumber(templateNumber string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%s", templateNumber, strings.ToUpper(suffix))
}
