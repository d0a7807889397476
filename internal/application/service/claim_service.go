package service

import (
	"context"
	"time"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// ClaimService handles claim submission and adjudication. Claims are
// gated on an APPROVED enrollment owned by the submitting customer.
type ClaimService interface {
	SubmitClaim(ctx context.Context, caller entity.Identity, enrollmentID int64, amount float64, description string) (*entity.Claim, error)
	UpdateClaimStatus(ctx context.Context, caller entity.Identity, claimID int64, status entity.ClaimStatus, notes string) (*entity.Claim, error)
	GetClaim(ctx context.Context, caller entity.Identity, claimID int64) (*entity.Claim, error)
	ListClaims(ctx context.Context, caller entity.Identity, status *entity.ClaimStatus) ([]*entity.Claim, error)
}

type claimServiceImpl struct {
	claims      port.ClaimRepository
	enrollments port.EnrollmentRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claims port.ClaimRepository,
	enrollments port.EnrollmentRepository,
	txManager port.TransactionManager,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claims:      claims,
		enrollments: enrollments,
		txManager:   txManager,
		logger:      logger,
	}
}

// SubmitClaim files a claim against the caller's APPROVED enrollment.
// The enrollment check and the insert share a transaction so a
// concurrent withdrawal cannot slip a claim past the gate.
func (s *claimServiceImpl) SubmitClaim(ctx context.Context, caller entity.Identity, enrollmentID int64, amount float64, description string) (*entity.Claim, error) {
	if err := authz.Allow(caller, authz.OpSubmitClaim); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidAmount, "claim amount must be positive")
	}

	var claim *entity.Claim
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		enrollment, err := s.enrollments.GetByID(txCtx, enrollmentID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return apperrors.New(apperrors.CodeNotFound, "enrollment not found")
		}
		if enrollment.CustomerID != caller.UserID {
			return apperrors.New(apperrors.CodeForbidden, "not the owner of this enrollment")
		}
		if enrollment.Status != entity.EnrollmentStatusApproved {
			return apperrors.Newf(apperrors.CodeInvalidState,
				"claims require an APPROVED enrollment, current status is %s", enrollment.Status)
		}

		claim = &entity.Claim{
			EnrollmentID:     enrollmentID,
			PolicyTemplateID: enrollment.PolicyTemplateID,
			CustomerID:       caller.UserID,
			PolicyNumber:     enrollment.GeneratedPolicyNumber,
			Amount:           amount,
			Description:      description,
			Status:           entity.ClaimStatusOpen,
			ClaimDate:        time.Now().UTC(),
		}
		return s.claims.Create(txCtx, claim)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Claim submitted",
		"claim_id", claim.ID,
		"enrollment_id", enrollmentID,
		"customer_id", caller.UserID,
		"amount", amount)
	return claim, nil
}

// UpdateClaimStatus moves a claim to a new adjudication status.
// Agents may only touch claims on their assigned enrollments.
func (s *claimServiceImpl) UpdateClaimStatus(ctx context.Context, caller entity.Identity, claimID int64, status entity.ClaimStatus, notes string) (*entity.Claim, error) {
	if err := authz.Allow(caller, authz.OpUpdateClaimStatus); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unknown claim status %q", status)
	}

	var updated *entity.Claim
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		claim, err := s.claims.GetByID(txCtx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return apperrors.New(apperrors.CodeNotFound, "claim not found")
		}

		if caller.Role == entity.RoleAgent {
			enrollment, err := s.enrollments.GetByID(txCtx, claim.EnrollmentID)
			if err != nil {
				return err
			}
			if enrollment == nil || enrollment.AgentID == nil || *enrollment.AgentID != caller.UserID {
				return apperrors.New(apperrors.CodeForbidden, "claim is not on one of your assigned enrollments")
			}
		}

		adminNotes, agentNotes := claim.AdminNotes, claim.AgentNotes
		if caller.Role == entity.RoleAdmin {
			adminNotes = notes
		} else {
			agentNotes = notes
		}
		if err := s.claims.UpdateStatus(txCtx, claimID, status, adminNotes, agentNotes); err != nil {
			return err
		}
		updated, err = s.claims.GetByID(txCtx, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Claim status updated",
		"claim_id", claimID,
		"status", updated.Status.String(),
		"actor_id", caller.UserID)
	return updated, nil
}

// GetClaim retrieves one claim with the same role scoping as listings
func (s *claimServiceImpl) GetClaim(ctx context.Context, caller entity.Identity, claimID int64) (*entity.Claim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "claim not found")
	}

	switch caller.Role {
	case entity.RoleAdmin:
	case entity.RoleAgent:
		enrollment, err := s.enrollments.GetByID(ctx, claim.EnrollmentID)
		if err != nil {
			return nil, err
		}
		if enrollment == nil || enrollment.AgentID == nil || *enrollment.AgentID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "claim is not on one of your assigned enrollments")
		}
	case entity.RoleCustomer:
		if claim.CustomerID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "not the owner of this claim")
		}
	default:
		return nil, apperrors.New(apperrors.CodeForbidden, "unknown role")
	}

	return claim, nil
}

// ListClaims retrieves the claims visible to the caller's role:
// customers see their own, agents their assigned enrollments' claims,
// admins everything. A non-nil status narrows the result.
func (s *claimServiceImpl) ListClaims(ctx context.Context, caller entity.Identity, status *entity.ClaimStatus) ([]*entity.Claim, error) {
	if err := authz.Allow(caller, authz.OpListClaims); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unknown claim status %q", *status)
	}

	var (
		claims []*entity.Claim
		err    error
	)
	switch caller.Role {
	case entity.RoleCustomer:
		claims, err = s.claims.ListByCustomer(ctx, caller.UserID)
	case entity.RoleAgent:
		claims, err = s.claims.ListByAgent(ctx, caller.UserID)
	default:
		if status != nil {
			return s.claims.ListByStatus(ctx, *status)
		}
		claims, err = s.claims.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if status == nil {
		return claims, nil
	}
	filtered := claims[:0]
	for _, c := range claims {
		if c.Status == *status {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}
