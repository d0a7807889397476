package service

import (
	"context"
	"strings"
	"time"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// SupportService manages customer support tickets, optionally linked to
// an enrollment or a claim the customer owns
type SupportService interface {
	CreateTicket(ctx context.Context, caller entity.Identity, description string, enrollmentID, claimID *int64) (*entity.SupportTicket, error)
	ResolveTicket(ctx context.Context, caller entity.Identity, ticketID int64, resolution string) (*entity.SupportTicket, error)
	GetTicket(ctx context.Context, caller entity.Identity, ticketID int64) (*entity.SupportTicket, error)
	ListTickets(ctx context.Context, caller entity.Identity) ([]*entity.SupportTicket, error)
}

type supportServiceImpl struct {
	tickets     port.TicketRepository
	enrollments port.EnrollmentRepository
	claims      port.ClaimRepository
	logger      Logger
}

// NewSupportService creates a new SupportService
func NewSupportService(
	tickets port.TicketRepository,
	enrollments port.EnrollmentRepository,
	claims port.ClaimRepository,
	logger Logger,
) SupportService {
	return &supportServiceImpl{
		tickets:     tickets,
		enrollments: enrollments,
		claims:      claims,
		logger:      logger,
	}
}

// CreateTicket opens a ticket for the caller. Linked records must exist
// and belong to the caller.
func (s *supportServiceImpl) CreateTicket(ctx context.Context, caller entity.Identity, description string, enrollmentID, claimID *int64) (*entity.SupportTicket, error) {
	if err := authz.Allow(caller, authz.OpCreateTicket); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "issue description is required")
	}

	if enrollmentID != nil {
		enrollment, err := s.enrollments.GetByID(ctx, *enrollmentID)
		if err != nil {
			return nil, err
		}
		if enrollment == nil {
			return nil, apperrors.New(apperrors.CodeNotFound, "linked enrollment not found")
		}
		if caller.Role == entity.RoleCustomer && enrollment.CustomerID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "not the owner of the linked enrollment")
		}
	}
	if claimID != nil {
		claim, err := s.claims.GetByID(ctx, *claimID)
		if err != nil {
			return nil, err
		}
		if claim == nil {
			return nil, apperrors.New(apperrors.CodeNotFound, "linked claim not found")
		}
		if caller.Role == entity.RoleCustomer && claim.CustomerID != caller.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "not the owner of the linked claim")
		}
	}

	ticket := &entity.SupportTicket{
		UserID:           caller.UserID,
		IssueDescription: description,
		EnrollmentID:     enrollmentID,
		ClaimID:          claimID,
		Status:           entity.TicketStatusOpen,
		CreatedDate:      time.Now().UTC(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("Support ticket created",
		"ticket_id", ticket.ID,
		"user_id", caller.UserID)
	return ticket, nil
}

// ResolveTicket closes an OPEN ticket with a resolution note. Resolving
// twice is rejected, so the resolution text cannot be overwritten.
func (s *supportServiceImpl) ResolveTicket(ctx context.Context, caller entity.Identity, ticketID int64, resolution string) (*entity.SupportTicket, error) {
	if err := authz.Allow(caller, authz.OpResolveTicket); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "ticket not found")
	}

	affected, err := s.tickets.Resolve(ctx, ticketID, resolution, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidState, "ticket is already RESOLVED")
	}

	resolved, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Support ticket resolved",
		"ticket_id", ticketID,
		"actor_id", caller.UserID)
	return resolved, nil
}

// GetTicket retrieves one ticket. Customers see only their own.
func (s *supportServiceImpl) GetTicket(ctx context.Context, caller entity.Identity, ticketID int64) (*entity.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "ticket not found")
	}
	if caller.Role.IsStaff() {
		return ticket, nil
	}
	if err := authz.AllowOwner(caller, authz.OpListOwnTickets, ticket.UserID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets retrieves the caller's tickets, or everything for staff
func (s *supportServiceImpl) ListTickets(ctx context.Context, caller entity.Identity) ([]*entity.SupportTicket, error) {
	if caller.Role.IsStaff() {
		if err := authz.Allow(caller, authz.OpListAllTickets); err != nil {
			return nil, err
		}
		return s.tickets.List(ctx)
	}
	if err := authz.Allow(caller, authz.OpListOwnTickets); err != nil {
		return nil, err
	}
	return s.tickets.ListByUser(ctx, caller.UserID)
}
