package port

import (
	"context"
	"time"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/domain/workflow"
)

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// PolicyRepository defines persistence operations for PolicyTemplate
type PolicyRepository interface {
	Create(ctx context.Context, template *entity.PolicyTemplate) error
	GetByID(ctx context.Context, id int64) (*entity.PolicyTemplate, error)
	List(ctx context.Context) ([]*entity.PolicyTemplate, error)
	Update(ctx context.Context, template *entity.PolicyTemplate) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentRepository defines persistence operations for Enrollment
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	GetByID(ctx context.Context, id int64) (*entity.Enrollment, error)

	// FindBlocking returns the enrollment holding the active status class
	// for the pair, or nil when none exists
	FindBlocking(ctx context.Context, customerID, templateID int64) (*entity.Enrollment, error)

	// FindLatest returns the most recently created enrollment for the
	// pair regardless of status, or nil when none exists
	FindLatest(ctx context.Context, customerID, templateID int64) (*entity.Enrollment, error)

	// ApplyTransition sets the status and effect fields for the
	// enrollment, guarded by the expected current status. It returns the
	// number of rows updated; zero means the guard did not match.
	ApplyTransition(ctx context.Context, id int64, expected entity.EnrollmentStatus, eff workflow.Effects) (int64, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]*entity.Enrollment, error)
	ListByAgent(ctx context.Context, agentID int64) ([]*entity.Enrollment, error)
	ListByStatus(ctx context.Context, status entity.EnrollmentStatus) ([]*entity.Enrollment, error)
	List(ctx context.Context) ([]*entity.Enrollment, error)
}

// ClaimRepository defines persistence operations for Claim
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)
	UpdateStatus(ctx context.Context, id int64, status entity.ClaimStatus, adminNotes, agentNotes string) error
	List(ctx context.Context) ([]*entity.Claim, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*entity.Claim, error)
	ListByAgent(ctx context.Context, agentID int64) ([]*entity.Claim, error)
	ListByStatus(ctx context.Context, status entity.ClaimStatus) ([]*entity.Claim, error)
}

// TicketRepository defines persistence operations for SupportTicket
type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.SupportTicket) error
	GetByID(ctx context.Context, id int64) (*entity.SupportTicket, error)

	// Resolve flips an OPEN ticket to RESOLVED. It returns the number of
	// rows updated; zero means the ticket was not open.
	Resolve(ctx context.Context, id int64, notes string, resolvedAt time.Time) (int64, error)

	ListByUser(ctx context.Context, userID int64) ([]*entity.SupportTicket, error)
	List(ctx context.Context) ([]*entity.SupportTicket, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
