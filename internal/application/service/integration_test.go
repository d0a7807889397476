package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/domain/workflow"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/repository"
	"github.com/sugun-2430327/project-backend/internal/infrastructure/persistence/sqlite"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
	"github.com/sugun-2430327/project-backend/pkg/database"
)

// fixture wires the real repositories and transaction manager over a
// live database so the lifecycle runs exactly as in production.
type fixture struct {
	enrollments EnrollmentService
	claims      ClaimService
	users       port.UserRepository
	customer    entity.Identity
	admin       entity.Identity
}

func buildFixture(t *testing.T, db *sql.DB, mode workflow.PipelineMode) *fixture {
	t.Helper()

	schema, err := os.ReadFile("../../../migrations/0001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	logger := zap.NewNop()
	users := repository.NewUserRepository(db, logger)
	policies := repository.NewPolicyRepository(db, logger)
	enrollmentRepo := repository.NewEnrollmentRepository(db, logger)
	claimRepo := repository.NewClaimRepository(db, logger)
	tx := sqlite.NewDB(db, logger)

	ctx := context.Background()
	customerUser := &entity.User{Username: "c1", PasswordHash: "x", Email: "c1@example.com", Role: entity.RoleCustomer}
	require.NoError(t, users.Create(ctx, customerUser))
	adminUser := &entity.User{Username: "a1", PasswordHash: "x", Email: "a1@example.com", Role: entity.RoleAdmin}
	require.NoError(t, users.Create(ctx, adminUser))

	require.NoError(t, policies.Create(ctx, &entity.PolicyTemplate{
		PolicyNumber:   "T-100",
		CoverageAmount: 100000,
		CoverageType:   "COMPREHENSIVE",
		PremiumAmount:  900,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
		Status:         entity.PolicyStatusActive,
	}))

	return &fixture{
		enrollments: NewEnrollmentService(enrollmentRepo, policies, tx, mode, &mockLogger{}),
		claims:      NewClaimService(claimRepo, enrollmentRepo, tx, &mockLogger{}),
		users:       users,
		customer:    entity.Identity{UserID: customerUser.ID, Role: entity.RoleCustomer},
		admin:       entity.Identity{UserID: adminUser.ID, Role: entity.RoleAdmin},
	}
}

func newFixture(t *testing.T, mode workflow.PipelineMode) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return buildFixture(t, db, mode)
}

// newPooledFixture opens a file-backed database through the production
// DSN with a real connection pool, so concurrent callers genuinely race
// instead of serializing on a single connection.
func newPooledFixture(t *testing.T, mode workflow.PipelineMode) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 25,
		MaxIdleConns: 5,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return buildFixture(t, db, mode)
}

func TestDirectPipelineLifecycle(t *testing.T) {
	f := newFixture(t, workflow.ModeDirect)
	ctx := context.Background()

	enrollment, err := f.enrollments.Enroll(ctx, f.customer, 1, "KA-01 sedan")
	require.NoError(t, err)
	assert.Equal(t, entity.EnrollmentStatusPending, enrollment.Status)
	assert.True(t, strings.HasPrefix(enrollment.GeneratedPolicyNumber, "T-100-"))

	// A second enrollment for the pair is blocked while the first lives
	_, err = f.enrollments.Enroll(ctx, f.customer, 1, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateEnrollment), "got %v", err)

	approved, err := f.enrollments.AdminApprove(ctx, f.admin, enrollment.ID, "verified")
	require.NoError(t, err)
	assert.Equal(t, entity.EnrollmentStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedDate)
	firstApproval := *approved.ApprovedDate

	claim, err := f.claims.SubmitClaim(ctx, f.customer, enrollment.ID, 500.00, "rear bumper")
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusOpen, claim.Status)
	assert.Equal(t, approved.GeneratedPolicyNumber, claim.PolicyNumber)

	// Approval is not repeatable and the first timestamp survives
	_, err = f.enrollments.AdminApprove(ctx, f.admin, enrollment.ID, "again")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState), "got %v", err)

	current, err := f.enrollments.GetEnrollment(ctx, f.admin, enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, current.ApprovedDate)
	assert.True(t, current.ApprovedDate.Equal(firstApproval))
}

func TestReEnrollmentAfterDecline(t *testing.T) {
	f := newFixture(t, workflow.ModeDirect)
	ctx := context.Background()

	first, err := f.enrollments.Enroll(ctx, f.customer, 1, "")
	require.NoError(t, err)

	_, err = f.enrollments.AdminDecline(ctx, f.admin, first.ID, "income below threshold")
	require.NoError(t, err)

	eligibility, err := f.enrollments.CheckEligibility(ctx, f.customer, 1)
	require.NoError(t, err)
	assert.True(t, eligibility.CanEnroll)

	second, err := f.enrollments.Enroll(ctx, f.customer, 1, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.GeneratedPolicyNumber, second.GeneratedPolicyNumber)

	// The declined row is untouched history
	old, err := f.enrollments.GetEnrollment(ctx, f.admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EnrollmentStatusDeclined, old.Status)
}

func TestClaimGatingAgainstStore(t *testing.T) {
	f := newFixture(t, workflow.ModeDirect)
	ctx := context.Background()

	enrollment, err := f.enrollments.Enroll(ctx, f.customer, 1, "")
	require.NoError(t, err)

	_, err = f.claims.SubmitClaim(ctx, f.customer, enrollment.ID, 250, "too early")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState), "got %v", err)

	_, err = f.enrollments.Withdraw(ctx, f.customer, enrollment.ID)
	require.NoError(t, err)

	_, err = f.claims.SubmitClaim(ctx, f.customer, enrollment.ID, 250, "after withdrawal")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState), "got %v", err)
}

func TestConcurrentEnrollMutualExclusion(t *testing.T) {
	f := newPooledFixture(t, workflow.ModeDirect)
	ctx := context.Background()

	const callers = 8
	results := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.enrollments.Enroll(ctx, f.customer, 1, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, duplicates int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsCode(err, apperrors.CodeDuplicateEnrollment):
			duplicates++
		default:
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one caller wins")
	assert.Equal(t, callers-1, duplicates, "every loser observes the duplicate")
}

func TestConcurrentEnrollDistinctPolicyNumbers(t *testing.T) {
	f := newPooledFixture(t, workflow.ModeDirect)
	ctx := context.Background()

	const customers = 32
	ids := make([]int64, customers)
	for i := range ids {
		u := &entity.User{
			Username:     fmt.Sprintf("bulk%02d", i),
			PasswordHash: "x",
			Email:        fmt.Sprintf("bulk%02d@example.com", i),
			Role:         entity.RoleCustomer,
		}
		require.NoError(t, f.users.Create(ctx, u))
		ids[i] = u.ID
	}

	numbers := make(chan string, customers)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			caller := entity.Identity{UserID: userID, Role: entity.RoleCustomer}
			enrollment, err := f.enrollments.Enroll(ctx, caller, 1, "")
			if err != nil {
				t.Errorf("enroll for user %d: %v", userID, err)
				return
			}
			numbers <- enrollment.GeneratedPolicyNumber
		}(id)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		assert.True(t, strings.HasPrefix(n, "T-100-"))
		assert.False(t, seen[n], "policy number %s issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, customers)
}
