package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

type stubEnrollmentService struct {
	adminApproveFunc func(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error)
}

func (s *stubEnrollmentService) Enroll(ctx context.Context, caller entity.Identity, templateID int64, vehicleDetails string) (*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) CheckEligibility(ctx context.Context, caller entity.Identity, templateID int64) (*entity.Eligibility, error) {
	return nil, nil
}

func (s *stubEnrollmentService) AgentReview(ctx context.Context, caller entity.Identity, enrollmentID int64, approve bool, notes string) (*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) AdminApprove(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error) {
	if s.adminApproveFunc != nil {
		return s.adminApproveFunc(ctx, caller, enrollmentID, notes)
	}
	return &entity.Enrollment{ID: enrollmentID, Status: entity.EnrollmentStatusApproved}, nil
}

func (s *stubEnrollmentService) AdminDecline(ctx context.Context, caller entity.Identity, enrollmentID int64, reason string) (*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) Withdraw(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) GetEnrollment(ctx context.Context, caller entity.Identity, enrollmentID int64) (*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) ListMyEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) ListPendingReview(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) ListAgentAssignments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) ListAllEnrollments(ctx context.Context, caller entity.Identity) ([]*entity.Enrollment, error) {
	return nil, nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func approveContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	c.Request = httptest.NewRequest(http.MethodPut, "/api/enrollments/1/approve", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(identityKey, entity.Identity{UserID: 30, Role: entity.RoleAdmin})
	return c, w
}

func TestAdminApprove_OptionalBody(t *testing.T) {
	t.Run("absent body approves with empty notes", func(t *testing.T) {
		var gotNotes string
		svc := &stubEnrollmentService{
			adminApproveFunc: func(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error) {
				gotNotes = notes
				return &entity.Enrollment{ID: enrollmentID, Status: entity.EnrollmentStatusApproved}, nil
			},
		}
		h := NewHandlers(Services{Enrollments: svc}, nopLogger{})

		c, w := approveContext(t, "")
		h.AdminApprove(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", gotNotes)
	})

	t.Run("notes in body are forwarded", func(t *testing.T) {
		var gotNotes string
		svc := &stubEnrollmentService{
			adminApproveFunc: func(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error) {
				gotNotes = notes
				return &entity.Enrollment{ID: enrollmentID, Status: entity.EnrollmentStatusApproved}, nil
			},
		}
		h := NewHandlers(Services{Enrollments: svc}, nopLogger{})

		c, w := approveContext(t, `{"notes":"income verified"}`)
		h.AdminApprove(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "income verified", gotNotes)
	})

	t.Run("malformed body is rejected before the service runs", func(t *testing.T) {
		called := false
		svc := &stubEnrollmentService{
			adminApproveFunc: func(ctx context.Context, caller entity.Identity, enrollmentID int64, notes string) (*entity.Enrollment, error) {
				called = true
				return nil, nil
			},
		}
		h := NewHandlers(Services{Enrollments: svc}, nopLogger{})

		c, w := approveContext(t, `{"notes":`)
		h.AdminApprove(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called, "service must not run on a malformed body")
	})
}
