package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sugun-2430327/project-backend/internal/application/service"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid %s", name),
		})
		return 0, false
	}
	return id, true
}

// ---- Authentication ----

// RegisterRequest represents a registration payload. The same fields are
// accepted as multipart form values so an ID proof can ride along.
type RegisterRequest struct {
	Username       string  `json:"username" form:"username"`
	Password       string  `json:"password" form:"password"`
	Email          string  `json:"email" form:"email"`
	IncomePerAnnum float64 `json:"income_per_annum" form:"income_per_annum"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	in := service.RegisterInput{Role: entity.RoleCustomer}

	if c.ContentType() == "multipart/form-data" {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form data"})
			return
		}
		if fh, err := c.FormFile("id_proof"); err == nil {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable id_proof upload"})
				return
			}
			defer f.Close()
			in.IDProofName = fh.Filename
			in.IDProof = f
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	in.Username = req.Username
	in.Password = req.Password
	in.Email = req.Email
	in.IncomePerAnnum = req.IncomePerAnnum

	user, err := h.services.Users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, user)
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated account
type LoginResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "username and password are required"})
		return
	}

	result, err := h.services.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, LoginResponse{Token: result.Token, User: result.User})
}

// ---- Policy templates ----

// TemplateRequest represents a policy template create/update payload
type TemplateRequest struct {
	PolicyNumber   string  `json:"policy_number" binding:"required"`
	VehicleDetails string  `json:"vehicle_details"`
	CoverageAmount float64 `json:"coverage_amount" binding:"required"`
	CoverageType   string  `json:"coverage_type" binding:"required"`
	PremiumAmount  float64 `json:"premium_amount" binding:"required"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Status         string  `json:"status"`
}

func (r TemplateRequest) toEntity() (*entity.PolicyTemplate, error) {
	template := &entity.PolicyTemplate{
		PolicyNumber:   r.PolicyNumber,
		VehicleDetails: r.VehicleDetails,
		CoverageAmount: r.CoverageAmount,
		CoverageType:   r.CoverageType,
		PremiumAmount:  r.PremiumAmount,
		Status:         entity.PolicyStatus(r.Status),
	}
	if r.StartDate != "" {
		t, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		template.StartDate = t
	}
	if r.EndDate != "" {
		t, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		template.EndDate = t
	}
	return template, nil
}

// CreateTemplate handles POST /api/policies
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	template, err := req.toEntity()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	created, err := h.services.Policies.CreateTemplate(c.Request.Context(), callerIdentity(c), template)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// UpdateTemplate handles PUT /api/policies/:id
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	template, err := req.toEntity()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	template.ID = id

	updated, err := h.services.Policies.UpdateTemplate(c.Request.Context(), callerIdentity(c), template)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// DeleteTemplate handles DELETE /api/policies/:id
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Policies.DeleteTemplate(c.Request.Context(), callerIdentity(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": id})
}

// GetTemplate handles GET /api/policies/:id
func (h *Handlers) GetTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	template, err := h.services.Policies.GetTemplate(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, template)
}

// ListTemplates handles GET /api/policies
func (h *Handlers) ListTemplates(c *gin.Context) {
	templates, err := h.services.Policies.ListTemplates(c.Request.Context(), callerIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, templates)
}

// ---- Enrollments ----

// EnrollRequest represents an enrollment submission
type EnrollRequest struct {
	PolicyTemplateID int64  `json:"policy_template_id" binding:"required"`
	VehicleDetails   string `json:"vehicle_details"`
}

// Enroll handles POST /api/enrollments
func (h *Handlers) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "policy_template_id is required"})
		return
	}

	enrollment, err := h.services.Enrollments.Enroll(c.Request.Context(), callerIdentity(c), req.PolicyTemplateID, req.VehicleDetails)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, enrollment)
}

// CheckEligibility handles GET /api/enrollments/eligibility/:templateId
func (h *Handlers) CheckEligibility(c *gin.Context) {
	templateID, ok := pathID(c, "templateId")
	if !ok {
		return
	}
	eligibility, err := h.services.Enrollments.CheckEligibility(c.Request.Context(), callerIdentity(c), templateID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, eligibility)
}

// ListEnrollments handles GET /api/enrollments. The view depends on the
// caller's role and the optional view query parameter.
func (h *Handlers) ListEnrollments(c *gin.Context) {
	caller := callerIdentity(c)
	ctx := c.Request.Context()

	var (
		enrollments []*entity.Enrollment
		err         error
	)
	switch {
	case caller.Role == entity.RoleCustomer:
		enrollments, err = h.services.Enrollments.ListMyEnrollments(ctx, caller)
	case caller.Role == entity.RoleAgent:
		enrollments, err = h.services.Enrollments.ListAgentAssignments(ctx, caller)
	case c.Query("view") == "pending":
		enrollments, err = h.services.Enrollments.ListPendingReview(ctx, caller)
	default:
		enrollments, err = h.services.Enrollments.ListAllEnrollments(ctx, caller)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollments)
}

// GetEnrollment handles GET /api/enrollments/:id
func (h *Handlers) GetEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.services.Enrollments.GetEnrollment(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollment)
}

// ReviewRequest represents an agent review decision
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// AgentReview handles PUT /api/enrollments/:id/agent-review
func (h *Handlers) AgentReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	enrollment, err := h.services.Enrollments.AgentReview(c.Request.Context(), callerIdentity(c), id, req.Approve, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollment)
}

// NotesRequest carries optional notes for approve/decline decisions
type NotesRequest struct {
	Notes string `json:"notes"`
}

// bindOptionalJSON decodes a request body that is allowed to be absent.
// An empty body leaves dst zero-valued; a present but malformed body is
// rejected with InvalidInput.
func (h *Handlers) bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.logger, apperrors.Wrap(apperrors.CodeInvalidInput, "malformed request body", err))
		return false
	}
	return true
}

// AdminApprove handles PUT /api/enrollments/:id/approve
func (h *Handlers) AdminApprove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req NotesRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	enrollment, err := h.services.Enrollments.AdminApprove(c.Request.Context(), callerIdentity(c), id, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollment)
}

// AdminDecline handles PUT /api/enrollments/:id/decline
func (h *Handlers) AdminDecline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req NotesRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	enrollment, err := h.services.Enrollments.AdminDecline(c.Request.Context(), callerIdentity(c), id, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollment)
}

// Withdraw handles PUT /api/enrollments/:id/withdraw
func (h *Handlers) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.services.Enrollments.Withdraw(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, enrollment)
}

// ---- Claims ----

// ClaimRequest represents a claim submission
type ClaimRequest struct {
	EnrollmentID int64   `json:"enrollment_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	Description  string  `json:"description"`
}

// SubmitClaim handles POST /api/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "enrollment_id and amount are required"})
		return
	}

	claim, err := h.services.Claims.SubmitClaim(c.Request.Context(), callerIdentity(c), req.EnrollmentID, req.Amount, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, claim)
}

// ClaimStatusRequest represents an adjudication decision
type ClaimStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateClaimStatus handles PUT /api/claims/:id/status
func (h *Handlers) UpdateClaimStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "status is required"})
		return
	}

	claim, err := h.services.Claims.UpdateClaimStatus(c.Request.Context(), callerIdentity(c), id, entity.ClaimStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, claim)
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claim, err := h.services.Claims.GetClaim(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, claim)
}

// ListClaims handles GET /api/claims with an optional ?status= filter
func (h *Handlers) ListClaims(c *gin.Context) {
	var status *entity.ClaimStatus
	if raw := c.Query("status"); raw != "" {
		s := entity.ClaimStatus(raw)
		status = &s
	}
	claims, err := h.services.Claims.ListClaims(c.Request.Context(), callerIdentity(c), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, claims)
}

// ---- Support tickets ----

// TicketRequest represents a support ticket submission
type TicketRequest struct {
	Description  string `json:"description" binding:"required"`
	EnrollmentID *int64 `json:"enrollment_id"`
	ClaimID      *int64 `json:"claim_id"`
}

// CreateTicket handles POST /api/support
func (h *Handlers) CreateTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "description is required"})
		return
	}

	ticket, err := h.services.Support.CreateTicket(c.Request.Context(), callerIdentity(c), req.Description, req.EnrollmentID, req.ClaimID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, ticket)
}

// ResolveRequest carries the resolution notes for a ticket
type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// ResolveTicket handles PUT /api/support/:id/resolve
func (h *Handlers) ResolveTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "resolution is required"})
		return
	}

	ticket, err := h.services.Support.ResolveTicket(c.Request.Context(), callerIdentity(c), id, req.Resolution)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, ticket)
}

// GetTicket handles GET /api/support/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.services.Support.GetTicket(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, ticket)
}

// ListTickets handles GET /api/support
func (h *Handlers) ListTickets(c *gin.Context) {
	tickets, err := h.services.Support.ListTickets(c.Request.Context(), callerIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, tickets)
}

// ---- Reports ----

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportEnrollments handles GET /api/reports/enrollments
func (h *Handlers) ExportEnrollments(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.Reports.ExportEnrollments(c.Request.Context(), callerIdentity(c), &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="enrollments.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportClaims handles GET /api/reports/claims
func (h *Handlers) ExportClaims(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.Reports.ExportClaims(c.Request.Context(), callerIdentity(c), &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="claims.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ---- Users ----

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.Users.GetUser(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.services.Users.ListUsers(c.Request.Context(), callerIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, users)
}
