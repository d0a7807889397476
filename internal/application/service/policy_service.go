package service

import (
	"context"
	"strings"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// PolicyService manages the catalog of policy templates customers
// enroll against
type PolicyService interface {
	CreateTemplate(ctx context.Context, caller entity.Identity, template *entity.PolicyTemplate) (*entity.PolicyTemplate, error)
	UpdateTemplate(ctx context.Context, caller entity.Identity, template *entity.PolicyTemplate) (*entity.PolicyTemplate, error)
	DeleteTemplate(ctx context.Context, caller entity.Identity, templateID int64) error
	GetTemplate(ctx context.Context, caller entity.Identity, templateID int64) (*entity.PolicyTemplate, error)
	ListTemplates(ctx context.Context, caller entity.Identity) ([]*entity.PolicyTemplate, error)
}

type policyServiceImpl struct {
	policies port.PolicyRepository
	logger   Logger
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(policies port.PolicyRepository, logger Logger) PolicyService {
	return &policyServiceImpl{policies: policies, logger: logger}
}

func validateTemplate(template *entity.PolicyTemplate) error {
	if strings.TrimSpace(template.PolicyNumber) == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "policy number is required")
	}
	if strings.TrimSpace(template.CoverageType) == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "coverage type is required")
	}
	if template.CoverageAmount <= 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, "coverage amount must be positive")
	}
	if template.PremiumAmount <= 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, "premium amount must be positive")
	}
	if !template.Status.IsValid() {
		return apperrors.Newf(apperrors.CodeInvalidInput, "unknown policy status %q", template.Status)
	}
	return nil
}

// CreateTemplate adds a template to the catalog
func (s *policyServiceImpl) CreateTemplate(ctx context.Context, caller entity.Identity, template *entity.PolicyTemplate) (*entity.PolicyTemplate, error) {
	if err := authz.Allow(caller, authz.OpCreateTemplate); err != nil {
		return nil, err
	}
	if template.Status == "" {
		template.Status = entity.PolicyStatusActive
	}
	if err := validateTemplate(template); err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("Policy template created",
		"template_id", template.ID,
		"policy_number", template.PolicyNumber)
	return template, nil
}

// UpdateTemplate modifies an existing template. Status changes here do
// not touch existing enrollments; they only gate new ones.
func (s *policyServiceImpl) UpdateTemplate(ctx context.Context, caller entity.Identity, template *entity.PolicyTemplate) (*entity.PolicyTemplate, error) {
	if err := authz.Allow(caller, authz.OpUpdateTemplate); err != nil {
		return nil, err
	}
	if err := validateTemplate(template); err != nil {
		return nil, err
	}

	existing, err := s.policies.GetByID(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "policy template not found")
	}

	if err := s.policies.Update(ctx, template); err != nil {
		return nil, err
	}
	s.logger.Info("Policy template updated", "template_id", template.ID)
	return template, nil
}

// DeleteTemplate removes a template. Templates with enrollments are
// protected by the foreign key and surface as a conflict.
func (s *policyServiceImpl) DeleteTemplate(ctx context.Context, caller entity.Identity, templateID int64) error {
	if err := authz.Allow(caller, authz.OpDeleteTemplate); err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, templateID); err != nil {
		return err
	}
	s.logger.Info("Policy template deleted", "template_id", templateID)
	return nil
}

// GetTemplate retrieves one template
func (s *policyServiceImpl) GetTemplate(ctx context.Context, caller entity.Identity, templateID int64) (*entity.PolicyTemplate, error) {
	if err := authz.Allow(caller, authz.OpViewTemplates); err != nil {
		return nil, err
	}
	template, err := s.policies.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "policy template not found")
	}
	return template, nil
}

// ListTemplates retrieves the catalog. All roles may browse it.
func (s *policyServiceImpl) ListTemplates(ctx context.Context, caller entity.Identity) ([]*entity.PolicyTemplate, error) {
	if err := authz.Allow(caller, authz.OpViewTemplates); err != nil {
		return nil, err
	}
	return s.policies.List(ctx)
}
