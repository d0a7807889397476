package service

import (
	"context"
	"testing"
	"time"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

func validTemplate() *entity.PolicyTemplate {
	return &entity.PolicyTemplate{
		PolicyNumber:   "POL-AUTO-001",
		CoverageAmount: 50000,
		CoverageType:   "COMPREHENSIVE",
		PremiumAmount:  1200,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
	}
}

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults status to active", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		created, err := svc.CreateTemplate(ctx, admin, validTemplate())
		if err != nil {
			t.Fatalf("CreateTemplate() error = %v", err)
		}
		if created.Status != entity.PolicyStatusActive {
			t.Errorf("Status = %s, want ACTIVE", created.Status)
		}
		if created.ID == 0 {
			t.Error("expected assigned ID")
		}
	})

	t.Run("only admin may create", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		for _, caller := range []entity.Identity{customer, agent} {
			_, err := svc.CreateTemplate(ctx, caller, validTemplate())
			if !apperrors.IsCode(err, apperrors.CodeForbidden) {
				t.Errorf("role %s: error = %v, want Forbidden", caller.Role, err)
			}
		}
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		tests := []struct {
			name   string
			mutate func(*entity.PolicyTemplate)
			code   apperrors.Code
		}{
			{"empty policy number", func(p *entity.PolicyTemplate) { p.PolicyNumber = "  " }, apperrors.CodeInvalidInput},
			{"empty coverage type", func(p *entity.PolicyTemplate) { p.CoverageType = "" }, apperrors.CodeInvalidInput},
			{"zero coverage amount", func(p *entity.PolicyTemplate) { p.CoverageAmount = 0 }, apperrors.CodeInvalidAmount},
			{"negative premium", func(p *entity.PolicyTemplate) { p.PremiumAmount = -5 }, apperrors.CodeInvalidAmount},
			{"unknown status", func(p *entity.PolicyTemplate) { p.Status = "SUSPENDED" }, apperrors.CodeInvalidInput},
		}
		for _, tt := range tests {
			template := validTemplate()
			tt.mutate(template)
			_, err := svc.CreateTemplate(ctx, admin, template)
			if !apperrors.IsCode(err, tt.code) {
				t.Errorf("%s: error = %v, want %s", tt.name, err, tt.code)
			}
		}
	})
}

func TestUpdateTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing template is not found", func(t *testing.T) {
		policies := &mockPolicyRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.PolicyTemplate, error) {
				return nil, nil
			},
		}
		svc := NewPolicyService(policies, &mockLogger{})

		template := validTemplate()
		template.ID = 404
		_, err := svc.UpdateTemplate(ctx, admin, template)
		if !apperrors.IsCode(err, apperrors.CodeNotFound) {
			t.Errorf("error = %v, want NotFound", err)
		}
	})

	t.Run("updates existing template", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		template := validTemplate()
		template.ID = 5
		template.Status = entity.PolicyStatusInactive
		updated, err := svc.UpdateTemplate(ctx, admin, template)
		if err != nil {
			t.Fatalf("UpdateTemplate() error = %v", err)
		}
		if updated.Status != entity.PolicyStatusInactive {
			t.Errorf("Status = %s, want INACTIVE", updated.Status)
		}
	})
}

func TestTemplateVisibility(t *testing.T) {
	ctx := context.Background()

	t.Run("all roles browse the catalog", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		for _, caller := range []entity.Identity{customer, agent, admin} {
			if _, err := svc.ListTemplates(ctx, caller); err != nil {
				t.Errorf("role %s: ListTemplates() error = %v", caller.Role, err)
			}
			if _, err := svc.GetTemplate(ctx, caller, 1); err != nil {
				t.Errorf("role %s: GetTemplate() error = %v", caller.Role, err)
			}
		}
	})

	t.Run("only admin may delete", func(t *testing.T) {
		svc := NewPolicyService(&mockPolicyRepo{}, &mockLogger{})

		if err := svc.DeleteTemplate(ctx, agent, 1); !apperrors.IsCode(err, apperrors.CodeForbidden) {
			t.Errorf("error = %v, want Forbidden", err)
		}
		if err := svc.DeleteTemplate(ctx, admin, 1); err != nil {
			t.Errorf("DeleteTemplate() error = %v", err)
		}
	})
}
