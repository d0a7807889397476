package service

import (
	"context"
	"io"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/internal/reports"
)

// ReportService produces administrative exports of enrollments and claims
type ReportService interface {
	ExportEnrollments(ctx context.Context, caller entity.Identity, w io.Writer) error
	ExportClaims(ctx context.Context, caller entity.Identity, w io.Writer) error
}

type reportServiceImpl struct {
	enrollments port.EnrollmentRepository
	claims      port.ClaimRepository
	exporter    *reports.Exporter
}

// NewReportService creates a new ReportService
func NewReportService(enrollments port.EnrollmentRepository, claims port.ClaimRepository, exporter *reports.Exporter) ReportService {
	return &reportServiceImpl{enrollments: enrollments, claims: claims, exporter: exporter}
}

// ExportEnrollments writes the full enrollment register as a workbook
func (s *reportServiceImpl) ExportEnrollments(ctx context.Context, caller entity.Identity, w io.Writer) error {
	if err := authz.Allow(caller, authz.OpExportReports); err != nil {
		return err
	}
	enrollments, err := s.enrollments.List(ctx)
	if err != nil {
		return err
	}
	return s.exporter.WriteEnrollmentRegister(enrollments, w)
}

// ExportClaims writes the full claim register as a workbook
func (s *reportServiceImpl) ExportClaims(ctx context.Context, caller entity.Identity, w io.Writer) error {
	if err := authz.Allow(caller, authz.OpExportReports); err != nil {
		return err
	}
	claims, err := s.claims.List(ctx)
	if err != nil {
		return err
	}
	return s.exporter.WriteClaimRegister(claims, w)
}
