package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// Exporter writes administrative registers as Excel workbooks
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// WriteEnrollmentRegister writes one row per enrollment to w
func (e *Exporter) WriteEnrollmentRegister(enrollments []*entity.Enrollment, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Enrollments"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []interface{}{
		"ID", "Policy Number", "Template ID", "Customer ID", "Agent ID",
		"Status", "Enrolled", "Approved", "Declined", "Withdrawn",
		"Agent Notes", "Admin Notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, enr := range enrollments {
		row := []interface{}{
			enr.ID,
			enr.GeneratedPolicyNumber,
			enr.PolicyTemplateID,
			enr.CustomerID,
			optionalID(enr.AgentID),
			enr.Status.String(),
			enr.EnrolledDate.Format(dateLayout),
			optionalDate(enr.ApprovedDate),
			optionalDate(enr.DeclinedDate),
			optionalDate(enr.WithdrawnDate),
			enr.AgentNotes,
			enr.AdminNotes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Enrollment register exported",
		zap.Int("rows", len(enrollments)))
	return nil
}

// WriteClaimRegister writes one row per claim to w
func (e *Exporter) WriteClaimRegister(claims []*entity.Claim, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Claims"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []interface{}{
		"ID", "Policy Number", "Enrollment ID", "Customer ID",
		"Amount", "Status", "Filed", "Description", "Admin Notes", "Agent Notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, c := range claims {
		row := []interface{}{
			c.ID,
			c.PolicyNumber,
			c.EnrollmentID,
			c.CustomerID,
			c.Amount,
			c.Status.String(),
			c.ClaimDate.Format(dateLayout),
			c.Description,
			c.AdminNotes,
			c.AgentNotes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Claim register exported",
		zap.Int("rows", len(claims)))
	return nil
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func optionalID(id *int64) interface{} {
	if id == nil {
		return ""
	}
	return *id
}
