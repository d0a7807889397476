package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

func TestWriteEnrollmentRegister(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	enrolled := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	approved := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	agentID := int64(20)

	enrollments := []*entity.Enrollment{
		{
			ID:                    1,
			GeneratedPolicyNumber: "POL-AUTO-001-ABC123",
			PolicyTemplateID:      5,
			CustomerID:            10,
			AgentID:               &agentID,
			Status:                entity.EnrollmentStatusApproved,
			EnrolledDate:          enrolled,
			ApprovedDate:          &approved,
			AdminNotes:            "verified income",
		},
		{
			ID:                    2,
			GeneratedPolicyNumber: "POL-AUTO-001-DEF456",
			PolicyTemplateID:      5,
			CustomerID:            11,
			Status:                entity.EnrollmentStatusPending,
			EnrolledDate:          enrolled,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteEnrollmentRegister(enrollments, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Status", rows[0][5])

	assert.Equal(t, "POL-AUTO-001-ABC123", rows[1][1])
	assert.Equal(t, "APPROVED", rows[1][5])
	assert.Equal(t, "2025-03-10", rows[1][6])
	assert.Equal(t, "2025-03-12", rows[1][7])

	assert.Equal(t, "PENDING", rows[2][5])
	// No agent claimed the pending row
	assert.Equal(t, "", rows[2][4])
}

func TestWriteClaimRegister(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	filed := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	claims := []*entity.Claim{
		{
			ID:           7,
			PolicyNumber: "POL-AUTO-001-ABC123",
			EnrollmentID: 1,
			CustomerID:   10,
			Amount:       2500.50,
			Status:       entity.ClaimStatusOpen,
			ClaimDate:    filed,
			Description:  "windshield replacement",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteClaimRegister(claims, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Claims")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "POL-AUTO-001-ABC123", rows[1][1])
	assert.Equal(t, "2500.5", rows[1][4])
	assert.Equal(t, "OPEN", rows[1][5])
	assert.Equal(t, "2025-04-01", rows[1][6])
}

func TestWriteEnrollmentRegister_Empty(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteEnrollmentRegister(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
