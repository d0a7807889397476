package entity

import "time"

// ClaimStatus is the processing state of a claim. Claims open in OPEN and
// are moved to any other status by staff; there is no transition graph.
type ClaimStatus string

const (
	ClaimStatusOpen     ClaimStatus = "OPEN"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
	ClaimStatusClosed   ClaimStatus = "CLOSED"
)

// IsValid returns true if the status is a known claim status
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusOpen, ClaimStatusApproved, ClaimStatusRejected, ClaimStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ClaimStatus) String() string {
	return string(s)
}

// Claim is filed against an approved enrollment. CustomerID,
// PolicyTemplateID and PolicyNumber are denormalized snapshots taken at
// filing time for reporting; the enrollment row is not touched.
type Claim struct {
	ID               int64       `json:"id"`
	EnrollmentID     int64       `json:"enrollment_id"`
	PolicyTemplateID int64       `json:"policy_template_id"`
	CustomerID       int64       `json:"customer_id"`
	PolicyNumber     string      `json:"policy_number"`
	Amount           float64     `json:"amount"`
	Description      string      `json:"description"`
	Status           ClaimStatus `json:"status"`
	AdminNotes       string      `json:"admin_notes,omitempty"`
	AgentNotes       string      `json:"agent_notes,omitempty"`
	ClaimDate        time.Time   `json:"claim_date"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
