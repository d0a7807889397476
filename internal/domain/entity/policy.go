package entity

import "time"

// PolicyStatus describes whether a template accepts new enrollments
type PolicyStatus string

const (
	PolicyStatusActive   PolicyStatus = "ACTIVE"
	PolicyStatusInactive PolicyStatus = "INACTIVE"
	PolicyStatusRenewed  PolicyStatus = "RENEWED"
)

// IsValid returns true if the status is a known policy status
func (s PolicyStatus) IsValid() bool {
	switch s {
	case PolicyStatusActive, PolicyStatusInactive, PolicyStatusRenewed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s PolicyStatus) String() string {
	return string(s)
}

// PolicyTemplate is a product definition customers enroll into.
// Templates are created and edited by staff and outlive every enrollment
// that references them.
type PolicyTemplate struct {
	ID             int64        `json:"id"`
	PolicyNumber   string       `json:"policy_number"`
	VehicleDetails string       `json:"vehicle_details"`
	CoverageAmount float64      `json:"coverage_amount"`
	CoverageType   string       `json:"coverage_type"`
	PremiumAmount  float64      `json:"premium_amount"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	Status         PolicyStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
