package entity

import "time"

// EnrollmentStatus is the lifecycle state of a policy enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusPending       EnrollmentStatus = "PENDING"
	EnrollmentStatusAgentApproved EnrollmentStatus = "AGENT_APPROVED"
	EnrollmentStatusApproved      EnrollmentStatus = "APPROVED"
	EnrollmentStatusDeclined      EnrollmentStatus = "DECLINED"
	EnrollmentStatusWithdrawn     EnrollmentStatus = "WITHDRAWN"
)

// IsValid returns true if the status is a known enrollment status
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusAgentApproved,
		EnrollmentStatusApproved, EnrollmentStatusDeclined, EnrollmentStatusWithdrawn:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s EnrollmentStatus) String() string {
	return string(s)
}

// Blocks returns true if an enrollment in this status prevents the same
// (customer, template) pair from enrolling again. DECLINED and WITHDRAWN
// rows permit re-enrollment through a fresh row.
func (s EnrollmentStatus) Blocks() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusAgentApproved, EnrollmentStatusApproved:
		return true
	}
	return false
}

// BlockingStatuses is the status class covered by the active-enrollment
// unique constraint on (customer, template).
func BlockingStatuses() []EnrollmentStatus {
	return []EnrollmentStatus{
		EnrollmentStatusPending,
		EnrollmentStatusAgentApproved,
		EnrollmentStatusApproved,
	}
}

// Enrollment is a customer's instantiation of a policy template. Rows are
// never deleted; terminal rows stay behind as history and re-enrollment
// creates a new row.
type Enrollment struct {
	ID               int64            `json:"id"`
	PolicyTemplateID int64            `json:"policy_template_id"`
	CustomerID       int64            `json:"customer_id"`
	AgentID          *int64           `json:"agent_id,omitempty"`
	Status           EnrollmentStatus `json:"status"`
	// GeneratedPolicyNumber is assigned once at creation and never changes.
	GeneratedPolicyNumber string     `json:"generated_policy_number"`
	VehicleDetails        string     `json:"vehicle_details,omitempty"`
	EnrolledDate          time.Time  `json:"enrolled_date"`
	ApprovedDate          *time.Time `json:"approved_date,omitempty"`
	DeclinedDate          *time.Time `json:"declined_date,omitempty"`
	WithdrawnDate         *time.Time `json:"withdrawn_date,omitempty"`
	AgentApprovedDate     *time.Time `json:"agent_approved_date,omitempty"`
	AgentDeclinedDate     *time.Time `json:"agent_declined_date,omitempty"`
	AgentNotes            string     `json:"agent_notes,omitempty"`
	AdminNotes            string     `json:"admin_notes,omitempty"`
}

// Eligibility is the result of an enrollment eligibility check
type Eligibility struct {
	CanEnroll      bool              `json:"can_enroll"`
	Reason         string            `json:"reason"`
	BlockingStatus *EnrollmentStatus `json:"blocking_status,omitempty"`
}
