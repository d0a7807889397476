package entity

import "time"

// TicketStatus is the state of a support ticket
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusResolved TicketStatus = "RESOLVED"
)

// IsValid returns true if the status is a known ticket status
func (s TicketStatus) IsValid() bool {
	return s == TicketStatusOpen || s == TicketStatusResolved
}

// String returns the string representation of the status
func (s TicketStatus) String() string {
	return string(s)
}

// SupportTicket is a customer issue report, optionally linked to one of
// the customer's enrollments or claims.
type SupportTicket struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	EnrollmentID     *int64       `json:"enrollment_id,omitempty"`
	ClaimID          *int64       `json:"claim_id,omitempty"`
	IssueDescription string       `json:"issue_description"`
	Status           TicketStatus `json:"status"`
	ResolutionNotes  string       `json:"resolution_notes,omitempty"`
	CreatedDate      time.Time    `json:"created_date"`
	ResolvedDate     *time.Time   `json:"resolved_date,omitempty"`
}
