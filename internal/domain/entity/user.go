package entity

import "time"

// Role identifies the access level of an authenticated user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleAdmin    Role = "ADMIN"
)

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsStaff returns true for roles allowed to act on other users' records
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User represents an account in the directory
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	IncomePerAnnum float64   `json:"income_per_annum,omitempty"`
	IDProofPath    string    `json:"id_proof_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity is the resolved authenticated caller attached to every operation
type Identity struct {
	UserID int64
	Role   Role
}
