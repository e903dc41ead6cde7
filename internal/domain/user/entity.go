package user

import "time"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE" // Scans the QR code
	RoleManager  Role = "MANAGER"  // Receives department notifications
	RoleHR       Role = "HR"       // Runs the QR display, reads all records
	RoleAdmin    Role = "ADMIN"    // Everything HR can do plus bulk clear
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID            string
	Email         string
	PasswordHash  *string
	Role          Role
	GoogleID      *string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO / Join
	EmployeeID *string
	FullName   *string
}

// IsHROrAdmin checks if user can operate the QR display
func (u *User) IsHROrAdmin() bool {
	return u.Role == RoleHR || u.Role == RoleAdmin
}
