package employee

import "time"

type Employee struct {
	ID           string
	UserID       *string
	EmployeeCode string
	FullName     string
	Email        string
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	DepartmentName *string
}

type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
