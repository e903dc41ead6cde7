package employee

import "context"

// EmployeeRepository is the read side of the employee directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	// ListActive returns the roster used for attendance stats.
	ListActive(ctx context.Context) ([]Employee, error)
	// ListReviewerUserIDs returns the user IDs of MANAGER users in the
	// department plus every HR user.
	ListReviewerUserIDs(ctx context.Context, departmentID *string) ([]string, error)
}
