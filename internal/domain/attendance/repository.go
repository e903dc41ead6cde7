package attendance

import (
	"context"
	"time"
)

// Filter narrows List. Zero values are ignored.
type Filter struct {
	EmployeeID string
	Status     Status
	// Date matches a single day. From/To bound an inclusive range.
	Date *time.Time
	From *time.Time
	To   *time.Time
}

type AttendanceRepository interface {
	// Get returns the record for employeeID on date or ErrAttendanceNotFound.
	Get(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Create inserts a new check-in record. It returns ErrDuplicateAttendance
	// when a record for (EmployeeID, Date) already exists.
	Create(ctx context.Context, record *Attendance) error

	// UpdateCheckOut stores the check-out fields of an existing record. It
	// returns ErrAlreadyCheckedOut when the record was checked out meanwhile and
	// ErrAttendanceNotFound when there is no record to update.
	UpdateCheckOut(ctx context.Context, record *Attendance) error

	// ListForDate returns every record on date.
	ListForDate(ctx context.Context, date time.Time) ([]Attendance, error)

	// List returns records matching filter ordered by date desc, employee.
	List(ctx context.Context, filter Filter) ([]Attendance, error)

	// ClearAll deletes every record and returns how many were removed.
	ClearAll(ctx context.Context) (int64, error)

	// DeleteByIDs deletes the listed records and returns how many were removed.
	// Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
