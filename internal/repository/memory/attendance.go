package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func (r *attendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.attendances[attendanceKey(employeeID, date)]
	if !ok {
		return nil, attendance.ErrAttendanceNotFound
	}
	return &rec, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *attendance.Attendance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := attendanceKey(record.EmployeeID, record.Date)
	if _, exists := r.store.attendances[key]; exists {
		return attendance.ErrDuplicateAttendance
	}

	now := r.store.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.store.attendances[key] = *record
	return nil
}

func (r *attendanceRepository) UpdateCheckOut(ctx context.Context, record *attendance.Attendance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := attendanceKey(record.EmployeeID, record.Date)
	existing, ok := r.store.attendances[key]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if existing.CheckOutTime != nil {
		return attendance.ErrAlreadyCheckedOut
	}

	existing.CheckOutTime = record.CheckOutTime
	existing.CheckOutLocation = record.CheckOutLocation
	existing.CheckOutLatitude = record.CheckOutLatitude
	existing.CheckOutLongitude = record.CheckOutLongitude
	existing.WorkingHours = record.WorkingHours
	existing.Status = record.Status
	existing.UpdatedAt = r.store.now()
	r.store.attendances[key] = existing

	record.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *attendanceRepository) ListForDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	return r.List(ctx, attendance.Filter{Date: &date})
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]attendance.Attendance, 0)
	for _, rec := range r.store.attendances {
		if matches(rec, filter) {
			records = append(records, rec)
		}
	}

	slices.SortFunc(records, compareRecords)
	return records, nil
}

func (r *attendanceRepository) ClearAll(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := int64(len(r.store.attendances))
	clear(r.store.attendances)
	return n, nil
}

func (r *attendanceRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var n int64
	for key, rec := range r.store.attendances {
		if _, ok := wanted[rec.ID]; ok {
			delete(r.store.attendances, key)
			n++
		}
	}
	return n, nil
}

func matches(rec attendance.Attendance, f attendance.Filter) bool {
	if f.EmployeeID != "" && rec.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Date != nil && !rec.Date.Equal(*f.Date) {
		return false
	}
	if f.From != nil && rec.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.Date.After(*f.To) {
		return false
	}
	return true
}

// compareRecords orders by date desc, then check-in time, then employee.
func compareRecords(a, b attendance.Attendance) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	switch {
	case a.CheckInTime != nil && b.CheckInTime != nil:
		if c := a.CheckInTime.Compare(*b.CheckInTime); c != 0 {
			return c
		}
	case a.CheckInTime != nil:
		return -1
	case b.CheckInTime != nil:
		return 1
	}
	return strings.Compare(a.EmployeeID, b.EmployeeID)
}
