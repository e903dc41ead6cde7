package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkedIn(empID string, date time.Time, at time.Time, status attendance.Status) *attendance.Attendance {
	return &attendance.Attendance{
		ID:          empID + date.Format(attendance.DateLayout),
		EmployeeID:  empID,
		Date:        date,
		CheckInTime: &at,
		Status:      status,
	}
}

func TestAttendanceRepository_CreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	date := day(2025, 3, 10)
	at := date.Add(8 * time.Hour)

	require.NoError(t, repo.Create(ctx, checkedIn("emp-1", date, at, attendance.StatusPresent)))
	err := repo.Create(ctx, checkedIn("emp-1", date, at, attendance.StatusLate))
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)

	got, err := repo.Get(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)

	// Another day is a separate record.
	require.NoError(t, repo.Create(ctx, checkedIn("emp-1", date.AddDate(0, 0, 1), at.AddDate(0, 0, 1), attendance.StatusPresent)))
}

func TestAttendanceRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	date := day(2025, 3, 10)
	at := date.Add(8 * time.Hour)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Create(ctx, checkedIn("emp-1", date, at, attendance.StatusPresent)) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestAttendanceRepository_UpdateCheckOut(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	date := day(2025, 3, 10)
	in := date.Add(8 * time.Hour)
	out := date.Add(17 * time.Hour)
	hours := 9.0

	update := &attendance.Attendance{
		EmployeeID:   "emp-1",
		Date:         date,
		CheckOutTime: &out,
		WorkingHours: &hours,
		Status:       attendance.StatusPresent,
	}

	err := repo.UpdateCheckOut(ctx, update)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	require.NoError(t, repo.Create(ctx, checkedIn("emp-1", date, in, attendance.StatusPresent)))
	require.NoError(t, repo.UpdateCheckOut(ctx, update))

	got, err := repo.Get(ctx, "emp-1", date)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOutTime)
	assert.True(t, got.CheckOutTime.Equal(out))
	assert.Equal(t, 9.0, *got.WorkingHours)
	assert.True(t, got.CheckInTime.Equal(in), "check-in fields are untouched")

	err = repo.UpdateCheckOut(ctx, update)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestAttendanceRepository_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	d1 := day(2025, 3, 10)
	d2 := day(2025, 3, 11)

	require.NoError(t, repo.Create(ctx, checkedIn("emp-b", d1, d1.Add(8*time.Hour), attendance.StatusPresent)))
	require.NoError(t, repo.Create(ctx, checkedIn("emp-a", d1, d1.Add(9*time.Hour), attendance.StatusLate)))
	require.NoError(t, repo.Create(ctx, checkedIn("emp-a", d2, d2.Add(8*time.Hour), attendance.StatusPresent)))

	all, err := repo.List(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, d2, all[0].Date)
	assert.Equal(t, "emp-b", all[1].EmployeeID, "earlier check-in first within a day")
	assert.Equal(t, "emp-a", all[2].EmployeeID)

	late, err := repo.List(ctx, attendance.Filter{Status: attendance.StatusLate})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "emp-a", late[0].EmployeeID)

	byEmp, err := repo.List(ctx, attendance.Filter{EmployeeID: "emp-a", From: &d2, To: &d2})
	require.NoError(t, err)
	require.Len(t, byEmp, 1)

	onDay, err := repo.ListForDate(ctx, d1)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)
}

func TestAttendanceRepository_ClearAll(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	d := day(2025, 3, 10)

	n, err := repo.ClearAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Create(ctx, checkedIn("emp-1", d, d.Add(8*time.Hour), attendance.StatusPresent)))
	require.NoError(t, repo.Create(ctx, checkedIn("emp-2", d, d.Add(8*time.Hour), attendance.StatusPresent)))

	n, err = repo.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Get(ctx, "emp-1", d)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_DeleteByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	d := day(2025, 3, 10)

	first := checkedIn("emp-1", d, d.Add(8*time.Hour), attendance.StatusPresent)
	second := checkedIn("emp-2", d, d.Add(8*time.Hour), attendance.StatusPresent)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	n, err := repo.DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteByIDs(ctx, []string{first.ID, "unknown"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "emp-1", d)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	kept, err := repo.Get(ctx, "emp-2", d)
	require.NoError(t, err)
	assert.Equal(t, second.ID, kept.ID)
}

func seedDirectory(s *Store) {
	s.AddDepartment(employee.Department{ID: "dep-eng", Name: "Engineering"})
	s.AddDepartment(employee.Department{ID: "dep-ops", Name: "Operations"})

	s.AddUser(user.User{ID: "u-hr", Email: "hr@example.com", Role: user.RoleHR})
	s.AddUser(user.User{ID: "u-mgr-eng", Email: "mgr.eng@example.com", Role: user.RoleManager})
	s.AddUser(user.User{ID: "u-mgr-ops", Email: "mgr.ops@example.com", Role: user.RoleManager})
	s.AddUser(user.User{ID: "u-emp", Email: "Emp@Example.com", Role: user.RoleEmployee})

	s.AddEmployee(employee.Employee{ID: "e-mgr-eng", UserID: strPtr("u-mgr-eng"), EmployeeCode: "E001", FullName: "Eng Manager", DepartmentID: strPtr("dep-eng"), IsActive: true})
	s.AddEmployee(employee.Employee{ID: "e-mgr-ops", UserID: strPtr("u-mgr-ops"), EmployeeCode: "E002", FullName: "Ops Manager", DepartmentID: strPtr("dep-ops"), IsActive: true})
	s.AddEmployee(employee.Employee{ID: "e-emp", UserID: strPtr("u-emp"), EmployeeCode: "E003", FullName: "Engineer", DepartmentID: strPtr("dep-eng"), IsActive: true})
	s.AddEmployee(employee.Employee{ID: "e-gone", EmployeeCode: "E004", FullName: "Former", IsActive: false})
}

func TestEmployeeRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDirectory(s)
	repo := NewEmployeeRepository(s)

	e, err := repo.GetByUserID(ctx, "u-emp")
	require.NoError(t, err)
	assert.Equal(t, "e-emp", e.ID)
	require.NotNil(t, e.DepartmentName)
	assert.Equal(t, "Engineering", *e.DepartmentName)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "E001", active[0].EmployeeCode)

	reviewers, err := repo.ListReviewerUserIDs(ctx, strPtr("dep-eng"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u-hr", "u-mgr-eng"}, reviewers)

	reviewers, err = repo.ListReviewerUserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u-hr"}, reviewers)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDirectory(s)
	repo := NewUserRepository(s)

	u, err := repo.GetByEmail(ctx, "EMP@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-emp", u.ID)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, "e-emp", *u.EmployeeID)

	_, err = repo.Create(ctx, user.User{Email: "hr@example.com", Role: user.RoleHR})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	created, err := repo.Create(ctx, user.User{Email: "New@Example.com", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "new@example.com", created.Email)

	linked, err := repo.LinkGoogleAccount(ctx, "google-123", "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "google-123", *linked.GoogleID)

	_, err = repo.LinkGoogleAccount(ctx, "google-456", "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewNotificationRepository(s)
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	var batch []*notification.Notification
	for i := 0; i < 5; i++ {
		batch = append(batch, &notification.Notification{
			ID:          string(rune('a' + i)),
			RecipientID: "u-hr",
			Type:        notification.TypeAttendanceLate,
			Title:       "Late",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NoError(t, repo.Create(ctx, &notification.Notification{ID: "x", RecipientID: "u-other", CreatedAt: base}))

	page, total, err := repo.GetByUserID(ctx, "u-hr", 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "e", page[0].ID, "newest first")

	require.NoError(t, repo.MarkAsRead(ctx, []string{"e", "x"}, "u-hr"))
	count, err := repo.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	otherCount, err := repo.GetUnreadCount(ctx, "u-other")
	require.NoError(t, err)
	assert.Equal(t, 1, otherCount, "another user's notification is not marked")

	unread, total, err := repo.GetByUserID(ctx, "u-hr", 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, unread, 4)

	require.NoError(t, repo.MarkAllAsRead(ctx, "u-hr"))
	count, err = repo.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Zero(t, count)

	empty, _, err := repo.GetByUserID(ctx, "u-hr", 9, 10, false)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
