// Package memory holds in-process repositories used when STORE_DRIVER=memory
// and by service tests. They enforce the same uniqueness and update guards as
// the PostgreSQL repositories.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
)

// Store is the shared state behind every memory repository.
type Store struct {
	mu sync.RWMutex

	departments   map[string]employee.Department
	users         map[string]user.User
	employees     map[string]employee.Employee
	attendances   map[string]attendance.Attendance
	notifications []*notification.Notification

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		departments: make(map[string]employee.Department),
		users:       make(map[string]user.User),
		employees:   make(map[string]employee.Employee),
		attendances: make(map[string]attendance.Attendance),
		now:         time.Now,
	}
}

// AddDepartment registers a department.
func (s *Store) AddDepartment(d employee.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[d.ID] = d
}

// AddUser registers a user without going through the email uniqueness check.
func (s *Store) AddUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	s.users[u.ID] = u
}

// AddEmployee registers an employee profile.
func (s *Store) AddEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func attendanceKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(attendance.DateLayout)
}

// Load registers a whole directory.
func (s *Store) Load(dir fixtures.Directory) {
	for _, d := range dir.Departments {
		s.AddDepartment(d)
	}
	for _, u := range dir.Users {
		s.AddUser(u)
	}
	for _, e := range dir.Employees {
		s.AddEmployee(e)
	}
}
