package fixtures

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func newID() string { return uuid.Must(uuid.NewV7()).String() }

// ==========================================
// DEMO DIRECTORY
// ==========================================

// Directory is the demo organisation loaded by `migrate -seed` and by the
// memory store on startup.
type Directory struct {
	Departments []employee.Department
	Users       []user.User
	Employees   []employee.Employee
}

// member describes one seeded person.
type member struct {
	Code       string
	Name       string
	Email      string
	Role       user.Role
	Department string
}

// defaultMembers is the demo staff, keyed to defaultDepartments by name.
var defaultMembers = []member{
	{Code: "ADM-001", Name: "System Admin", Email: "admin@example.com", Role: user.RoleAdmin, Department: "Human Resources"},
	{Code: "HR-001", Name: "Hana Reception", Email: "hr@example.com", Role: user.RoleHR, Department: "Human Resources"},
	{Code: "ENG-001", Name: "Minh Manager", Email: "manager@example.com", Role: user.RoleManager, Department: "Engineering"},
	{Code: "ENG-002", Name: "Lan Developer", Email: "employee@example.com", Role: user.RoleEmployee, Department: "Engineering"},
	{Code: "ENG-003", Name: "Tuan Tester", Email: "tester@example.com", Role: user.RoleEmployee, Department: "Engineering"},
}

var defaultDepartments = []string{"Human Resources", "Engineering"}

// DemoDirectory builds the demo organisation. Every user gets passwordHash.
func DemoDirectory(passwordHash string) (Directory, error) {
	var dir Directory

	deptIDs := make(map[string]string, len(defaultDepartments))
	for _, name := range defaultDepartments {
		d := employee.Department{ID: newID(), Name: name}
		deptIDs[name] = d.ID
		dir.Departments = append(dir.Departments, d)
	}

	for _, m := range defaultMembers {
		deptID, ok := deptIDs[m.Department]
		if !ok {
			return Directory{}, fmt.Errorf("unknown department %q for %s", m.Department, m.Email)
		}

		u := user.User{
			ID:            newID(),
			Email:         m.Email,
			PasswordHash:  strPtr(passwordHash),
			Role:          m.Role,
			EmailVerified: true,
		}
		dir.Users = append(dir.Users, u)

		dir.Employees = append(dir.Employees, employee.Employee{
			ID:           newID(),
			UserID:       strPtr(u.ID),
			EmployeeCode: m.Code,
			FullName:     m.Name,
			Email:        m.Email,
			DepartmentID: strPtr(deptID),
			IsActive:     true,
		})
	}

	return dir, nil
}
