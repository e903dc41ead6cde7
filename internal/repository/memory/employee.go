package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.withDepartment(e), nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.employees {
		if e.UserID != nil && *e.UserID == userID {
			return r.withDepartment(e), nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	employees := make([]employee.Employee, 0, len(r.store.employees))
	for _, e := range r.store.employees {
		if e.IsActive {
			employees = append(employees, r.withDepartment(e))
		}
	}
	slices.SortFunc(employees, func(a, b employee.Employee) int {
		return strings.Compare(a.EmployeeCode, b.EmployeeCode)
	})
	return employees, nil
}

func (r *employeeRepository) ListReviewerUserIDs(ctx context.Context, departmentID *string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, u := range r.store.users {
		if u.Role == user.RoleHR {
			add(u.ID)
		}
	}

	if departmentID != nil {
		for _, e := range r.store.employees {
			if e.UserID == nil || e.DepartmentID == nil || *e.DepartmentID != *departmentID {
				continue
			}
			if u, ok := r.store.users[*e.UserID]; ok && u.Role == user.RoleManager {
				add(u.ID)
			}
		}
	}

	slices.Sort(ids)
	return ids, nil
}

// withDepartment fills the joined department name. Callers hold the read lock.
func (r *employeeRepository) withDepartment(e employee.Employee) employee.Employee {
	if e.DepartmentID != nil {
		if d, ok := r.store.departments[*e.DepartmentID]; ok {
			name := d.Name
			e.DepartmentName = &name
		}
	}
	return e
}
