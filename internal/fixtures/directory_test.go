package fixtures

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoDirectory(t *testing.T) {
	dir, err := DemoDirectory("hash")
	require.NoError(t, err)

	assert.Len(t, dir.Departments, len(defaultDepartments))
	require.Len(t, dir.Users, len(defaultMembers))
	require.Len(t, dir.Employees, len(defaultMembers))

	deptIDs := make(map[string]bool)
	for _, d := range dir.Departments {
		deptIDs[d.ID] = true
	}

	roles := make(map[user.Role]int)
	for i, u := range dir.Users {
		roles[u.Role]++
		require.NotNil(t, u.PasswordHash)
		assert.Equal(t, "hash", *u.PasswordHash)

		emp := dir.Employees[i]
		require.NotNil(t, emp.UserID)
		assert.Equal(t, u.ID, *emp.UserID)
		assert.Equal(t, u.Email, emp.Email)
		require.NotNil(t, emp.DepartmentID)
		assert.True(t, deptIDs[*emp.DepartmentID])
		assert.True(t, emp.IsActive)
	}

	assert.Equal(t, 1, roles[user.RoleAdmin])
	assert.Equal(t, 1, roles[user.RoleHR])
	assert.Equal(t, 1, roles[user.RoleManager])
}
