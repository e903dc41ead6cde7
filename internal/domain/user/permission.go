package user

type Permission string

const (
	// Self service
	PermissionAttendanceScan    Permission = "attendance.scan"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"

	// QR display and reporting
	PermissionAttendanceDisplay Permission = "attendance.display"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceExport  Permission = "attendance.export"

	// Destructive maintenance
	PermissionAttendanceClear Permission = "attendance.clear"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionAttendanceDisplay,
		PermissionAttendanceViewAll,
		PermissionAttendanceExport,
		PermissionAttendanceClear,
	},
	RoleHR: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionAttendanceDisplay,
		PermissionAttendanceViewAll,
		PermissionAttendanceExport,
	},
	RoleManager: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
	},
	RoleEmployee: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
