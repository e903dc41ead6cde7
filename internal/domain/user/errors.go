package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrEmployeeProfileRequired = errors.New("an employee profile is required for attendance")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
