package attendance

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrLocationRequired     = errors.New("location is required, please enable location services")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed office radius")
	ErrInvalidQRToken       = errors.New("invalid or expired QR code, please scan the current code")
	ErrAlreadyCheckedIn     = errors.New("you have already checked in today")
	ErrAlreadyCheckedOut    = errors.New("you have already checked out today")
	ErrNotCheckedIn         = errors.New("you have not checked in today")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrDuplicateAttendance  = errors.New("attendance record already exists for this date")
	ErrQRImageGeneration    = errors.New("failed to generate QR code image")
	ErrEmployeeRequired     = errors.New("employee identity is required")
	ErrArchiveFailed        = errors.New("failed to archive attendance records")
)

// GeofenceError reports how far the device was from the office.
type GeofenceError struct {
	DistanceMeters int64
	AllowedMeters  float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("you are %dm away from the office, must be within %.0fm", e.DistanceMeters, e.AllowedMeters)
}

func (e *GeofenceError) Unwrap() error {
	return ErrOutsideAllowedRadius
}

// AlreadyRecordedError carries the time of the earlier check-in or check-out.
type AlreadyRecordedError struct {
	Action string
	At     time.Time
	err    error
}

func NewAlreadyCheckedInError(at time.Time) *AlreadyRecordedError {
	return &AlreadyRecordedError{Action: "check_in", At: at, err: ErrAlreadyCheckedIn}
}

func NewAlreadyCheckedOutError(at time.Time) *AlreadyRecordedError {
	return &AlreadyRecordedError{Action: "check_out", At: at, err: ErrAlreadyCheckedOut}
}

func (e *AlreadyRecordedError) Error() string {
	return fmt.Sprintf("%s at %s", e.err.Error(), e.At.Format(time.RFC3339))
}

func (e *AlreadyRecordedError) Unwrap() error {
	return e.err
}
