package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as a generic 500.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *attendance.GeofenceError
	if errors.As(err, &geofenceErr) {
		Error(w, http.StatusForbidden, "OUTSIDE_ALLOWED_RADIUS", geofenceErr.Error(), map[string]interface{}{
			"distance_meters": geofenceErr.DistanceMeters,
			"allowed_meters":  geofenceErr.AllowedMeters,
		})
		return
	}

	var recordedErr *attendance.AlreadyRecordedError
	if errors.As(err, &recordedErr) {
		code := "ALREADY_CHECKED_IN"
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			code = "ALREADY_CHECKED_OUT"
		}
		Error(w, http.StatusConflict, code, recordedErr.Error(), nil)
		return
	}

	switch {
	// Attendance admission and state errors
	case errors.Is(err, attendance.ErrLocationRequired):
		Error(w, http.StatusBadRequest, "LOCATION_REQUIRED", err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidQRToken):
		Error(w, http.StatusBadRequest, "INVALID_QR_TOKEN", err.Error(), nil)
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		Error(w, http.StatusForbidden, "OUTSIDE_ALLOWED_RADIUS", err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Error(w, http.StatusConflict, "ALREADY_CHECKED_IN", err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Error(w, http.StatusConflict, "ALREADY_CHECKED_OUT", err.Error(), nil)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Error(w, http.StatusBadRequest, "NOT_CHECKED_IN", err.Error(), nil)
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrEmployeeRequired), errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, user.ErrEmployeeProfileRequired.Error())
	case errors.Is(err, attendance.ErrQRImageGeneration):
		slog.Error("QR image generation failed", "error", err)
		InternalServerError(w, attendance.ErrQRImageGeneration.Error())
	case errors.Is(err, attendance.ErrArchiveFailed):
		InternalServerError(w, attendance.ErrArchiveFailed.Error())

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrGoogleEmailNotVerified),
		errors.Is(err, auth.ErrGoogleAccountNotLinked),
		errors.Is(err, auth.ErrGoogleAccessDeniedByUser):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		BadRequest(w, err.Error())
	case errors.Is(err, auth.ErrGoogleLoginDisabled):
		NotFound(w, err.Error())

	// User and employee errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Error(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
